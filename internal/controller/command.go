package controller

import (
	"context"

	"github.com/ryanolf/sonos-manager/internal/ctlerrors"
	"github.com/ryanolf/sonos-manager/internal/media"
	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

// ActionKind discriminates the Action tagged variant a DoZoneAction command
// carries (§3 "Command").
type ActionKind int

const (
	ActionExists ActionKind = iota
	ActionPlayNow
	ActionQueueAsNext
	ActionPlay
	ActionPause
	ActionTogglePlayPause
	ActionNext
	ActionPrevious
	ActionSeekTime
	ActionSeekTrack
	ActionSeekRelativeTrack
	ActionSetRepeat
	ActionSetShuffle
	ActionSetCrossfade
	ActionSetPlayMode
	ActionClearQueue
	ActionGetQueue
	ActionTakeSnapshot
	ActionApplySnapshot
	ActionSetRelativeVolume
)

// Action is one member of the Action tagged variant. Only the fields
// relevant to Kind are meaningful.
type Action struct {
	Kind ActionKind

	Media media.Ref // PlayNow, QueueAsNext

	Seconds int // SeekTime
	Track   int // SeekTrack
	Delta   int // SeekRelativeTrack, SetRelativeVolume

	Repeat RepeatMode // SetRepeat, SetPlayMode
	On     bool       // SetShuffle, SetCrossfade, SetPlayMode

	Snapshot soap.Snapshot // ApplySnapshot
}

// RepeatMode and PlayMode alias the soap package's device-level vocabulary
// so callers of this package never need to import soap directly for a
// command's action.
type RepeatMode = soap.RepeatMode
type PlayMode = soap.PlayMode

const (
	RepeatNone = soap.RepeatNone
	RepeatOne  = soap.RepeatOne
	RepeatAll  = soap.RepeatAll
)

// ResponseKind discriminates the Response tagged variant (§3 "Response").
type ResponseKind int

const (
	ResponseOk ResponseKind = iota
	ResponseNotOk
	ResponseSnapshot
	ResponseQueue
)

// Response is one member of the Response tagged variant.
type Response struct {
	Kind     ResponseKind
	Snapshot soap.Snapshot
	Queue    []soap.FavoriteItem
}

func Ok() Response                        { return Response{Kind: ResponseOk} }
func NotOk() Response                     { return Response{Kind: ResponseNotOk} }
func SnapshotResponse(s soap.Snapshot) Response { return Response{Kind: ResponseSnapshot, Snapshot: s} }
func QueueResponse(items []soap.FavoriteItem) Response {
	return Response{Kind: ResponseQueue, Queue: items}
}

// command is the internal message the Façade sends to the Controller Actor.
// Only DoZoneAction is implemented; GetStatus is reserved (§3).
type command struct {
	room   string
	action Action
	reply  chan Response
}

// Facade is the command channel callers use to reach the Controller Actor
// (§4.G). It is the only public entry point into a running Controller.
type Facade struct {
	commands chan command
	closed   <-chan struct{}
}

// newFacade returns a Facade and the receive side the Controller Actor's
// main loop reads from. closed is closed by the Controller when its loop
// exits, so sends past that point fail fast with ControllerOffline instead
// of blocking forever.
func newFacade(capacity int, closed <-chan struct{}) (*Facade, <-chan command) {
	ch := make(chan command, capacity)
	return &Facade{commands: ch, closed: closed}, ch
}

// DoZoneAction asks the Controller to run action against the named room's
// coordinator and waits for its reply, or for ctx to be done.
func (f *Facade) DoZoneAction(ctx context.Context, room string, action Action) (Response, error) {
	reply := make(chan Response, 1)
	cmd := command{room: room, action: action, reply: reply}

	select {
	case f.commands <- cmd:
	case <-f.closed:
		return Response{}, ctlerrors.ErrControllerOffline
	case <-ctx.Done():
		return Response{}, ctlerrors.ErrControllerOffline
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-f.closed:
		return Response{}, ctlerrors.ErrMessageRecv
	case <-ctx.Done():
		return Response{}, ctlerrors.ErrMessageRecv
	}
}
