package controller

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/ryanolf/sonos-manager/internal/ctlerrors"
	"github.com/ryanolf/sonos-manager/internal/media"
	"github.com/ryanolf/sonos-manager/internal/registry"
	"github.com/ryanolf/sonos-manager/internal/topology"
	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

// Dispatcher carries out one DoZoneAction command against the coordinator
// of the named room (§4.F). It holds no mutable state of its own; every
// call takes the Registry/Topology snapshot it should act against.
type Dispatcher struct {
	soap *soap.Client
}

// NewDispatcher returns a Dispatcher that issues SOAP actions through soapClient.
func NewDispatcher(soapClient *soap.Client) *Dispatcher {
	return &Dispatcher{soap: soapClient}
}

// Dispatch resolves room to a coordinator and runs action against it.
func (d *Dispatcher) Dispatch(ctx context.Context, reg *registry.Registry, topo topology.Topology, room string, action Action) Response {
	if action.Kind == ActionExists {
		_, ok := reg.ByName(room)
		if ok {
			return Ok()
		}
		return NotOk()
	}

	speaker, ok := reg.ByName(room)
	if !ok {
		log.Print(ctlerrors.ZoneDoesNotExist(room))
		return NotOk()
	}
	coordinatorUUID, ok := topo.CoordinatorOf(speaker.Info.UUID)
	if !ok {
		log.Print(ctlerrors.Wrap(ctlerrors.KindZoneDoesNotExist, fmt.Sprintf("%q has no coordinator in the current topology", room), nil))
		return NotOk()
	}
	coordinator, ok := reg.ByUUID(coordinatorUUID)
	if !ok {
		log.Print(ctlerrors.Wrap(ctlerrors.KindZoneDoesNotExist, fmt.Sprintf("coordinator %s for %q has no registry record", coordinatorUUID, room), nil))
		return NotOk()
	}

	baseURL := coordinator.Info.BaseURL()

	switch action.Kind {
	case ActionPlay:
		return d.okOrNotOk(d.soap.Play(ctx, baseURL))
	case ActionPause:
		return d.okOrNotOk(d.soap.Pause(ctx, baseURL))
	case ActionTogglePlayPause:
		return d.okOrNotOk(d.togglePlayPause(ctx, baseURL))
	case ActionNext:
		return d.okOrNotOk(d.soap.Next(ctx, baseURL))
	case ActionPrevious:
		return d.okOrNotOk(d.soap.Previous(ctx, baseURL))
	case ActionClearQueue:
		return d.okOrNotOk(d.soap.RemoveAllTracksFromQueue(ctx, baseURL))
	case ActionSeekTime:
		return d.okOrNotOk(d.soap.Seek(ctx, baseURL, "REL_TIME", formatHMS(action.Seconds)))
	case ActionSeekTrack:
		return d.okOrNotOk(d.soap.Seek(ctx, baseURL, "TRACK_NR", strconv.Itoa(action.Track)))
	case ActionSeekRelativeTrack:
		return d.okOrNotOk(d.seekRelativeTrack(ctx, baseURL, coordinator, action.Delta))
	case ActionSetRepeat:
		return d.okOrNotOk(d.setRepeat(ctx, baseURL, coordinator, action.Repeat))
	case ActionSetShuffle:
		return d.okOrNotOk(d.setShuffle(ctx, baseURL, coordinator, action.On))
	case ActionSetCrossfade:
		return d.okOrNotOk(d.soap.SetCrossfadeMode(ctx, baseURL, action.On))
	case ActionSetPlayMode:
		return d.okOrNotOk(d.soap.SetPlayMode(ctx, baseURL, soap.CombinePlayMode(action.Repeat, action.On)))
	case ActionSetRelativeVolume:
		return d.okOrNotOk(d.setRelativeVolume(ctx, baseURL, action.Delta))
	case ActionGetQueue:
		return d.getQueue(ctx, baseURL, coordinatorUUID)
	case ActionTakeSnapshot:
		return d.takeSnapshot(ctx, baseURL)
	case ActionApplySnapshot:
		return d.okOrNotOk(d.soap.ApplySnapshot(ctx, baseURL, action.Snapshot))
	case ActionPlayNow:
		return d.okOrNotOk(d.playNow(ctx, baseURL, coordinatorUUID, action.Media))
	case ActionQueueAsNext:
		return d.okOrNotOk(d.queueAsNext(ctx, baseURL, coordinator, action.Media))
	default:
		log.Print(ctlerrors.ZoneActionError("Dispatch", fmt.Sprintf("unrecognized action kind %d", action.Kind)))
		return NotOk()
	}
}

func (d *Dispatcher) okOrNotOk(err error) Response {
	if err != nil {
		if ctlErr, ok := err.(*ctlerrors.Error); ok {
			log.Print(ctlErr)
		} else {
			log.Print(ctlerrors.RemoteLibraryError(err))
		}
		return NotOk()
	}
	return Ok()
}

func (d *Dispatcher) togglePlayPause(ctx context.Context, baseURL string) error {
	info, err := d.soap.GetTransportInfo(ctx, baseURL)
	if err != nil {
		return err
	}
	if info.CurrentTransportState == "PLAYING" {
		return d.soap.Pause(ctx, baseURL)
	}
	return d.soap.Play(ctx, baseURL)
}

// seekRelativeTrack reads the current track number, preferring the cached
// AV-transport value, clamps target to a minimum of 1, and selects it
// (§4.F "SeekRelativeTrack(d)").
func (d *Dispatcher) seekRelativeTrack(ctx context.Context, baseURL string, coordinator *registry.SpeakerRecord, delta int) error {
	current := currentTrack(ctx, d.soap, baseURL, coordinator)
	target := current + delta
	if target < 1 {
		target = 1
	}
	return d.soap.Seek(ctx, baseURL, "TRACK_NR", strconv.Itoa(target))
}

func currentTrack(ctx context.Context, client *soap.Client, baseURL string, coordinator *registry.SpeakerRecord) int {
	for _, kv := range coordinator.TransportState {
		if kv.Key == "CurrentTrack" {
			if n, err := strconv.Atoi(kv.Value); err == nil {
				return n
			}
		}
	}
	pos, err := client.GetPositionInfo(ctx, baseURL)
	if err != nil {
		return 0
	}
	return pos.Track
}

func (d *Dispatcher) setRepeat(ctx context.Context, baseURL string, coordinator *registry.SpeakerRecord, repeat soap.RepeatMode) error {
	_, shuffle := d.currentPlayModeComponents(ctx, baseURL, coordinator)
	return d.soap.SetPlayMode(ctx, baseURL, soap.CombinePlayMode(repeat, shuffle))
}

func (d *Dispatcher) setShuffle(ctx context.Context, baseURL string, coordinator *registry.SpeakerRecord, shuffle bool) error {
	repeat, _ := d.currentPlayModeComponents(ctx, baseURL, coordinator)
	return d.soap.SetPlayMode(ctx, baseURL, soap.CombinePlayMode(repeat, shuffle))
}

// currentPlayModeComponents reads the combined PlayMode's repeat/shuffle
// components so SetRepeat and SetShuffle can change one without disturbing
// the other, preferring the cached value.
func (d *Dispatcher) currentPlayModeComponents(ctx context.Context, baseURL string, coordinator *registry.SpeakerRecord) (soap.RepeatMode, bool) {
	for _, kv := range coordinator.TransportState {
		if kv.Key == "CurrentPlayMode" {
			return soap.SplitPlayMode(soap.PlayMode(kv.Value))
		}
	}
	settings, err := d.soap.GetTransportSettings(ctx, baseURL)
	if err != nil {
		return soap.RepeatNone, false
	}
	return soap.SplitPlayMode(soap.PlayMode(settings.PlayMode))
}

func (d *Dispatcher) setRelativeVolume(ctx context.Context, baseURL string, delta int) error {
	current, err := d.soap.GetVolume(ctx, baseURL)
	if err != nil {
		return err
	}
	target := current.CurrentVolume + delta
	if target < 0 {
		target = 0
	}
	if target > 100 {
		target = 100
	}
	return d.soap.SetVolume(ctx, baseURL, target)
}

func (d *Dispatcher) getQueue(ctx context.Context, baseURL string, coordinatorUUID string) Response {
	result, err := d.soap.Browse(ctx, baseURL, "Q:0", soap.BrowseFlagDirectChildren, 0, 0)
	if err != nil {
		log.Print(ctlerrors.Wrap(ctlerrors.KindRemoteLibraryError, fmt.Sprintf("get queue for %s", coordinatorUUID), err))
		return NotOk()
	}
	return QueueResponse(result.Items)
}

func (d *Dispatcher) takeSnapshot(ctx context.Context, baseURL string) Response {
	snap, err := d.soap.TakeSnapshot(ctx, baseURL)
	if err != nil {
		log.Print(ctlerrors.RemoteLibraryError(err))
		return NotOk()
	}
	return SnapshotResponse(snap)
}

// playNow resolves media, clears the coordinator's queue, enqueues the item
// at position 1, points the transport at the queue, and plays (§4.F "Media
// pipeline for PlayNow").
func (d *Dispatcher) playNow(ctx context.Context, baseURL, coordinatorUUID string, ref media.Ref) error {
	resolved, err := media.Resolve(ctx, d.soap, baseURL, ref)
	if err != nil {
		return ctlerrors.ContentNotFound(err.Error())
	}
	if err := d.soap.RemoveAllTracksFromQueue(ctx, baseURL); err != nil {
		return err
	}
	if _, err := d.soap.AddURIToQueue(ctx, baseURL, resolved.URI, resolved.Metadata, 1, false); err != nil {
		return err
	}
	if err := d.soap.SetAVTransportURI(ctx, baseURL, fmt.Sprintf("x-rincon-queue:%s#0", coordinatorUUID), ""); err != nil {
		return err
	}
	return d.soap.Play(ctx, baseURL)
}

// queueAsNext resolves media and enqueues it immediately after the
// currently playing track (§4.F "Media pipeline for QueueAsNext").
func (d *Dispatcher) queueAsNext(ctx context.Context, baseURL string, coordinator *registry.SpeakerRecord, ref media.Ref) error {
	resolved, err := media.Resolve(ctx, d.soap, baseURL, ref)
	if err != nil {
		return ctlerrors.ContentNotFound(err.Error())
	}
	current := currentTrack(ctx, d.soap, baseURL, coordinator)
	_, err = d.soap.AddURIToQueue(ctx, baseURL, resolved.URI, resolved.Metadata, current+1, true)
	return err
}

func formatHMS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
