// Package ctlerrors defines the typed error kinds the controller and its
// collaborators surface to callers.
package ctlerrors

import "fmt"

// Kind identifies one of the error categories the system distinguishes.
type Kind string

const (
	// KindRemoteLibraryError is an opaque passthrough from the UPnP client.
	KindRemoteLibraryError Kind = "REMOTE_LIBRARY_ERROR"
	// KindSubscriberError indicates a Subscription Worker failure.
	KindSubscriberError Kind = "SUBSCRIBER_ERROR"
	// KindControllerOffline means the command channel is closed.
	KindControllerOffline Kind = "CONTROLLER_OFFLINE"
	// KindMessageRecvError means the caller's reply-port was dropped.
	KindMessageRecvError Kind = "MESSAGE_RECV_ERROR"
	// KindControllerNotInitialized means discovery has not yet produced a topology.
	KindControllerNotInitialized Kind = "CONTROLLER_NOT_INITIALIZED"
	// KindZoneDoesNotExist means the named room has no known speaker.
	KindZoneDoesNotExist Kind = "ZONE_DOES_NOT_EXIST"
	// KindZoneActionError means a response variant did not match the action.
	KindZoneActionError Kind = "ZONE_ACTION_ERROR"
	// KindContentNotFound means a playlist/favorite lookup found no match.
	KindContentNotFound Kind = "CONTENT_NOT_FOUND"
)

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// RemoteLibraryError wraps an opaque error surfaced by the UPnP/SOAP/GENA layer.
func RemoteLibraryError(err error) *Error {
	return Wrap(KindRemoteLibraryError, "remote library error", err)
}

// SubscriberError reports a subscription-lifecycle failure message.
func SubscriberError(message string) *Error {
	return New(KindSubscriberError, message)
}

// ErrControllerOffline reports that a command could not be delivered.
var ErrControllerOffline = New(KindControllerOffline, "controller command channel is closed")

// ErrMessageRecv reports that a caller's reply-port was dropped before replying.
var ErrMessageRecv = New(KindMessageRecvError, "reply port dropped before a response arrived")

// ErrControllerNotInitialized reports that no topology has been discovered yet.
var ErrControllerNotInitialized = New(KindControllerNotInitialized, "controller has not completed initial discovery")

// ZoneDoesNotExist reports that the named room is unknown.
func ZoneDoesNotExist(room string) *Error {
	return New(KindZoneDoesNotExist, fmt.Sprintf("no speaker named %q", room))
}

// ZoneActionError reports a response/action variant mismatch.
func ZoneActionError(action, got string) *Error {
	return New(KindZoneActionError, fmt.Sprintf("action %s returned unexpected response %s", action, got))
}

// ContentNotFound reports that a playlist or favorite lookup found nothing.
func ContentNotFound(message string) *Error {
	return New(KindContentNotFound, message)
}
