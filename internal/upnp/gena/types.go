// Package gena is the GENA event-subscription library surface the
// controller core consumes (§6.1): subscribe/renew/unsubscribe against a
// device's eventing URL, and delivery of parsed NOTIFY payloads to a
// per-subscription channel. None of the Subscription Worker's retry or
// recovery policy lives here — that belongs to the controller package.
package gena

import "time"

// KV is one (key, value) pair extracted from a LastChange payload, in the
// order it appeared in the document (§4.A).
type KV struct {
	Key   string
	Value string
}

// Notification is a single parsed NOTIFY delivery for one subscription.
type Notification struct {
	SID string
	SEQ int

	// AVTransportChange carries the ordered (key, value) list extracted
	// from an AVTransport LastChange payload. Nil for other service kinds.
	AVTransportChange []KV

	// ZoneGroupState carries the raw <ZoneGroups> document extracted from
	// a ZoneGroupTopology event, for the soap package's shared parser.
	ZoneGroupState string
}

// Subscription is the state returned by a successful Subscribe/Renew call.
type Subscription struct {
	SID     string
	Timeout time.Duration
}

const defaultTimeout = 3600 * time.Second
