// Package ctlevent defines the Event and ServiceKind values that flow from
// Subscription Workers through the Event Aggregator to the Controller Actor
// (§3 "Event"). It has no dependency on the controller or registry packages
// so that both can depend on it without a cycle.
package ctlevent

import (
	"github.com/ryanolf/sonos-manager/internal/topology"
	"github.com/ryanolf/sonos-manager/internal/upnp/gena"
)

// ServiceKind identifies which UPnP service a Subscription Worker was
// watching when it lost its subscription.
type ServiceKind int

const (
	ServiceUnknown ServiceKind = iota
	ServiceTopology
	ServiceAVTransport
)

func (k ServiceKind) String() string {
	switch k {
	case ServiceTopology:
		return "ZoneGroupTopology"
	case ServiceAVTransport:
		return "AVTransport"
	default:
		return "Unknown"
	}
}

// Kind discriminates the Event tagged variant.
type Kind int

const (
	// Noop is the initial sentinel value of a single-slot channel and must
	// never be delivered to the Controller as real data.
	Noop Kind = iota
	TopologyChanged
	AVTransportChanged
	SubscriptionLost
)

// Event is the tagged variant with exactly four cases (§3).
type Event struct {
	Kind Kind

	Topology topology.Topology // TopologyChanged

	UUID string    // AVTransportChanged, SubscriptionLost (may be "" for SubscriptionLost)
	KVs  []gena.KV // AVTransportChanged

	Service ServiceKind // SubscriptionLost
}

func NewTopologyChanged(t topology.Topology) Event {
	return Event{Kind: TopologyChanged, Topology: t}
}

func NewAVTransportChanged(uuid string, kvs []gena.KV) Event {
	return Event{Kind: AVTransportChanged, UUID: uuid, KVs: kvs}
}

func NewSubscriptionLost(uuid string, service ServiceKind) Event {
	return Event{Kind: SubscriptionLost, UUID: uuid, Service: service}
}
