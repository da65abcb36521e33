// Package ssdp is the SSDP discovery and device-description library surface
// the controller core consumes (§6.1): one-shot and broadcast-with-timeout
// M-SEARCH discovery, device-description retrieval, and service lookup by
// URN. None of the topology-aware logic lives here.
package ssdp

import "time"

// DeviceDescription is what discovery learns about one speaker: its
// identity, its base control URL, and which UPnP services it advertises.
type DeviceDescription struct {
	UUID         string
	RoomName     string
	BaseURL      string
	Services     map[string]struct{}
	DiscoveredAt time.Time
}

// HasService reports whether the device advertises the given service URN.
func (d DeviceDescription) HasService(urn string) bool {
	_, ok := d.Services[urn]
	return ok
}

const (
	URNAVTransport       = "urn:schemas-upnp-org:service:AVTransport:1"
	URNRenderingControl  = "urn:schemas-upnp-org:service:RenderingControl:1"
	URNContentDirectory  = "urn:schemas-upnp-org:service:ContentDirectory:1"
	URNZoneGroupTopology = "urn:upnp-org:serviceId:ZoneGroupTopology"
	URNDeviceProperties  = "urn:upnp-org:serviceId:DeviceProperties"
)
