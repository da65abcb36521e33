// Package soap is the SOAP action-invocation library surface the controller
// core consumes (§6.1): building and sending UPnP SOAP envelopes to a Sonos
// device and parsing their XML responses. None of the zone-aware behavior
// lives here — this package only knows how to talk to one device at a time.
package soap

// Service identifies a Sonos UPnP service.
type Service string

const (
	ServiceAVTransport       Service = "AVTransport"
	ServiceRenderingControl  Service = "RenderingControl"
	ServiceContentDirectory  Service = "ContentDirectory"
	ServiceZoneGroupTopology Service = "ZoneGroupTopology"
	ServiceDeviceProperties  Service = "DeviceProperties"
)

var serviceTypes = map[Service]string{
	ServiceAVTransport:       "urn:schemas-upnp-org:service:AVTransport:1",
	ServiceRenderingControl:  "urn:schemas-upnp-org:service:RenderingControl:1",
	ServiceContentDirectory:  "urn:schemas-upnp-org:service:ContentDirectory:1",
	ServiceZoneGroupTopology: "urn:schemas-upnp-org:service:ZoneGroupTopology:1",
	ServiceDeviceProperties:  "urn:schemas-upnp-org:service:DeviceProperties:1",
}

var controlPaths = map[Service]string{
	ServiceAVTransport:       "/MediaRenderer/AVTransport/Control",
	ServiceRenderingControl:  "/MediaRenderer/RenderingControl/Control",
	ServiceContentDirectory:  "/MediaServer/ContentDirectory/Control",
	ServiceZoneGroupTopology: "/ZoneGroupTopology/Control",
	ServiceDeviceProperties:  "/DeviceProperties/Control",
}

// EventPath returns the GENA subscription path for a service, used by the
// gena package so both SOAP control and event subscription agree on the
// device's service layout.
func EventPath(service Service) string {
	switch service {
	case ServiceAVTransport:
		return "/MediaRenderer/AVTransport/Event"
	case ServiceRenderingControl:
		return "/MediaRenderer/RenderingControl/Event"
	case ServiceZoneGroupTopology:
		return "/ZoneGroupTopology/Event"
	default:
		return ""
	}
}
