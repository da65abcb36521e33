package ssdp

import (
	"context"
	"encoding/xml"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 3 * time.Second}).DialContext,
		IdleConnTimeout: 30 * time.Second,
	},
}

// ProbeDevice retrieves and parses a device's description document, given
// its base control URL (e.g. "http://192.168.1.23:1400").
func ProbeDevice(ctx context.Context, baseURL string) (*DeviceDescription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/xml/device_description.xml", nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	desc := parseDeviceDescriptionXML(body)
	if desc == nil {
		return nil, nil
	}

	desc.BaseURL = baseURL
	desc.DiscoveredAt = now()
	return desc, nil
}

var now = time.Now

func baseURLFromLocation(location string) string {
	parsed, err := url.Parse(location)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()
	if host == "" {
		return ""
	}
	port := parsed.Port()
	if port == "" {
		port = "1400"
	}
	return "http://" + host + ":" + port
}

type rawDeviceDescription struct {
	XMLName xml.Name `xml:"root"`
	Device  struct {
		FriendlyName string `xml:"friendlyName"`
		UDN          string `xml:"UDN"`
		ServiceList  struct {
			Services []struct {
				ServiceType string `xml:"serviceType"`
				ServiceID   string `xml:"serviceId"`
			} `xml:"service"`
		} `xml:"serviceList"`
		DeviceList struct {
			Devices []struct {
				ServiceList struct {
					Services []struct {
						ServiceType string `xml:"serviceType"`
						ServiceID   string `xml:"serviceId"`
					} `xml:"service"`
				} `xml:"serviceList"`
			} `xml:"device"`
		} `xml:"deviceList"`
	} `xml:"device"`
}

func parseDeviceDescriptionXML(payload []byte) *DeviceDescription {
	var raw rawDeviceDescription
	if err := xml.Unmarshal(payload, &raw); err != nil {
		return nil
	}
	if raw.Device.UDN == "" {
		return nil
	}

	services := make(map[string]struct{})
	addServices := func(list []struct {
		ServiceType string `xml:"serviceType"`
		ServiceID   string `xml:"serviceId"`
	}) {
		for _, svc := range list {
			if svc.ServiceType != "" {
				services[svc.ServiceType] = struct{}{}
			}
			if svc.ServiceID != "" {
				services[svc.ServiceID] = struct{}{}
			}
		}
	}
	addServices(raw.Device.ServiceList.Services)
	for _, sub := range raw.Device.DeviceList.Devices {
		addServices(sub.ServiceList.Services)
	}

	return &DeviceDescription{
		UUID:     strings.TrimPrefix(raw.Device.UDN, "uuid:"),
		RoomName: roomNameFromFriendlyName(raw.Device.FriendlyName),
		Services: services,
	}
}

func roomNameFromFriendlyName(friendlyName string) string {
	if friendlyName == "" {
		return ""
	}
	if idx := strings.Index(friendlyName, " - "); idx >= 0 {
		return strings.TrimSpace(friendlyName[:idx])
	}
	if idx := strings.Index(friendlyName, "-"); idx >= 0 {
		return strings.TrimSpace(friendlyName[:idx])
	}
	return strings.TrimSpace(friendlyName)
}
