package ssdp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	multicastAddr = "239.255.255.250:1900"
	searchTarget  = "urn:schemas-upnp-org:device:ZonePlayer:1"
)

type searchResponse struct {
	location string
	usn      string
}

// Discover broadcasts M-SEARCH and probes every device that answers within
// timeout, returning one DeviceDescription per distinct device. This is the
// "broadcast-with-timeout" discovery variant (§6.1).
func Discover(ctx context.Context, timeout time.Duration) ([]DeviceDescription, error) {
	responses, err := search(ctx, timeout)
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceDescription, 0, len(responses))
	for _, resp := range responses {
		baseURL := baseURLFromLocation(resp.location)
		if baseURL == "" {
			continue
		}
		probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		device, err := ProbeDevice(probeCtx, baseURL)
		cancel()
		if err != nil || device == nil {
			continue
		}
		devices = append(devices, *device)
	}
	return devices, nil
}

// Find performs the name-based discovery variant (§6.1): discover and return
// the first device whose room name matches, case-insensitively. This is the
// "one-shot" variant, bounded by timeout.
func Find(ctx context.Context, roomName string, timeout time.Duration) (*DeviceDescription, error) {
	devices, err := Discover(ctx, timeout)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if strings.EqualFold(devices[i].RoomName, roomName) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no speaker named %q answered discovery", roomName)
}

func search(ctx context.Context, timeout time.Duration) (map[string]searchResponse, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	addr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return nil, err
	}

	msg := strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"HOST: " + multicastAddr,
		`MAN: "ssdp:discover"`,
		"MX: 2",
		"ST: " + searchTarget,
		"",
		"",
	}, "\r\n")

	if _, err := conn.WriteTo([]byte(msg), addr); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	responses := make(map[string]searchResponse)
	buf := make([]byte, 2048)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			return responses, nil
		}
		resp := parseSearchResponse(string(buf[:n]))
		if resp.location == "" || resp.usn == "" {
			continue
		}
		if _, exists := responses[resp.usn]; !exists {
			responses[resp.usn] = resp
		}
	}
	return responses, nil
}

func parseSearchResponse(raw string) searchResponse {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	headers := make(map[string]string)

	scanner.Scan() // status line

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		headers[strings.ToUpper(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
	}

	return searchResponse{
		location: headers["LOCATION"],
		usn:      headers["USN"],
	}
}
