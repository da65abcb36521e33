package soap

import (
	"context"
	"strconv"
)

// AVTransport actions.

func (c *Client) GetTransportInfo(ctx context.Context, baseURL string) (TransportInfo, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "GetTransportInfo", map[string]string{
		"InstanceID": "0",
	})
	if err != nil {
		return TransportInfo{}, err
	}
	return parseTransportInfo(payload), nil
}

func (c *Client) GetTransportSettings(ctx context.Context, baseURL string) (TransportSettings, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "GetTransportSettings", map[string]string{
		"InstanceID": "0",
	})
	if err != nil {
		return TransportSettings{}, err
	}
	return parseTransportSettings(payload), nil
}

func (c *Client) GetPositionInfo(ctx context.Context, baseURL string) (PositionInfo, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "GetPositionInfo", map[string]string{
		"InstanceID": "0",
	})
	if err != nil {
		return PositionInfo{}, err
	}
	return parsePositionInfo(payload), nil
}

func (c *Client) GetMediaInfo(ctx context.Context, baseURL string) (MediaInfo, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "GetMediaInfo", map[string]string{
		"InstanceID": "0",
	})
	if err != nil {
		return MediaInfo{}, err
	}
	return parseMediaInfo(payload), nil
}

func (c *Client) Play(ctx context.Context, baseURL string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "Play", map[string]string{
		"InstanceID": "0",
		"Speed":      "1",
	})
	return err
}

func (c *Client) Pause(ctx context.Context, baseURL string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "Pause", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) Next(ctx context.Context, baseURL string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "Next", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) Previous(ctx context.Context, baseURL string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "Previous", map[string]string{
		"InstanceID": "0",
	})
	return err
}

func (c *Client) SetAVTransportURI(ctx context.Context, baseURL, uri, metadata string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "SetAVTransportURI", map[string]string{
		"InstanceID":         "0",
		"CurrentURI":         uri,
		"CurrentURIMetaData": metadata,
	})
	return err
}

func (c *Client) AddURIToQueue(ctx context.Context, baseURL, uri, metadata string, position int, enqueueNext bool) (int, error) {
	enqueueAsNext := "0"
	if enqueueNext {
		enqueueAsNext = "1"
	}
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "AddURIToQueue", map[string]string{
		"InstanceID":                      "0",
		"EnqueuedURI":                     uri,
		"EnqueuedURIMetaData":             metadata,
		"DesiredFirstTrackNumberEnqueued": strconv.Itoa(position),
		"EnqueueAsNext":                   enqueueAsNext,
	})
	if err != nil {
		return 0, err
	}
	track, _ := strconv.Atoi(parseTextValue(payload, "FirstTrackNumberEnqueued"))
	return track, nil
}

func (c *Client) RemoveAllTracksFromQueue(ctx context.Context, baseURL string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "RemoveAllTracksFromQueue", map[string]string{
		"InstanceID": "0",
	})
	return err
}

// Seek issues an absolute seek. unit is one of "REL_TIME" (Target is
// "H:MM:SS") or "TRACK_NR" (Target is a 1-based track ordinal).
func (c *Client) Seek(ctx context.Context, baseURL, unit, target string) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "Seek", map[string]string{
		"InstanceID": "0",
		"Unit":       unit,
		"Target":     target,
	})
	return err
}

func (c *Client) SetPlayMode(ctx context.Context, baseURL string, mode PlayMode) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "SetPlayMode", map[string]string{
		"InstanceID":  "0",
		"NewPlayMode": string(mode),
	})
	return err
}

// RenderingControl actions.

func (c *Client) GetVolume(ctx context.Context, baseURL string) (VolumeInfo, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceRenderingControl, "GetVolume", map[string]string{
		"InstanceID": "0",
		"Channel":    "Master",
	})
	if err != nil {
		return VolumeInfo{}, err
	}
	return parseVolume(payload), nil
}

func (c *Client) SetVolume(ctx context.Context, baseURL string, level int) error {
	_, err := c.ExecuteAction(ctx, baseURL, ServiceRenderingControl, "SetVolume", map[string]string{
		"InstanceID":    "0",
		"Channel":       "Master",
		"DesiredVolume": strconv.Itoa(level),
	})
	return err
}

func (c *Client) SetCrossfadeMode(ctx context.Context, baseURL string, enabled bool) error {
	desired := "0"
	if enabled {
		desired = "1"
	}
	_, err := c.ExecuteAction(ctx, baseURL, ServiceAVTransport, "SetCrossfadeMode", map[string]string{
		"InstanceID":    "0",
		"CrossfadeMode": desired,
	})
	return err
}

// ZoneGroupTopology actions.

func (c *Client) GetZoneGroupState(ctx context.Context, baseURL string) (ZoneGroupState, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceZoneGroupTopology, "GetZoneGroupState", map[string]string{})
	if err != nil {
		return ZoneGroupState{}, err
	}
	return parseZoneGroupState(payload), nil
}

// ContentDirectory actions.

const (
	BrowseFlagDirectChildren = "BrowseDirectChildren"
	BrowseFlagMetadata       = "BrowseMetadata"
)

func (c *Client) Browse(ctx context.Context, baseURL, objectID, browseFlag string, startIndex, requestedCount int) (BrowseResult, error) {
	payload, err := c.ExecuteAction(ctx, baseURL, ServiceContentDirectory, "Browse", map[string]string{
		"ObjectID":       objectID,
		"BrowseFlag":     browseFlag,
		"Filter":         "*",
		"StartingIndex":  strconv.Itoa(startIndex),
		"RequestedCount": strconv.Itoa(requestedCount),
		"SortCriteria":   "",
	})
	if err != nil {
		return BrowseResult{}, err
	}
	return parseBrowseResult(payload), nil
}
