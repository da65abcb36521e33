package soap

import "context"

// Snapshot is an opaque record of a coordinator's transport state, captured
// by TakeSnapshot and restored by ApplySnapshot. Callers above this package
// treat it as a round-trip-only value (§8 "Snapshot type").
type Snapshot struct {
	transportURI string
	metadata     string
	playMode     PlayMode
	volume       int
	wasPlaying   bool
}

// TakeSnapshot captures enough transport state to later restore playback.
func (c *Client) TakeSnapshot(ctx context.Context, baseURL string) (Snapshot, error) {
	media, err := c.GetMediaInfo(ctx, baseURL)
	if err != nil {
		return Snapshot{}, err
	}
	settings, err := c.GetTransportSettings(ctx, baseURL)
	if err != nil {
		return Snapshot{}, err
	}
	volume, err := c.GetVolume(ctx, baseURL)
	if err != nil {
		return Snapshot{}, err
	}
	transport, err := c.GetTransportInfo(ctx, baseURL)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		transportURI: media.CurrentURI,
		metadata:     media.CurrentURIMetaData,
		playMode:     PlayMode(settings.PlayMode),
		volume:       volume.CurrentVolume,
		wasPlaying:   transport.CurrentTransportState == "PLAYING",
	}, nil
}

// ApplySnapshot restores transport state captured by TakeSnapshot.
func (c *Client) ApplySnapshot(ctx context.Context, baseURL string, snap Snapshot) error {
	if err := c.SetAVTransportURI(ctx, baseURL, snap.transportURI, snap.metadata); err != nil {
		return err
	}
	if snap.playMode != "" {
		if err := c.SetPlayMode(ctx, baseURL, snap.playMode); err != nil {
			return err
		}
	}
	if err := c.SetVolume(ctx, baseURL, snap.volume); err != nil {
		return err
	}
	if snap.wasPlaying {
		return c.Play(ctx, baseURL)
	}
	return c.Pause(ctx, baseURL)
}
