package media

import (
	"context"
	"fmt"
)

// Service identifies which content source a Ref names.
type Service int

const (
	ServiceSpotify Service = iota
	ServiceAppleMusic
	ServiceSonosPlaylist
	ServiceSonosFavorite
)

// Ref names one piece of content to resolve to a playable (uri, metadata)
// pair (§6.2). For Spotify/AppleMusic, Item is "kind:id" (e.g.
// "track:4LI1ykYGFCcXPWkrpcU7hn"); for the two Sonos-hosted sources it is
// the item's display title.
type Ref struct {
	Service Service
	Item    string
}

// Resolve dispatches ref to the matching construction or browse-and-match
// strategy.
func Resolve(ctx context.Context, browser Browser, baseURL string, ref Ref) (Item, error) {
	switch ref.Service {
	case ServiceSpotify:
		return SpotifyURI(ref.Item)
	case ServiceAppleMusic:
		return AppleMusicURI(ref.Item)
	case ServiceSonosPlaylist:
		return ResolveSonosPlaylist(ctx, browser, baseURL, ref.Item)
	case ServiceSonosFavorite:
		return ResolveSonosFavorite(ctx, browser, baseURL, ref.Item)
	default:
		return Item{}, fmt.Errorf("media: unknown service %d", ref.Service)
	}
}
