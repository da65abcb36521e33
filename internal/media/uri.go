// Package media builds the URI and DIDL-Lite metadata pairs the Zone Action
// Dispatcher hands to SetAVTransportURI/AddURIToQueue for third-party music
// services and for Sonos's own playlists and favorites (§6.2). Every value
// here is a literal string template; nothing is derived from per-household
// credentials.
package media

import (
	"fmt"
	"net/url"
	"strings"
)

// Item is a resolved (uri, metadata) pair ready for the AV-transport queue.
type Item struct {
	URI      string
	Metadata string
}

// ErrUnsupportedKind means the content kind has no known URI template.
type ErrUnsupportedKind struct {
	Service string
	Kind    string
}

func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("media: unsupported %s content kind %q", e.Service, e.Kind)
}

// SpotifyURI builds the (uri, metadata) pair for a Spotify content
// reference of the form "kind:id" (e.g. "track:4LI1ykYGFCcXPWkrpcU7hn").
func SpotifyURI(item string) (Item, error) {
	kind, id, ok := strings.Cut(item, ":")
	if !ok {
		return Item{}, &ErrUnsupportedKind{Service: "spotify", Kind: item}
	}

	const region = "3079"
	cdudn := cdudnToken(region)
	enc := url.QueryEscape(fmt.Sprintf("spotify:%s:%s", kind, id))

	switch kind {
	case "album":
		return Item{
			URI: fmt.Sprintf("x-rincon-cpcontainer:0006206c%s?sid=12", enc),
			Metadata: didlLite(
				"0004206c"+enc, "",
				"object.container.album.musicAlbum", cdudn,
			),
		}, nil
	case "track":
		return Item{
			URI: fmt.Sprintf("x-sonos-spotify:%s?sid=12", enc),
			Metadata: didlLite(
				"00030020"+enc, "",
				"object.item.audioItem.musicTrack", cdudn,
			),
		}, nil
	case "playlist":
		return Item{
			URI: fmt.Sprintf("x-rincon-cpcontainer:0006206c%s??sid=12", enc),
			Metadata: didlLite(
				"0004206c"+enc, "",
				"object.container.playlistContainer", cdudn,
			),
		}, nil
	default:
		return Item{}, &ErrUnsupportedKind{Service: "spotify", Kind: kind}
	}
}

// AppleMusicURI builds the (uri, metadata) pair for an Apple Music content
// reference of the form "kind:id". "track" is treated as an alias for
// "song".
func AppleMusicURI(item string) (Item, error) {
	kind, id, ok := strings.Cut(item, ":")
	if !ok {
		return Item{}, &ErrUnsupportedKind{Service: "apple_music", Kind: item}
	}
	if kind == "track" {
		kind = "song"
	}

	const region = "52231"
	cdudn := cdudnToken(region)
	enc := url.QueryEscape(fmt.Sprintf("%s:%s", kind, id))

	switch kind {
	case "album", "libraryalbum":
		return Item{
			URI: fmt.Sprintf("x-rincon-cpcontainer:0004206c%s?sid=204", enc),
			Metadata: didlLite(
				"0004206c"+enc, "00020000album%3A",
				"object.item.audioItem.musicAlbum", cdudn,
			),
		}, nil
	case "song", "librarytrack":
		return Item{
			URI: fmt.Sprintf("x-sonos-http:%s.mp4?sid=204", enc),
			Metadata: didlLite(
				"10032020"+enc, "1004206calbum%3A",
				"object.item.audioItem.musicTrack", cdudn,
			),
		}, nil
	case "playlist", "libraryplaylist":
		return Item{
			URI: fmt.Sprintf("x-rincon-cpcontainer:1006206c%s?sid=204", enc),
			Metadata: didlLite(
				"1006206c"+enc, "00020000playlist%3A",
				"object.container.playlistContainer", cdudn,
			),
		}, nil
	default:
		return Item{}, &ErrUnsupportedKind{Service: "apple_music", Kind: kind}
	}
}

func cdudnToken(region string) string {
	return fmt.Sprintf("SA_RINCON%s_X_#Svc%s-0-Token", region, region)
}

// didlLite renders the single-item DIDL-Lite envelope shared by every
// content kind, unescaped at construction time; PCDATA-escaping happens at
// SOAP submission (§6.2).
func didlLite(id, parentID, upnpClass, cdudn string) string {
	var b strings.Builder
	b.WriteString(`<DIDL-Lite xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" xmlns:r="urn:schemas-rinconnetworks-com:metadata-1-0/" xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/">`)
	b.WriteString(fmt.Sprintf(`<item id="%s" restricted="true" parentID="%s">`, id, parentID))
	b.WriteString(fmt.Sprintf(`<upnp:class>%s</upnp:class>`, upnpClass))
	b.WriteString(fmt.Sprintf(`<desc id="cdudn" nameSpace="urn:schemas-rinconnetworks-com:metadata-1-0/">%s</desc>`, cdudn))
	b.WriteString(`</item>`)
	b.WriteString(`</DIDL-Lite>`)
	return b.String()
}
