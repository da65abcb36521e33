package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

type fakeBrowser struct {
	pages map[string][]soap.FavoriteItem
}

func (b *fakeBrowser) Browse(ctx context.Context, baseURL, objectID, browseFlag string, startIndex, requestedCount int) (soap.BrowseResult, error) {
	items := b.pages[objectID]
	if startIndex >= len(items) {
		return soap.BrowseResult{TotalMatches: len(items)}, nil
	}
	end := len(items)
	if requestedCount > 0 && startIndex+requestedCount < end {
		end = startIndex + requestedCount
	}
	return soap.BrowseResult{Items: items[startIndex:end], TotalMatches: len(items)}, nil
}

func TestResolveSonosFavoriteMatchesByTitleCaseInsensitively(t *testing.T) {
	browser := &fakeBrowser{pages: map[string][]soap.FavoriteItem{
		"FV:2": {
			{Title: "Jazz Radio", Resource: "x-rincon-mp3radio://jazz", ResourceMetaData: "<DIDL-Lite/>"},
			{Title: "Morning Mix", Resource: "x-sonosapi-radio://morning"},
		},
	}}

	item, err := ResolveSonosFavorite(context.Background(), browser, "http://device", "morning mix")
	require.NoError(t, err)
	require.Equal(t, "x-sonosapi-radio://morning", item.URI)
}

func TestResolveSonosPlaylistNotFound(t *testing.T) {
	browser := &fakeBrowser{pages: map[string][]soap.FavoriteItem{
		"SQ:": {{Title: "Road Trip", Resource: "file:///road-trip.dsl"}},
	}}

	_, err := ResolveSonosPlaylist(context.Background(), browser, "http://device", "Workout")
	require.Error(t, err)
}

func TestResolveSonosPlaylistPaginates(t *testing.T) {
	pages := make([]soap.FavoriteItem, 0, 250)
	for i := 0; i < 250; i++ {
		pages = append(pages, soap.FavoriteItem{Title: "filler"})
	}
	pages = append(pages, soap.FavoriteItem{Title: "Target Playlist", Resource: "file:///target.dsl"})

	browser := &fakeBrowser{pages: map[string][]soap.FavoriteItem{"SQ:": pages}}

	item, err := ResolveSonosPlaylist(context.Background(), browser, "http://device", "target playlist")
	require.NoError(t, err)
	require.Equal(t, "file:///target.dsl", item.URI)
}

func TestResolveDispatchesByService(t *testing.T) {
	item, err := Resolve(context.Background(), &fakeBrowser{}, "http://device", Ref{Service: ServiceSpotify, Item: "track:123"})
	require.NoError(t, err)
	require.Contains(t, item.URI, "x-sonos-spotify:")
}
