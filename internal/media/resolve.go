package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

// Browser is the subset of soap.Client's ContentDirectory surface content
// resolution needs, kept as an interface so tests can fake it.
type Browser interface {
	Browse(ctx context.Context, baseURL, objectID, browseFlag string, startIndex, requestedCount int) (soap.BrowseResult, error)
}

const browsePageSize = 200

// ResolveSonosPlaylist browses the Sonos-hosted "SQ:" playlist container and
// returns the first case-insensitive title match, with empty metadata
// (§6.2 "Sonos playlist").
func ResolveSonosPlaylist(ctx context.Context, browser Browser, baseURL, title string) (Item, error) {
	item, err := findByTitle(ctx, browser, baseURL, "SQ:", title)
	if err != nil {
		return Item{}, err
	}
	return Item{URI: item.Resource, Metadata: ""}, nil
}

// ResolveSonosFavorite browses the "FV:2" favorites container and returns
// the first case-insensitive title match, carrying the item's own resMD
// metadata (§6.2 "Sonos favorite").
func ResolveSonosFavorite(ctx context.Context, browser Browser, baseURL, title string) (Item, error) {
	item, err := findByTitle(ctx, browser, baseURL, "FV:2", title)
	if err != nil {
		return Item{}, err
	}
	return Item{URI: item.Resource, Metadata: item.ResourceMetaData}, nil
}

func findByTitle(ctx context.Context, browser Browser, baseURL, objectID, title string) (soap.FavoriteItem, error) {
	start := 0
	for {
		result, err := browser.Browse(ctx, baseURL, objectID, soap.BrowseFlagDirectChildren, start, browsePageSize)
		if err != nil {
			return soap.FavoriteItem{}, err
		}
		for _, item := range result.Items {
			if strings.EqualFold(item.Title, title) {
				return item, nil
			}
		}
		start += len(result.Items)
		if len(result.Items) == 0 || start >= result.TotalMatches {
			break
		}
	}
	return soap.FavoriteItem{}, fmt.Errorf("media: no item titled %q found under %s", title, objectID)
}
