package cache

import (
	"sort"
	"strings"
)

// BuildKey produces the canonical cache key for a resource path and its query
// parameters. Parameters are sorted by name so that the same parameter set
// always yields the same key regardless of how the caller assembled the map;
// prefix invalidation depends on that.
func BuildKey(path string, params map[string]string) string {
	base := "url:" + path
	if len(params) == 0 {
		return base
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	return base + "?" + strings.Join(pairs, "&")
}

// ReviewsKey is the cache key for one place's review listing.
func ReviewsKey(placeID string, params map[string]string) string {
	return BuildKey("/reviews/"+placeID, params)
}

// AllReviewsKey is the cache key for the global review listing.
func AllReviewsKey(params map[string]string) string {
	return BuildKey("/reviews/all", params)
}

// PlaceKey is the cache key for a place entity, namespaced by its category.
// "thing-to-do" has an irregular plural; everything else just takes an "s".
func PlaceKey(placeType, placeID string) string {
	placeType = strings.ToLower(placeType)
	if placeType == "thing-to-do" {
		return "things-to-do:" + placeID
	}
	return placeType + "s:" + placeID
}

func placeReviewsPattern(placeID string) string {
	return "url:/reviews/" + placeID + "*"
}

func allReviewsPattern() string {
	return "url:/reviews/all*"
}
