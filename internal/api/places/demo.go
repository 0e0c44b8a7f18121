package places

import (
	"cmp"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

const demoCreatedAt = "2025-01-01T00:00:00Z"

func demoSearchResults(query string) []types.Place {
	label := cmp.Or(query, "Place")
	return []types.Place{
		{
			FsqPlaceID: "demo-search-1",
			Name:       "Demo " + label + " 1",
			Categories: []types.Category{{Name: "Demo Category"}},
			Distance:   500,
			Rating:     4.2,
			Latitude:   api.DefaultLat,
			Longitude:  api.DefaultLon,
			Photos:     []string{"https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=400&h=300&fit=crop"},
		},
		{
			FsqPlaceID: "demo-search-2",
			Name:       "Demo " + label + " 2",
			Categories: []types.Category{{Name: "Demo Category"}},
			Distance:   800,
			Rating:     4.0,
			Latitude:   26.9134,
			Longitude:  75.7883,
			Photos:     []string{"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=400&h=300&fit=crop"},
		},
	}
}

func demoDetails(placeID string) *types.Place {
	return &types.Place{
		FsqPlaceID: placeID,
		Name:       "Demo Place " + placeID,
		Categories: []types.Category{{Name: "Demo Category"}},
		Rating:     4.2,
		Stats:      &types.PlaceStats{TotalPhotos: 5, TotalTips: 3},
		Latitude:   api.DefaultLat,
		Longitude:  api.DefaultLon,
		Location: &types.PlaceLocation{
			Address:  "Demo Address",
			Locality: "Demo City",
			Region:   "Demo Region",
		},
	}
}

func demoExplore() *types.ExploreResponse {
	return &types.ExploreResponse{Groups: []types.ExploreGroup{{
		Type: "Recommended Places",
		Name: "Recommended",
		Items: []types.Place{{
			FsqPlaceID: "demo-explore-1",
			Name:       "Demo Attraction",
			Categories: []types.Category{{Name: "Attraction"}},
			Distance:   600,
			Rating:     4.3,
		}},
	}}}
}

func demoPhotos() []types.Photo {
	return []types.Photo{
		{ID: "demo-photo-1", CreatedAt: demoCreatedAt, Prefix: "https://via.placeholder.com/", Suffix: "300x200/4CAF50/FFFFFF?text=Demo+Photo+1", Width: 300, Height: 200},
		{ID: "demo-photo-2", CreatedAt: demoCreatedAt, Prefix: "https://via.placeholder.com/", Suffix: "300x200/2196F3/FFFFFF?text=Demo+Photo+2", Width: 300, Height: 200},
	}
}

func demoTips() []types.Tip {
	return []types.Tip{
		{ID: "demo-tip-1", CreatedAt: demoCreatedAt, Text: "This is a great demo place to visit!", Lang: "en", AgreeCount: 5},
		{ID: "demo-tip-2", CreatedAt: demoCreatedAt, Text: "Highly recommended for demo purposes.", Lang: "en", AgreeCount: 3},
	}
}
