package modes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/types"
)

var jaipur = types.LatLng{Lat: 26.9124, Lng: 75.7873}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func offlineAssistant() *generativeAI.AssistantImpl {
	return generativeAI.NewAssistant(nil, config.LLMConfig{}, discardLogger())
}

func place(id, name string, distance int, lat, lon float64, category string) types.Place {
	return types.Place{
		FsqPlaceID: id, Name: name, Distance: distance, Latitude: lat, Longitude: lon,
		Categories: []types.Category{{Name: category}}, Rating: 4,
	}
}

func TestTaskKeywords(t *testing.T) {
	tests := []struct {
		task string
		want []string
	}{
		{"Get coffee", []string{"coffee", "cafe", "coffee shop"}},
		{"Buy flowers at the market", []string{"florist", "flower shop", "gift shop"}},
		{"go to the theater", []string{"cinema", "theater", "museum", "gallery", "amusement"}},
		{"Need a savings account", []string{"bank", "atm", "financial", "credit union", "savings"}},
		{"pick up medicine", []string{"pick", "medicine"}},
		{"fix my bicycle tyre quickly", []string{"fix", "bicycle", "tyre"}},
		{"go to a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskKeywords(tt.task))
		})
	}
}

func TestFindPlaceForTask_PicksClosestWithCoordinates(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
		return p.Radius == 5000 && p.Limit == categorySearchLimit
	})).Return(&types.SearchResponse{Results: []types.Place{
		{FsqPlaceID: "nocoords", Name: "Ghost Cafe", Distance: 100},
		place("far", "Far Cafe", 800, 26.92, 75.79, "Cafe"),
		place("unknown", "Mystery Cafe", 0, 26.91, 75.78, "Cafe"),
		place("near", "Near Cafe", 400, 26.913, 75.788, "Cafe"),
	}}, nil)

	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())
	got := m.FindPlaceForTask(context.Background(), "Get coffee", jaipur, 0)

	assert.Equal(t, "Get coffee", got.Task)
	assert.Equal(t, "Near Cafe", got.Place)
	assert.Equal(t, "near", got.FsqID)
	assert.Equal(t, "Cafe", got.Category)
	assert.Equal(t, 400, got.Distance)
	provider.AssertNotCalled(t, "Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
		return p.Radius == 10000
	}))
}

func TestFindPlaceForTask_RelevanceBreaksDistanceTies(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{Results: []types.Place{
		place("hw", "Hardware Depot", 400, 26.91, 75.78, "Hardware Store"),
		place("cf", "Brew Coffee House", 400, 26.91, 75.78, "Coffee Shop"),
	}}, nil)

	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())
	got := m.FindPlaceForTask(context.Background(), "Get coffee", jaipur, 0)
	assert.Equal(t, "cf", got.FsqID)
}

func TestFindPlaceForTask_WidensRadiusThenKeywordSearch(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
		return p.Radius != keywordSearchRadius
	})).Return(&types.SearchResponse{Results: []types.Place{}}, nil)
	provider.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
		return p.Radius == keywordSearchRadius && p.Limit == keywordSearchLimit
	})).Return(&types.SearchResponse{Results: []types.Place{
		place("kw", "Keyword Florist", 12000, 26.99, 75.88, "Florist"),
	}}, nil)

	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())
	got := m.FindPlaceForTask(context.Background(), "Buy flowers", jaipur, 0)

	assert.Equal(t, "kw", got.FsqID)
	for _, radius := range searchRadii {
		provider.AssertCalled(t, "Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
			return p.Radius == radius && p.Query == "florist"
		}))
	}
}

func TestFindPlaceForTask_FallbackPlaces(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("upstream down"))
	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())

	t.Run("known category", func(t *testing.T) {
		got := m.FindPlaceForTask(context.Background(), "Get coffee", jaipur, 1)
		assert.Equal(t, "Corner Café", got.Place)
		assert.Equal(t, "Cafe", got.Category)
		assert.Equal(t, 450, got.Distance)
		assert.Equal(t, "fallback_coffee_1", got.FsqID)
		assert.InDelta(t, jaipur.Lat+0.001*math.Cos(1.2), got.Lat, 1e-9)
		assert.InDelta(t, jaipur.Lng+0.001*math.Sin(1.2), got.Lng, 1e-9)
	})

	t.Run("index past the table", func(t *testing.T) {
		got := m.FindPlaceForTask(context.Background(), "visit park", jaipur, 5)
		assert.Equal(t, "Riverside Walk", got.Place)
		assert.InDelta(t, jaipur.Lat+6*0.0008*math.Cos(4.0), got.Lat, 1e-9)
	})

	t.Run("generic", func(t *testing.T) {
		got := m.FindPlaceForTask(context.Background(), "fix bicycle", jaipur, 0)
		assert.Equal(t, "Local Fix Place", got.Place)
		assert.Equal(t, "General", got.Category)
		assert.Equal(t, 200, got.Distance)
		assert.Equal(t, 4.0, got.Rating)
		assert.Equal(t, "fallback_fix_0", got.FsqID)
	})
}

func TestFindPlaceForTask_NoSearchTerms(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())

	got := m.FindPlaceForTask(context.Background(), "go to a", jaipur, 0)
	assert.Equal(t, noPlaceName, got.Place)
	assert.Equal(t, noPlaceCategory, got.Category)
	assert.Zero(t, got.Lat)
	provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFindPlacesForTasks_KeepsOrder(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	m := NewPlacesManager(provider, offlineAssistant(), discardLogger())

	got := m.FindPlacesForTasks(context.Background(), []string{"Get coffee", "Buy groceries", "visit park"}, jaipur)
	assert.Len(t, got, 3)
	assert.Equal(t, "Local Coffee Shop", got[0].Place)
	assert.Equal(t, "Fresh Foods", got[1].Place)
	assert.Equal(t, "Riverside Walk", got[2].Place)
}
