// Package foursquaretest provides a testify mock of foursquare.Provider.
package foursquaretest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ foursquare.Provider = (*MockProvider)(nil)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, p foursquare.SearchParams) (*types.SearchResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SearchResponse), args.Error(1)
}

func (m *MockProvider) Details(ctx context.Context, placeID, lang string) (*types.Place, error) {
	args := m.Called(ctx, placeID, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Place), args.Error(1)
}

func (m *MockProvider) Explore(ctx context.Context, lat, lon float64, radius int, lang string) (*types.ExploreResponse, error) {
	args := m.Called(ctx, lat, lon, radius, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExploreResponse), args.Error(1)
}

func (m *MockProvider) Photos(ctx context.Context, placeID string, limit int, lang string) ([]types.Photo, error) {
	args := m.Called(ctx, placeID, limit, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Photo), args.Error(1)
}

func (m *MockProvider) Tips(ctx context.Context, placeID string, limit int, lang string) ([]types.Tip, error) {
	args := m.Called(ctx, placeID, limit, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Tip), args.Error(1)
}

func (m *MockProvider) Match(ctx context.Context, p foursquare.MatchParams) (*types.Place, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Place), args.Error(1)
}

func (m *MockProvider) PhotoURLs(ctx context.Context, placeID string, limit int) []string {
	args := m.Called(ctx, placeID, limit)
	if args.Get(0) == nil {
		return []string{}
	}
	return args.Get(0).([]string)
}

// SearchFor matches a Search call by query text only.
func SearchFor(query string) any {
	return mock.MatchedBy(func(p foursquare.SearchParams) bool { return p.Query == query })
}
