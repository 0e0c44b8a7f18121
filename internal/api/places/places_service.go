package places

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/geo"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	reverseRadius        = 1000
	biasedGeocodeRadius  = 5000
	centredGeocodeRadius = 50000

	DefaultDetailLimit = 6
)

var (
	ErrQueryRequired      = errors.New("Query parameter required for forward geocoding")
	ErrNoResults          = errors.New("No results for query")
	ErrMissingCoordinates = errors.New("Geocode missing coordinates")
)

// DislikeSource returns the places a user never wants to see again.
type DislikeSource interface {
	Dislikes(ctx context.Context, userID uuid.UUID) (map[string]types.Dislike, error)
}

type SearchQuery struct {
	LL     *types.LatLon
	Query  string
	Radius int
	Tags   string
	Near   string
	Lang   string
}

var _ PlacesService = (*PlacesServiceImpl)(nil)

type PlacesService interface {
	// Search never fails; upstream errors degrade to demo results.
	// Places the user dislikes are removed when userID is set.
	Search(ctx context.Context, q SearchQuery, userID string) *types.SearchResponse
	// Geocode resolves a name, or reverse-geocodes when given coordinates only
	// or a query that is itself "lat,lon".
	Geocode(ctx context.Context, query string, at *types.LatLon) (*types.GeocodeResult, error)
	Details(ctx context.Context, placeID, lang string) *types.Place
	Explore(ctx context.Context, at types.LatLon, lang string) *types.ExploreResponse
	Photos(ctx context.Context, placeID string, limit int, lang string) []types.Photo
	Tips(ctx context.Context, placeID string, limit int, lang string) []types.Tip
	Match(ctx context.Context, p foursquare.MatchParams) (*types.Place, error)
}

type PlacesServiceImpl struct {
	logger   *slog.Logger
	provider foursquare.Provider
	dislikes DislikeSource
}

func NewPlacesService(provider foursquare.Provider, dislikes DislikeSource, logger *slog.Logger) *PlacesServiceImpl {
	return &PlacesServiceImpl{
		logger:   logger,
		provider: provider,
		dislikes: dislikes,
	}
}

func (s *PlacesServiceImpl) Search(ctx context.Context, q SearchQuery, userID string) *types.SearchResponse {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query", q.Query),
		attribute.Int("radius", q.Radius),
	))
	defer span.End()

	var results []types.Place
	resp, err := s.provider.Search(ctx, foursquare.SearchParams{
		LL: q.LL, Near: q.Near, Query: q.Query, Radius: q.Radius, Categories: q.Tags, Lang: q.Lang,
	})
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "search", err)
		results = demoSearchResults(q.Query)
	} else {
		results = resp.Results
		foursquare.AttachPhotos(ctx, s.provider, results)
	}

	results = s.withoutDislikes(ctx, userID, results)
	span.SetAttributes(attribute.Int("results.count", len(results)))
	return &types.SearchResponse{Results: results}
}

func (s *PlacesServiceImpl) withoutDislikes(ctx context.Context, userID string, in []types.Place) []types.Place {
	out := make([]types.Place, 0, len(in))
	if s.dislikes == nil || userID == "" {
		return append(out, in...)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return append(out, in...)
	}
	disliked, err := s.dislikes.Dislikes(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not load dislikes, returning unfiltered results", slog.Any("error", err))
		return append(out, in...)
	}
	for _, p := range in {
		if _, skip := disliked[p.FsqPlaceID]; !skip {
			out = append(out, p)
		}
	}
	return out
}

func (s *PlacesServiceImpl) Geocode(ctx context.Context, query string, at *types.LatLon) (*types.GeocodeResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Geocode")
	defer span.End()

	query = strings.TrimSpace(query)
	if ll, ok := geo.ParseCoordinates(query); ok {
		span.SetAttributes(attribute.String("geocode.mode", "reverse"))
		return s.reverse(ctx, ll), nil
	}
	if query == "" && at != nil {
		span.SetAttributes(attribute.String("geocode.mode", "reverse"))
		return s.reverse(ctx, *at), nil
	}
	if query == "" {
		return nil, ErrQueryRequired
	}

	span.SetAttributes(attribute.String("geocode.mode", "forward"))
	params := foursquare.SearchParams{Query: query}
	if at != nil {
		params.LL, params.Radius = at, biasedGeocodeRadius
	} else {
		params.LL, params.Radius = &types.LatLon{Lat: api.DefaultLat, Lon: api.DefaultLon}, centredGeocodeRadius
	}
	resp, err := s.provider.Search(ctx, params)
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "geocode", err)
		return &types.GeocodeResult{Lat: api.DefaultLat, Lon: api.DefaultLon, Name: "Jaipur, Rajasthan", ID: "demo-geocode"}, nil
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}
	first := resp.Results[0]
	if !first.HasCoordinates() {
		return nil, ErrMissingCoordinates
	}
	return &types.GeocodeResult{Lat: first.Latitude, Lon: first.Longitude, Name: first.Name, ID: first.FsqPlaceID}, nil
}

// reverse names a point after the nearest place's area, else a local guess.
func (s *PlacesServiceImpl) reverse(ctx context.Context, ll types.LatLon) *types.GeocodeResult {
	result := &types.GeocodeResult{Lat: ll.Lat, Lon: ll.Lon}

	resp, err := s.provider.Search(ctx, foursquare.SearchParams{LL: &ll, Radius: reverseRadius})
	if err != nil {
		s.fallback(ctx, "reverse-geocode", err)
		result.Name, result.ID = "Jaipur, Rajasthan", "reverse-geocode-fallback"
		return result
	}
	if len(resp.Results) > 0 {
		if area := resp.Results[0].Location.AreaName(); area != "" {
			result.Name, result.ID = area, "reverse-geocode"
			return result
		}
	}

	switch {
	case inJaipur(ll) && ll.Lat > 26.95:
		result.Name, result.ID = "Jaipur, Rajasthan", "reverse-geocode-jaipur"
	case inJaipur(ll):
		result.Name, result.ID = "Beermalpura, Jaipur", "reverse-geocode-beermalpura"
	default:
		result.Name = fmt.Sprintf("Near coordinates (%.4f, %.4f)", ll.Lat, ll.Lon)
		result.ID = "reverse-geocode"
	}
	return result
}

func inJaipur(ll types.LatLon) bool {
	return ll.Lat >= 26.8 && ll.Lat <= 27.0 && ll.Lon >= 75.7 && ll.Lon <= 76.0
}

func (s *PlacesServiceImpl) Details(ctx context.Context, placeID, lang string) *types.Place {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Details", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	p, err := s.provider.Details(ctx, placeID, lang)
	if err != nil || p == nil {
		span.RecordError(cmp.Or(err, api.ErrNotFound))
		s.fallback(ctx, "details", cmp.Or(err, api.ErrNotFound))
		return demoDetails(placeID)
	}
	return p
}

func (s *PlacesServiceImpl) Explore(ctx context.Context, at types.LatLon, lang string) *types.ExploreResponse {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Explore")
	defer span.End()

	resp, err := s.provider.Explore(ctx, at.Lat, at.Lon, 0, lang)
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "explore", err)
		return demoExplore()
	}
	if resp.Groups == nil {
		resp.Groups = []types.ExploreGroup{}
	}
	return resp
}

func (s *PlacesServiceImpl) Photos(ctx context.Context, placeID string, limit int, lang string) []types.Photo {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Photos")
	defer span.End()

	photos, err := s.provider.Photos(ctx, placeID, cmp.Or(limit, DefaultDetailLimit), lang)
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "photos", err)
		return demoPhotos()
	}
	if photos == nil {
		return []types.Photo{}
	}
	return photos
}

func (s *PlacesServiceImpl) Tips(ctx context.Context, placeID string, limit int, lang string) []types.Tip {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Tips")
	defer span.End()

	tips, err := s.provider.Tips(ctx, placeID, cmp.Or(limit, DefaultDetailLimit), lang)
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "tips", err)
		return demoTips()
	}
	if tips == nil {
		return []types.Tip{}
	}
	return tips
}

// Match has no demo fallback; a miss is ErrNotFound.
func (s *PlacesServiceImpl) Match(ctx context.Context, p foursquare.MatchParams) (*types.Place, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Match", trace.WithAttributes(
		attribute.String("name", p.Name),
	))
	defer span.End()

	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", api.ErrInvalidInput)
	}
	place, err := s.provider.Match(ctx, p)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to match place: %w", err)
	}
	if place == nil {
		return nil, api.ErrNotFound
	}
	return place, nil
}

func (s *PlacesServiceImpl) fallback(ctx context.Context, endpoint string, err error) {
	s.logger.WarnContext(ctx, "Places provider failed, serving demo data",
		slog.String("endpoint", endpoint), slog.Any("error", err))
	metrics.Get().FallbackResponsesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", endpoint)))
}
