// Package dispatch turns a detected intent into a backend call.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dark-devil9/UrNav/internal/client"
	"github.com/dark-devil9/UrNav/internal/geo"
	"github.com/dark-devil9/UrNav/internal/intent"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	explorerRadius   = 5000
	searchRadius     = 3000
	meetFriendRadius = 2000

	friendLocationHelp = "I couldn't understand your friend's location. Please specify where your friend is (e.g., 'meet my friend in Mumbai')"
)

// API is the part of the backend client the router needs.
type API interface {
	Explorer(ctx context.Context, lat, lon float64, radius int) (*types.SearchResponse, error)
	FreePlaces(ctx context.Context, lat, lon float64) (*types.SearchResponse, error)
	SearchPlaces(ctx context.Context, p client.SearchParams) (*types.SearchResponse, error)
	MeetFriend(ctx context.Context, user, friend types.LatLon, activity string, radius int) (*types.MeetFriendResponse, error)
	PlanDay(ctx context.Context, req types.PlanDayRequest) (*types.PlanDayResponse, error)
	Geocode(ctx context.Context, query string, bias *types.LatLon) (*types.GeocodeResult, error)
}

var _ API = (*client.Client)(nil)

type Response struct {
	Success    bool            `json:"success"`
	Data       *intent.Payload `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
}

type Router struct {
	api    API
	logger *slog.Logger
}

func NewRouter(api API, logger *slog.Logger) *Router {
	return &Router{api: api, logger: logger}
}

// Route calls the endpoint named by res. Failures never surface as errors,
// they come back as an unsuccessful Response with a user-facing message.
func (r *Router) Route(ctx context.Context, res intent.Result, loc intent.Location, query string) Response {
	l := r.logger.With(slog.String("method", "Route"), slog.String("intent", res.Intent), slog.String("endpoint", res.Endpoint))
	out := Response{Intent: res.Intent, Confidence: res.Confidence}

	var (
		data *intent.Payload
		err  error
	)
	switch res.Endpoint {
	case intent.EndpointFreePlaces:
		data, err = fromSearch(r.api.FreePlaces(ctx, loc.Lat, loc.Lon))
	case intent.EndpointPlacesSearch:
		q := res.Parameters["query"]
		if q == "" {
			q = ExtractSearchQuery(query)
		}
		data, err = fromSearch(r.api.SearchPlaces(ctx, client.SearchParams{
			Lat:    loc.Lat,
			Lon:    loc.Lon,
			Query:  q,
			Radius: searchRadius,
		}))
	case intent.EndpointMeetFriend:
		friend, ok := r.friendLocation(ctx, query, loc)
		if !ok {
			out.Error = friendLocationHelp
			return out
		}
		var meet *types.MeetFriendResponse
		meet, err = r.api.MeetFriend(ctx, types.LatLon{Lat: loc.Lat, Lon: loc.Lon}, friend, res.Entities.Activity, meetFriendRadius)
		if err == nil {
			data = &intent.Payload{Results: meet.Results}
		}
	case intent.EndpointPlanDay:
		var plan *types.PlanDayResponse
		plan, err = r.api.PlanDay(ctx, types.PlanDayRequest{
			Text:   query,
			Origin: &types.LatLng{Lat: loc.Lat, Lng: loc.Lon},
		})
		if err == nil {
			summary := plan.Summary
			data = &intent.Payload{Stops: plan.Stops, Summary: &summary}
		}
	default:
		data, err = fromSearch(r.api.Explorer(ctx, loc.Lat, loc.Lon, explorerRadius))
	}

	if err != nil {
		l.ErrorContext(ctx, "API routing error", slog.Any("error", err))
		out.Error = "Sorry, I encountered an error while searching: " + err.Error()
		return out
	}
	out.Success = true
	out.Data = data
	return out
}

func fromSearch(resp *types.SearchResponse, err error) (*intent.Payload, error) {
	if err != nil {
		return nil, err
	}
	return &intent.Payload{Results: resp.Results}, nil
}

var placeTypes = []string{
	"park", "museum", "shopping", "mall", "cinema", "theater",
	"library", "gym", "hospital", "bank", "restaurant", "cafe",
	"hotel", "attraction", "landmark", "temple", "mosque", "church",
}

// ExtractSearchQuery returns the first known place type in the query.
func ExtractSearchQuery(query string) string {
	q := strings.ToLower(query)
	for _, t := range placeTypes {
		if strings.Contains(q, t) {
			return t
		}
	}
	return "attraction"
}

var friendLocationPattern = regexp.MustCompile(`(?i)(?:in|at|near|around)\s+([^,\s]+(?:\s+[^,\s]+)*)`)

// ExtractFriendPlace returns the place name following in/at/near/around.
func ExtractFriendPlace(query string) (string, bool) {
	m := friendLocationPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}

func (r *Router) friendLocation(ctx context.Context, query string, loc intent.Location) (types.LatLon, bool) {
	name, ok := ExtractFriendPlace(query)
	if !ok {
		return types.LatLon{}, false
	}
	g, err := r.api.Geocode(ctx, name, &types.LatLon{Lat: loc.Lat, Lon: loc.Lon})
	if err != nil {
		r.logger.WarnContext(ctx, "Geocoding error", slog.String("place", name), slog.Any("error", err))
		return types.LatLon{}, false
	}
	return types.LatLon{Lat: g.Lat, Lon: g.Lon}, true
}

// CurrentLocation names a coordinate pair by reverse geocoding it, falling
// back to the coordinates themselves.
func (r *Router) CurrentLocation(ctx context.Context, lat, lon float64) intent.Location {
	loc := intent.Location{Lat: lat, Lon: lon}
	g, err := r.api.Geocode(ctx, geo.FormatCoordinates(lat, lon), nil)
	if err != nil || g.Name == "" {
		loc.Name = fmt.Sprintf("%.4f, %.4f", lat, lon)
		return loc
	}
	loc.Name = g.Name
	return loc
}
