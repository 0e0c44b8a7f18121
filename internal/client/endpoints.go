package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dark-devil9/UrNav/internal/types"
)

type SearchParams struct {
	Lat    float64
	Lon    float64
	Query  string
	Radius int
	Tags   string
}

func (c *Client) SearchPlaces(ctx context.Context, p SearchParams) (*types.SearchResponse, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(p.Lat))
	q.Set("lon", formatFloat(p.Lon))
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.Radius != 0 {
		q.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.Tags != "" {
		q.Set("tags", p.Tags)
	}
	var out types.SearchResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/places/search", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Geocode resolves a free-text place, optionally biased towards a point.
func (c *Client) Geocode(ctx context.Context, query string, bias *types.LatLon) (*types.GeocodeResult, error) {
	q := url.Values{}
	q.Set("query", query)
	if bias != nil {
		q.Set("lat", formatFloat(bias.Lat))
		q.Set("lon", formatFloat(bias.Lon))
	}
	var out types.GeocodeResult
	if err := c.do(ctx, http.MethodGet, withQuery("/places/geocode", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*types.GeocodeResult, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	var out types.GeocodeResult
	if err := c.do(ctx, http.MethodGet, withQuery("/places/geocode", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MeetFriend(ctx context.Context, user, friend types.LatLon, activity string, radius int) (*types.MeetFriendResponse, error) {
	body := types.MeetFriendRequest{User: &user, Friend: &friend, Activity: activity, Radius: radius}
	var out types.MeetFriendResponse
	if err := c.do(ctx, http.MethodPost, "/modes/meet-friend", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.TokenPair, error) {
	var out types.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.TokenPair, error) {
	var out types.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	var out types.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", types.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*types.UserProfile, error) {
	var out types.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PlanDay(ctx context.Context, req types.PlanDayRequest) (*types.PlanDayResponse, error) {
	var out types.PlanDayResponse
	if err := c.do(ctx, http.MethodPost, "/modes/plan-day", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteTask(ctx context.Context, req types.CompleteTaskRequest) (*types.CompleteTaskResponse, error) {
	var out types.CompleteTaskResponse
	if err := c.do(ctx, http.MethodPost, "/modes/plan-day/complete", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TaskStatus(ctx context.Context, userID string, origin types.LatLng) (*types.TaskStatusResponse, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("user_id", userID)
	}
	q.Set("lat", formatFloat(origin.Lat))
	q.Set("lng", formatFloat(origin.Lng))
	var out types.TaskStatusResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/modes/plan-day/status", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Explorer omits radius when it is zero so the server default applies.
func (c *Client) Explorer(ctx context.Context, lat, lon float64, radius int) (*types.SearchResponse, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	if radius != 0 {
		q.Set("radius", strconv.Itoa(radius))
	}
	var out types.SearchResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/modes/explorer", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FreePlaces(ctx context.Context, lat, lon float64) (*types.SearchResponse, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	var out types.SearchResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/modes/free-places", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PlaceDetails(ctx context.Context, id string) (*types.Place, error) {
	var out types.Place
	if err := c.do(ctx, http.MethodGet, "/places/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlacePhotos defaults limit to 6 when it is not positive.
func (c *Client) PlacePhotos(ctx context.Context, id string, limit int) ([]types.Photo, error) {
	if limit <= 0 {
		limit = 6
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var out []types.Photo
	if err := c.do(ctx, http.MethodGet, withQuery("/places/"+url.PathEscape(id)+"/photos", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceTips(ctx context.Context, id string, limit int) ([]types.Tip, error) {
	if limit <= 0 {
		limit = 6
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var out []types.Tip
	if err := c.do(ctx, http.MethodGet, withQuery("/places/"+url.PathEscape(id)+"/tips", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	var out types.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OptimizeRoute(ctx context.Context, stops []types.LatLng) (*types.OptimizeRouteResponse, error) {
	var out types.OptimizeRouteResponse
	if err := c.do(ctx, http.MethodPost, "/routes/optimize", types.OptimizeRouteRequest{Stops: stops}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, prefs types.PreferencesUpdate) (*types.StatusMessage, error) {
	var out types.StatusMessage
	if err := c.do(ctx, http.MethodPut, "/users/preferences", prefs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDislikes(ctx context.Context, upd types.DislikeUpdate) (*types.StatusMessage, error) {
	var out types.StatusMessage
	if err := c.do(ctx, http.MethodPut, "/users/dislikes", upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context) (*types.HistoryResponse, error) {
	var out types.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/users/history", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetMemory(ctx context.Context) (*types.StatusMessage, error) {
	var out types.StatusMessage
	if err := c.do(ctx, http.MethodDelete, "/users/memory/reset", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
