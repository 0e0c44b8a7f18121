package foursquare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	DefaultBaseURL    = "https://places-api.foursquare.com"
	DefaultAPIVersion = "2025-06-17"
	DefaultUserAgent  = "urnav/0.1 (+https://example.local)"

	defaultTimeout     = 20 * time.Second
	defaultSearchLimit = 20
	defaultSort        = "DISTANCE"
	defaultCacheTTL    = 5 * time.Minute

	// PhotoSize is the size segment used when building photo URLs.
	PhotoSize = "400x300"
)

var (
	ErrNotConfigured = errors.New("FOURSQUARE_API_KEY is not configured. Please set the FOURSQUARE_API_KEY environment variable.")
	ErrInvalidKey    = errors.New("FOURSQUARE_API_KEY is invalid or expired. Please check your API key.")
	ErrRateLimited   = errors.New("Foursquare API rate limit exceeded. Please try again later.")
)

// StatusError is any other 4xx/5xx from the provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Foursquare API error: %d - %s", e.Status, e.Body)
}

// SearchParams mirrors the /places/search query. LL wins over Near.
type SearchParams struct {
	LL         *types.LatLon
	Near       string
	Query      string
	Radius     int
	Categories string
	Limit      int
	Sort       string
	OpenNow    *bool
	Lang       string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	if p.LL != nil {
		v.Set("ll", formatLL(p.LL.Lat, p.LL.Lon))
	} else if p.Near != "" {
		v.Set("near", p.Near)
	}
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.Radius > 0 {
		v.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.Categories != "" {
		v.Set("categories", p.Categories)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	v.Set("limit", strconv.Itoa(limit))
	sort := p.Sort
	if sort == "" {
		sort = defaultSort
	}
	v.Set("sort", sort)
	if p.OpenNow != nil {
		v.Set("open_now", strconv.FormatBool(*p.OpenNow))
	}
	return v
}

type MatchParams struct {
	Name    string
	Address string
	LL      *types.LatLon
	Lang    string
}

var _ Provider = (*Client)(nil)

// Provider is the places API surface the rest of the backend depends on.
type Provider interface {
	Search(ctx context.Context, p SearchParams) (*types.SearchResponse, error)
	Details(ctx context.Context, placeID, lang string) (*types.Place, error)
	Explore(ctx context.Context, lat, lon float64, radius int, lang string) (*types.ExploreResponse, error)
	Photos(ctx context.Context, placeID string, limit int, lang string) ([]types.Photo, error)
	Tips(ctx context.Context, placeID string, limit int, lang string) ([]types.Tip, error)
	Match(ctx context.Context, p MatchParams) (*types.Place, error)
	// PhotoURLs never fails: errors come back as an empty list.
	PhotoURLs(ctx context.Context, placeID string, limit int) []string
}

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache

	apiKey     string
	baseURL    string
	apiVersion string
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(cfg config.FoursquareConfig, logger *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cache:      cache.New(ttl, 2*ttl),
		apiKey:     cfg.APIKey,
		baseURL:    valueOr(strings.TrimRight(cfg.BaseURL, "/"), DefaultBaseURL),
		apiVersion: valueOr(cfg.APIVersion, DefaultAPIVersion),
		userAgent:  valueOr(cfg.UserAgent, DefaultUserAgent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search results are cached by their encoded query string.
func (c *Client) Search(ctx context.Context, p SearchParams) (*types.SearchResponse, error) {
	query := p.values()
	key := p.Lang + "|" + query.Encode()
	if cached, found := c.cache.Get(key); found {
		metrics.Get().UpstreamCacheHitsTotal.Add(ctx, 1)
		resp := cached.(types.SearchResponse)
		resp.Results = append([]types.Place(nil), resp.Results...)
		return &resp, nil
	}

	var resp types.SearchResponse
	if err := c.get(ctx, "search", "/places/search", query, p.Lang, &resp); err != nil {
		return nil, err
	}
	stored := resp
	stored.Results = append([]types.Place(nil), resp.Results...)
	c.cache.Set(key, stored, cache.DefaultExpiration)
	return &resp, nil
}

func (c *Client) Details(ctx context.Context, placeID, lang string) (*types.Place, error) {
	var place types.Place
	if err := c.get(ctx, "details", "/places/"+url.PathEscape(placeID), nil, lang, &place); err != nil {
		return nil, err
	}
	return &place, nil
}

func (c *Client) Explore(ctx context.Context, lat, lon float64, radius int, lang string) (*types.ExploreResponse, error) {
	q := url.Values{"ll": {formatLL(lat, lon)}}
	if radius > 0 {
		q.Set("radius", strconv.Itoa(radius))
	}
	var resp types.ExploreResponse
	if err := c.get(ctx, "explore", "/places/explore", q, lang, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Photos(ctx context.Context, placeID string, limit int, lang string) ([]types.Photo, error) {
	var photos resultList[types.Photo]
	if err := c.get(ctx, "photos", "/places/"+url.PathEscape(placeID)+"/photos", limitQuery(limit), lang, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *Client) Tips(ctx context.Context, placeID string, limit int, lang string) ([]types.Tip, error) {
	var tips resultList[types.Tip]
	if err := c.get(ctx, "tips", "/places/"+url.PathEscape(placeID)+"/tips", limitQuery(limit), lang, &tips); err != nil {
		return nil, err
	}
	return tips, nil
}

func (c *Client) Match(ctx context.Context, p MatchParams) (*types.Place, error) {
	q := url.Values{"name": {p.Name}}
	if p.Address != "" {
		q.Set("address", p.Address)
	}
	if p.LL != nil {
		q.Set("ll", formatLL(p.LL.Lat, p.LL.Lon))
	}
	var resp struct {
		Place *types.Place `json:"place"`
	}
	if err := c.get(ctx, "match", "/places/match", q, p.Lang, &resp); err != nil {
		return nil, err
	}
	return resp.Place, nil
}

func (c *Client) PhotoURLs(ctx context.Context, placeID string, limit int) []string {
	photos, err := c.Photos(ctx, placeID, limit, "")
	if err != nil {
		c.logger.DebugContext(ctx, "Photo lookup failed", slog.String("placeID", placeID), slog.Any("error", err))
		return []string{}
	}
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		if u := p.SizedURL(PhotoSize); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, lang string, out any) error {
	ctx, span := otel.Tracer("FoursquareClient").Start(ctx, "GET "+endpoint, trace.WithAttributes(
		attribute.String("places.endpoint", endpoint),
		attribute.String("http.request.method", http.MethodGet),
	))
	defer span.End()
	l := c.logger.With(slog.String("method", "get"), slog.String("endpoint", endpoint))

	if c.apiKey == "" {
		span.SetStatus(codes.Error, "not configured")
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Places-Api-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	attrs := metric.WithAttributes(attribute.String("endpoint", endpoint))
	m := metrics.Get()
	m.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	m.UpstreamRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.UpstreamErrorsTotal.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		l.WarnContext(ctx, "Places request failed", slog.Any("error", err))
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		m.UpstreamErrorsTotal.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, resp.Status)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return ErrInvalidKey
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			l.WarnContext(ctx, "Places API error", slog.Int("status", resp.StatusCode))
			return &StatusError{Status: resp.StatusCode, Body: string(body)}
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// resultList accepts a bare array or an object with a results array.
type resultList[T any] []T

func (r *resultList[T]) UnmarshalJSON(b []byte) error {
	var list []T
	if err := json.Unmarshal(b, &list); err == nil {
		*r = list
		return nil
	}
	var wrapped struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*r = wrapped.Results
	return nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func formatLL(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
