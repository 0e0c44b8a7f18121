package places

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Search(w http.ResponseWriter, r *http.Request)
	Geocode(w http.ResponseWriter, r *http.Request)
	Match(w http.ResponseWriter, r *http.Request)
	Explore(w http.ResponseWriter, r *http.Request)
	Details(w http.ResponseWriter, r *http.Request)
	Photos(w http.ResponseWriter, r *http.Request)
	Tips(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	placesService PlacesService
	logger        *slog.Logger
}

func NewHandlerImpl(placesService PlacesService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		placesService: placesService,
		logger:        logger,
	}
}

func startSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// optionalLocation reads lat and lon; both must be present to count.
func optionalLocation(w http.ResponseWriter, r *http.Request) (*types.LatLon, bool) {
	lat, okLat, err := api.QueryFloat(r, "lat")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	lon, okLon, err := api.QueryFloat(r, "lon")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if !okLat || !okLon {
		return nil, true
	}
	return &types.LatLon{Lat: lat, Lon: lon}, true
}

// Search godoc
// @Summary      Search places
// @Description  Nearby search with up to three photo URLs per result. Places the signed-in user disliked are left out.
// @Tags         Places
// @Produce      json
// @Param        lat query number false "Latitude"
// @Param        lon query number false "Longitude"
// @Param        query query string false "Free text"
// @Param        radius query int false "Radius in metres"
// @Param        tags query string false "Category ids"
// @Param        near query string false "Named area, used without lat/lon"
// @Param        lang query string false "Response language"
// @Success      200 {object} types.SearchResponse
// @Router       /places/search [get]
func (h *HandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Search", "/places/search")
	defer span.End()

	ll, ok := optionalLocation(w, r)
	if !ok {
		return
	}
	radius, err := api.QueryIntDefault(r, "radius", 0)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	userID, _ := auth.GetUserIDFromContext(r.Context())
	resp := h.placesService.Search(r.Context(), SearchQuery{
		LL:     ll,
		Query:  q.Get("query"),
		Radius: radius,
		Tags:   q.Get("tags"),
		Near:   q.Get("near"),
		Lang:   q.Get("lang"),
	}, userID)
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Geocode godoc
// @Summary      Geocode or reverse geocode
// @Description  With only lat/lon, or a query of the form "lat,lon", returns a name for the point. Otherwise resolves the query, biased towards lat/lon when given.
// @Tags         Places
// @Produce      json
// @Param        query query string false "Place name or lat,lon"
// @Param        lat query number false "Latitude"
// @Param        lon query number false "Longitude"
// @Success      200 {object} types.GeocodeResult
// @Failure      400 {object} api.Response "Query required"
// @Failure      404 {object} api.Response "No results"
// @Failure      502 {object} api.Response "Result without coordinates"
// @Router       /places/geocode [get]
func (h *HandlerImpl) Geocode(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Geocode", "/places/geocode")
	defer span.End()

	at, ok := optionalLocation(w, r)
	if !ok {
		return
	}
	result, err := h.placesService.Geocode(r.Context(), r.URL.Query().Get("query"), at)
	switch {
	case errors.Is(err, ErrQueryRequired):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoResults):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrMissingCoordinates):
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
	case err != nil:
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Geocoding failed")
	default:
		api.WriteJSONResponse(w, r, http.StatusOK, result)
	}
}

// Match godoc
// @Summary      Match a known venue
// @Tags         Places
// @Produce      json
// @Param        name query string true "Venue name"
// @Param        address query string false "Street address"
// @Param        lat query number false "Latitude"
// @Param        lon query number false "Longitude"
// @Success      200 {object} types.Place
// @Failure      400 {object} api.Response "Name required"
// @Failure      404 {object} api.Response "No match"
// @Failure      502 {object} api.Response "Provider error"
// @Router       /places/match [get]
func (h *HandlerImpl) Match(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Match", "/places/match")
	defer span.End()

	at, ok := optionalLocation(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	place, err := h.placesService.Match(r.Context(), foursquare.MatchParams{
		Name: q.Get("name"), Address: q.Get("address"), LL: at, Lang: q.Get("lang"),
	})
	switch {
	case errors.Is(err, api.ErrInvalidInput):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Query parameter name is required")
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "No matching place")
	case err != nil:
		span.RecordError(err)
		h.logger.WarnContext(r.Context(), "Match failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
	default:
		api.WriteJSONResponse(w, r, http.StatusOK, place)
	}
}

// Explore godoc
// @Summary      Recommended places
// @Tags         Places
// @Produce      json
// @Param        lat query number true "Latitude"
// @Param        lon query number true "Longitude"
// @Success      200 {object} types.ExploreResponse
// @Failure      400 {object} api.Response "Missing coordinates"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /places/explore [get]
func (h *HandlerImpl) Explore(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Explore", "/places/explore")
	defer span.End()

	at, ok := optionalLocation(w, r)
	if !ok {
		return
	}
	if at == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Query parameters lat and lon are required")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.placesService.Explore(r.Context(), *at, r.URL.Query().Get("lang")))
}

// Details godoc
// @Summary      Place details
// @Tags         Places
// @Produce      json
// @Param        placeID path string true "Place id"
// @Param        lang query string false "Response language"
// @Success      200 {object} types.Place
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /places/{placeID} [get]
func (h *HandlerImpl) Details(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Details", "/places/{placeID}")
	defer span.End()

	placeID := strings.TrimSpace(chi.URLParam(r, "placeID"))
	api.WriteJSONResponse(w, r, http.StatusOK, h.placesService.Details(r.Context(), placeID, r.URL.Query().Get("lang")))
}

// Photos godoc
// @Summary      Place photos
// @Tags         Places
// @Produce      json
// @Param        placeID path string true "Place id"
// @Param        limit query int false "Max photos" default(6)
// @Param        lang query string false "Response language"
// @Success      200 {array} types.Photo
// @Router       /places/{placeID}/photos [get]
func (h *HandlerImpl) Photos(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Photos", "/places/{placeID}/photos")
	defer span.End()

	limit, err := api.QueryIntDefault(r, "limit", DefaultDetailLimit)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	photos := h.placesService.Photos(r.Context(), chi.URLParam(r, "placeID"), limit, r.URL.Query().Get("lang"))
	api.WriteJSONResponse(w, r, http.StatusOK, photos)
}

// Tips godoc
// @Summary      Place tips
// @Tags         Places
// @Produce      json
// @Param        placeID path string true "Place id"
// @Param        limit query int false "Max tips" default(6)
// @Param        lang query string false "Response language"
// @Success      200 {array} types.Tip
// @Router       /places/{placeID}/tips [get]
func (h *HandlerImpl) Tips(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Tips", "/places/{placeID}/tips")
	defer span.End()

	limit, err := api.QueryIntDefault(r, "limit", DefaultDetailLimit)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tips := h.placesService.Tips(r.Context(), chi.URLParam(r, "placeID"), limit, r.URL.Query().Get("lang"))
	api.WriteJSONResponse(w, r, http.StatusOK, tips)
}
