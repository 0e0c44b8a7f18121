package modes

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	PlanDay(w http.ResponseWriter, r *http.Request)
	CompleteTask(w http.ResponseWriter, r *http.Request)
	TaskStatus(w http.ResponseWriter, r *http.Request)
	FreePlaces(w http.ResponseWriter, r *http.Request)
	MeetFriend(w http.ResponseWriter, r *http.Request)
	Explorer(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	modesService ModesService
	logger       *slog.Logger
}

func NewHandlerImpl(modesService ModesService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		modesService: modesService,
		logger:       logger,
	}
}

func startSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("ModesHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNoTasks), errors.Is(err, ErrTaskRequired), errors.Is(err, ErrOriginRequired):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTaskNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}

// PlanDay godoc
// @Summary      Plan a day of errands
// @Description  Resolves each task (or free text) to a nearby place and returns the walking route summary. Signed-in callers also get the plan saved to their history.
// @Tags         Modes
// @Accept       json
// @Produce      json
// @Param        body body types.PlanDayRequest true "Tasks or text"
// @Success      200 {object} types.PlanDayResponse
// @Failure      400 {object} api.Response "No tasks"
// @Router       /modes/plan-day [post]
func (h *HandlerImpl) PlanDay(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "PlanDay", "/modes/plan-day")
	defer span.End()
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "PlanDay"))

	var req types.PlanDayRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accountID, _ := auth.GetUserIDFromContext(ctx)
	resp, err := h.modesService.PlanDay(ctx, req, accountID)
	if err != nil {
		span.RecordError(err)
		writeError(w, r, err, "Failed to plan day")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// CompleteTask godoc
// @Summary      Complete a planned task
// @Tags         Modes
// @Accept       json
// @Produce      json
// @Param        body body types.CompleteTaskRequest true "Task and session origin"
// @Success      200 {object} types.CompleteTaskResponse
// @Failure      400 {object} api.Response "Missing task or origin"
// @Failure      404 {object} api.Response "Task not found"
// @Router       /modes/plan-day/complete [post]
func (h *HandlerImpl) CompleteTask(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "CompleteTask", "/modes/plan-day/complete")
	defer span.End()
	ctx := r.Context()

	var req types.CompleteTaskRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.modesService.CompleteTask(ctx, req)
	if err != nil {
		h.logger.InfoContext(ctx, "Task not completed", slog.String("task", req.Task), slog.Any("error", err))
		writeError(w, r, err, "Failed to complete task")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// TaskStatus godoc
// @Summary      Task session status
// @Tags         Modes
// @Produce      json
// @Param        user_id query string false "Session owner" default(anonymous)
// @Param        lat query number true "Origin latitude"
// @Param        lng query number true "Origin longitude"
// @Success      200 {object} types.TaskStatusResponse
// @Failure      400 {object} api.Response "Missing coordinates"
// @Router       /modes/plan-day/status [get]
func (h *HandlerImpl) TaskStatus(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "TaskStatus", "/modes/plan-day/status")
	defer span.End()

	lat, okLat, err := api.QueryFloat(r, "lat")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	lng, okLng, err := api.QueryFloat(r, "lng")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !okLat || !okLng {
		api.ErrorResponse(w, r, http.StatusBadRequest, ErrOriginRequired.Error())
		return
	}
	resp := h.modesService.TaskStatus(r.Context(), r.URL.Query().Get("user_id"), types.LatLng{Lat: lat, Lng: lng})
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// FreePlaces godoc
// @Summary      Free places nearby
// @Description  Parks within 3 km, with photos.
// @Tags         Modes
// @Produce      json
// @Param        lat query number false "Latitude" default(26.9124)
// @Param        lon query number false "Longitude" default(75.9231)
// @Success      200 {object} types.SearchResponse
// @Router       /modes/free-places [get]
func (h *HandlerImpl) FreePlaces(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "FreePlaces", "/modes/free-places")
	defer span.End()

	at, ok := browseLocation(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.modesService.FreePlaces(r.Context(), at))
}

// MeetFriend godoc
// @Summary      Find a place between two people
// @Tags         Modes
// @Accept       json
// @Produce      json
// @Param        body body types.MeetFriendRequest true "Both locations, optional activity and radius"
// @Success      200 {object} types.MeetFriendResponse
// @Router       /modes/meet-friend [post]
func (h *HandlerImpl) MeetFriend(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "MeetFriend", "/modes/meet-friend")
	defer span.End()

	var req types.MeetFriendRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.modesService.MeetFriend(r.Context(), req))
}

// Explorer godoc
// @Summary      Explore the area
// @Description  Mixed nearby places (general, food, parks, cafes, shops), closest first, with photos.
// @Tags         Modes
// @Produce      json
// @Param        lat query number false "Latitude" default(26.9124)
// @Param        lon query number false "Longitude" default(75.9231)
// @Param        radius query int false "Radius in metres" default(20000)
// @Success      200 {object} types.SearchResponse
// @Router       /modes/explorer [get]
func (h *HandlerImpl) Explorer(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Explorer", "/modes/explorer")
	defer span.End()

	at, ok := browseLocation(w, r)
	if !ok {
		return
	}
	radius, err := api.QueryIntDefault(r, "radius", DefaultExplorerRadius)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.modesService.Explorer(r.Context(), at, radius))
}

func browseLocation(w http.ResponseWriter, r *http.Request) (types.LatLon, bool) {
	lat, err := api.QueryFloatDefault(r, "lat", api.DefaultLat)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return types.LatLon{}, false
	}
	lon, err := api.QueryFloatDefault(r, "lon", api.DefaultBrowseLon)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return types.LatLon{}, false
	}
	return types.LatLon{Lat: lat, Lon: lon}, true
}
