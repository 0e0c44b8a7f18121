package routes

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Optimize(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	routesService RoutesService
	logger        *slog.Logger
}

func NewHandlerImpl(routesService RoutesService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		routesService: routesService,
		logger:        logger,
	}
}

// Optimize godoc
// @Summary      Route distance and walking time
// @Description  Sums the legs between consecutive stops. Stops are returned in the order given.
// @Tags         Routes
// @Accept       json
// @Produce      json
// @Param        request body types.OptimizeRouteRequest true "Stops"
// @Success      200 {object} types.OptimizeRouteResponse
// @Failure      400 {object} api.Response "Invalid body"
// @Router       /routes/optimize [post]
func (h *HandlerImpl) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RoutesHandler").Start(r.Context(), "Optimize", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/routes/optimize"),
	))
	defer span.End()

	var req types.OptimizeRouteRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		h.logger.DebugContext(ctx, "Rejected optimize body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.routesService.Optimize(ctx, req.Stops))
}
