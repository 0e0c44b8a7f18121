package routes

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/geo"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ RoutesService = (*RoutesServiceImpl)(nil)

type RoutesService interface {
	// Optimize measures the walk through stops in the order given.
	Optimize(ctx context.Context, stops []types.LatLng) *types.OptimizeRouteResponse
}

type RoutesServiceImpl struct{}

func NewRoutesService() *RoutesServiceImpl {
	return &RoutesServiceImpl{}
}

func (s *RoutesServiceImpl) Optimize(ctx context.Context, stops []types.LatLng) *types.OptimizeRouteResponse {
	_, span := otel.Tracer("RoutesService").Start(ctx, "Optimize", trace.WithAttributes(
		attribute.Int("stops.count", len(stops)),
	))
	defer span.End()

	if stops == nil {
		stops = []types.LatLng{}
	}
	km := geo.PathDistanceKM(stops)
	return &types.OptimizeRouteResponse{
		DistanceKM: geo.Round1(km),
		EtaMin:     geo.WalkingETAMinutes(km),
		Stops:      stops,
	}
}
