package modes

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/geo"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	AnonymousUser = "anonymous"

	freePlacesQuery  = "park"
	freePlacesRadius = 3000

	DefaultMeetRadius = 1500
	maxMeetRadius     = 2000

	DefaultExplorerRadius = 20000
)

// DefaultFriend is used when meet-friend gets no friend location.
var DefaultFriend = types.LatLon{Lat: 26.9154, Lon: 75.7903}

// explorerQueries run concurrently; "" is the unfiltered nearby search.
var explorerQueries = []string{"", "restaurant", "park", "cafe", "shop"}

var (
	ErrNoTasks        = errors.New("No tasks provided or could not parse text")
	ErrTaskRequired   = errors.New("Task name is required")
	ErrOriginRequired = errors.New("Origin coordinates are required")
	ErrTaskNotFound   = errors.New("Task not found or session not found")
)

// PlanRecorder stores finished plans for signed-in users.
type PlanRecorder interface {
	SavePlan(ctx context.Context, userID uuid.UUID, stops []types.PlannedTask) error
}

var _ ModesService = (*ModesServiceImpl)(nil)

type ModesService interface {
	// PlanDay resolves tasks to places and records them in the caller's session.
	// accountID is the authenticated user, or empty.
	PlanDay(ctx context.Context, req types.PlanDayRequest, accountID string) (*types.PlanDayResponse, error)
	CompleteTask(ctx context.Context, req types.CompleteTaskRequest) (*types.CompleteTaskResponse, error)
	TaskStatus(ctx context.Context, userID string, origin types.LatLng) *types.TaskStatusResponse
	FreePlaces(ctx context.Context, at types.LatLon) *types.SearchResponse
	MeetFriend(ctx context.Context, req types.MeetFriendRequest) *types.MeetFriendResponse
	Explorer(ctx context.Context, at types.LatLon, radius int) *types.SearchResponse
}

type ModesServiceImpl struct {
	logger        *slog.Logger
	provider      foursquare.Provider
	assistant     generativeAI.Assistant
	places        *PlacesManager
	tasks         *TaskManager
	recorder      PlanRecorder
	defaultOrigin types.LatLng
}

func NewModesService(
	provider foursquare.Provider,
	assistant generativeAI.Assistant,
	tasks *TaskManager,
	recorder PlanRecorder,
	defaultOrigin types.LatLng,
	logger *slog.Logger,
) *ModesServiceImpl {
	if defaultOrigin == (types.LatLng{}) {
		defaultOrigin = types.LatLng{Lat: api.DefaultLat, Lng: api.DefaultLon}
	}
	return &ModesServiceImpl{
		logger:        logger,
		provider:      provider,
		assistant:     assistant,
		places:        NewPlacesManager(provider, assistant, logger),
		tasks:         tasks,
		recorder:      recorder,
		defaultOrigin: defaultOrigin,
	}
}

func (s *ModesServiceImpl) PlanDay(ctx context.Context, req types.PlanDayRequest, accountID string) (*types.PlanDayResponse, error) {
	ctx, span := otel.Tracer("ModesService").Start(ctx, "PlanDay", trace.WithAttributes(
		attribute.Int("tasks.count", len(req.Tasks)),
		attribute.Bool("text.present", req.Text != ""),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "PlanDay"))

	origin := s.defaultOrigin
	if req.Origin != nil {
		origin = *req.Origin
	}
	userID := cmp.Or(req.UserID, AnonymousUser)

	tasks := trimTasks(req.Tasks)
	if len(tasks) == 0 && strings.TrimSpace(req.Text) != "" {
		tasks = s.parsePlan(ctx, req.Text)
	}
	if len(tasks) == 0 {
		span.SetStatus(codes.Error, "no tasks")
		return nil, ErrNoTasks
	}

	resolved := s.places.FindPlacesForTasks(ctx, tasks, origin)
	stamped := s.tasks.AddTasks(userID, origin, resolved)
	metrics.Get().PlanDayRequestsTotal.Add(ctx, 1)

	var stops []types.PlannedTask
	for _, t := range pendingTasks(stamped) {
		if t.Lat != 0 && t.Lng != 0 {
			stops = append(stops, t)
		}
	}
	distance := geo.RouteDistanceKM(origin, stopCoords(stops))

	counts := summarize(stamped)
	resp := &types.PlanDayResponse{
		Origin: origin,
		Tasks:  stamped,
		Stops:  nonNil(stops),
		Summary: types.PlanSummary{
			DistanceKM:     geo.Round1(distance),
			EtaMin:         geo.WalkingETAMinutes(distance),
			TotalTasks:     counts.TotalTasks,
			CompletedTasks: counts.CompletedTasks,
			PendingTasks:   counts.PendingTasks,
		},
	}

	s.recordPlan(ctx, l, accountID, stops)
	l.InfoContext(ctx, "Day planned",
		slog.String("userID", userID),
		slog.Int("tasks", len(stamped)),
		slog.Float64("distanceKM", resp.Summary.DistanceKM))
	return resp, nil
}

func (s *ModesServiceImpl) parsePlan(ctx context.Context, text string) []string {
	if s.assistant == nil {
		return generativeAI.HeuristicPlan(text)
	}
	return trimTasks(s.assistant.ParsePlan(ctx, text))
}

// recordPlan is best effort: history is a convenience, the plan already exists.
func (s *ModesServiceImpl) recordPlan(ctx context.Context, l *slog.Logger, accountID string, stops []types.PlannedTask) {
	if s.recorder == nil || accountID == "" || len(stops) == 0 {
		return
	}
	id, err := uuid.Parse(accountID)
	if err != nil {
		l.WarnContext(ctx, "Not saving plan for malformed user id", slog.String("accountID", accountID))
		return
	}
	if err := s.recorder.SavePlan(ctx, id, stops); err != nil {
		l.ErrorContext(ctx, "Failed to save plan to history", slog.Any("error", err))
	}
}

func (s *ModesServiceImpl) CompleteTask(ctx context.Context, req types.CompleteTaskRequest) (*types.CompleteTaskResponse, error) {
	_, span := otel.Tracer("ModesService").Start(ctx, "CompleteTask", trace.WithAttributes(
		attribute.String("task", req.Task),
	))
	defer span.End()

	if strings.TrimSpace(req.Task) == "" {
		return nil, ErrTaskRequired
	}
	if req.Origin == nil {
		return nil, ErrOriginRequired
	}
	userID := cmp.Or(req.UserID, AnonymousUser)

	updated, ok := s.tasks.CompleteTask(userID, *req.Origin, req.Task)
	if !ok {
		span.SetStatus(codes.Error, "task not found")
		return nil, ErrTaskNotFound
	}
	return &types.CompleteTaskResponse{
		Success:        true,
		Message:        fmt.Sprintf("Task '%s' marked as completed", req.Task),
		SessionSummary: summarize(updated),
		UpdatedTasks:   updated,
	}, nil
}

func (s *ModesServiceImpl) TaskStatus(_ context.Context, userID string, origin types.LatLng) *types.TaskStatusResponse {
	userID = cmp.Or(userID, AnonymousUser)
	tasks := s.tasks.Tasks(userID, origin)
	return &types.TaskStatusResponse{
		SessionSummary: summarize(tasks),
		Tasks:          tasks,
	}
}

func (s *ModesServiceImpl) FreePlaces(ctx context.Context, at types.LatLon) *types.SearchResponse {
	ctx, span := otel.Tracer("ModesService").Start(ctx, "FreePlaces")
	defer span.End()

	resp, err := s.provider.Search(ctx, foursquare.SearchParams{LL: &at, Query: freePlacesQuery, Radius: freePlacesRadius})
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "free-places", err)
		return &types.SearchResponse{Results: demoFreePlaces(at)}
	}
	results := nonNilPlaces(resp.Results)
	foursquare.AttachPhotos(ctx, s.provider, results)
	return &types.SearchResponse{Results: results}
}

// MeetFriend searches around the midpoint, within a radius that shrinks for
// friends who are close together, and keeps the places that really are
// between them when there are any.
func (s *ModesServiceImpl) MeetFriend(ctx context.Context, req types.MeetFriendRequest) *types.MeetFriendResponse {
	ctx, span := otel.Tracer("ModesService").Start(ctx, "MeetFriend")
	defer span.End()

	user := types.LatLon{Lat: s.defaultOrigin.Lat, Lon: s.defaultOrigin.Lng}
	if req.User != nil {
		user = *req.User
	}
	friend := DefaultFriend
	if req.Friend != nil {
		friend = *req.Friend
	}
	radius := req.Radius
	if radius == 0 {
		radius = DefaultMeetRadius
	}

	mid := geo.Midpoint(user, friend)
	apartKM := geo.HaversineKM(user.Lat, user.Lon, friend.Lat, friend.Lon)
	searchRadius := min(radius, int(apartKM*1000*0.8), maxMeetRadius)
	span.SetAttributes(attribute.Int("search.radius", searchRadius))

	resp, err := s.provider.Search(ctx, foursquare.SearchParams{LL: &mid, Query: req.Activity, Radius: searchRadius})
	if err != nil {
		span.RecordError(err)
		s.fallback(ctx, "meet-friend", err)
		return &types.MeetFriendResponse{Midpoint: mid, Results: demoMeetPlaces()}
	}

	var between []types.Place
	for _, p := range resp.Results {
		if !p.HasCoordinates() {
			continue
		}
		if geo.HaversineKM(mid.Lat, mid.Lon, p.Latitude, p.Longitude) <= apartKM*0.6 {
			between = append(between, p)
		}
	}
	if len(between) == 0 {
		between = resp.Results
	}
	return &types.MeetFriendResponse{Midpoint: mid, Results: nonNilPlaces(between)}
}

// Explorer merges several category searches into one distance-ordered list.
// Any failed search falls back to the demo set.
func (s *ModesServiceImpl) Explorer(ctx context.Context, at types.LatLon, radius int) *types.SearchResponse {
	ctx, span := otel.Tracer("ModesService").Start(ctx, "Explorer", trace.WithAttributes(
		attribute.Int("radius", radius),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Explorer"))

	if radius <= 0 {
		radius = DefaultExplorerRadius
	}

	batches := make([][]types.Place, len(explorerQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range explorerQueries {
		g.Go(func() error {
			resp, err := s.provider.Search(gctx, foursquare.SearchParams{LL: &at, Query: q, Radius: radius})
			if err != nil {
				return fmt.Errorf("explorer search %q: %w", q, err)
			}
			batches[i] = resp.Results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		s.fallback(ctx, "explorer", err)
		return &types.SearchResponse{Results: demoExplorerPlaces(at)}
	}

	seen := make(map[string]struct{})
	unique := []types.Place{}
	for _, batch := range batches {
		for _, p := range batch {
			if p.FsqPlaceID == "" {
				continue
			}
			if _, dup := seen[p.FsqPlaceID]; dup {
				continue
			}
			seen[p.FsqPlaceID] = struct{}{}
			unique = append(unique, p)
		}
	}
	slices.SortStableFunc(unique, func(a, b types.Place) int {
		return cmp.Compare(sortDistance(a), sortDistance(b))
	})
	foursquare.AttachPhotos(ctx, s.provider, unique)

	l.DebugContext(ctx, "Explorer results", slog.Int("count", len(unique)))
	return &types.SearchResponse{Results: unique}
}

func (s *ModesServiceImpl) fallback(ctx context.Context, mode string, err error) {
	s.logger.WarnContext(ctx, "Places provider failed, serving demo data",
		slog.String("mode", mode), slog.Any("error", err))
	metrics.Get().FallbackResponsesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

func sortDistance(p types.Place) int {
	if p.Distance <= 0 {
		return math.MaxInt
	}
	return p.Distance
}

func trimTasks(in []string) []string {
	var out []string
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stopCoords(stops []types.PlannedTask) []types.LatLng {
	out := make([]types.LatLng, len(stops))
	for i, t := range stops {
		out[i] = types.LatLng{Lat: t.Lat, Lng: t.Lng}
	}
	return out
}

func nonNil(in []types.PlannedTask) []types.PlannedTask {
	if in == nil {
		return []types.PlannedTask{}
	}
	return in
}

func nonNilPlaces(in []types.Place) []types.Place {
	if in == nil {
		return []types.Place{}
	}
	return in
}
