package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

var (
	ErrInvalidAction   = fmt.Errorf("invalid action: %w", api.ErrInvalidInput)
	ErrPlaceIDRequired = fmt.Errorf("place_id required: %w", api.ErrInvalidInput)
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService is the business logic over a user's stored memory.
type UserService interface {
	UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences json.RawMessage) error
	UpdateDislikes(ctx context.Context, userID uuid.UUID, update types.DislikeUpdate) error
	Dislikes(ctx context.Context, userID uuid.UUID) (map[string]types.Dislike, error)
	History(ctx context.Context, userID uuid.UUID) (*types.HistoryResponse, error)
	SavePlan(ctx context.Context, userID uuid.UUID, stops []types.PlannedTask) error
	ResetMemory(ctx context.Context, userID uuid.UUID) error
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences json.RawMessage) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdatePreferences", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if len(preferences) == 0 {
		preferences = json.RawMessage("{}")
	}
	if !json.Valid(preferences) {
		return fmt.Errorf("preferences must be JSON: %w", api.ErrInvalidInput)
	}
	if err := s.repo.UpdatePreferences(ctx, userID, preferences); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update preferences", slog.String("userID", userID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "update preferences failed")
		return err
	}
	return nil
}

// UpdateDislikes applies an add or remove; any other action is rejected.
func (s *UserServiceImpl) UpdateDislikes(ctx context.Context, userID uuid.UUID, update types.DislikeUpdate) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateDislikes", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("dislike.action", string(update.Action)),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "UpdateDislikes"), slog.String("userID", userID.String()))

	placeID := strings.TrimSpace(update.PlaceID)
	var err error
	switch update.Action {
	case types.DislikeAdd:
		if placeID == "" {
			return ErrPlaceIDRequired
		}
		err = s.repo.AddDislike(ctx, userID, placeID, types.Dislike{Name: update.Name})
	case types.DislikeRemove:
		err = s.repo.RemoveDislike(ctx, userID, placeID)
	default:
		return ErrInvalidAction
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to update dislikes", slog.Any("error", err))
		span.RecordError(err)
		return err
	}
	l.InfoContext(ctx, "Dislikes updated", slog.String("placeID", placeID))
	return nil
}

func (s *UserServiceImpl) Dislikes(ctx context.Context, userID uuid.UUID) (map[string]types.Dislike, error) {
	return s.repo.GetDislikes(ctx, userID)
}

func (s *UserServiceImpl) History(ctx context.Context, userID uuid.UUID) (*types.HistoryResponse, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "History", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	sessions, err := s.repo.ListPlanSessions(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching history: %w", err)
	}
	return &types.HistoryResponse{Sessions: sessions}, nil
}

// SavePlan records a day plan in the user's history, titled after its tasks.
func (s *UserServiceImpl) SavePlan(ctx context.Context, userID uuid.UUID, stops []types.PlannedTask) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "SavePlan")
	defer span.End()

	id, err := s.repo.SavePlanSession(ctx, userID, PlanTitle(stops), stops)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.DebugContext(ctx, "Plan saved to history", slog.String("userID", userID.String()), slog.String("sessionID", id.String()))
	return nil
}

func (s *UserServiceImpl) ResetMemory(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ResetMemory", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if err := s.repo.ResetMemory(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reset failed")
		if !errors.Is(err, api.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Failed to reset memory", slog.Any("error", err))
		}
		return err
	}
	s.logger.InfoContext(ctx, "Memory reset", slog.String("userID", userID.String()))
	return nil
}

const maxTitleTasks = 3

// PlanTitle joins the first few task names, e.g. "coffee, pharmacy, bank +1 more".
func PlanTitle(stops []types.PlannedTask) string {
	if len(stops) == 0 {
		return "Day plan"
	}
	names := make([]string, 0, maxTitleTasks)
	for i, st := range stops {
		if i == maxTitleTasks {
			break
		}
		names = append(names, st.Task)
	}
	title := strings.Join(names, ", ")
	if extra := len(stops) - maxTitleTasks; extra > 0 {
		title = fmt.Sprintf("%s +%d more", title, extra)
	}
	return title
}
