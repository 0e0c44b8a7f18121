package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/dark-devil9/UrNav/app/db"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo persists what the app remembers about a user.
type UserRepo interface {
	// UpdatePreferences replaces the preferences document.
	// Returns api.ErrNotFound if the user doesn't exist.
	UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences json.RawMessage) error
	AddDislike(ctx context.Context, userID uuid.UUID, placeID string, dislike types.Dislike) error
	RemoveDislike(ctx context.Context, userID uuid.UUID, placeID string) error
	GetDislikes(ctx context.Context, userID uuid.UUID) (map[string]types.Dislike, error)

	// --- Day plan history ---
	SavePlanSession(ctx context.Context, userID uuid.UUID, title string, stops []types.PlannedTask) (uuid.UUID, error)
	ListPlanSessions(ctx context.Context, userID uuid.UUID) ([]types.HistorySession, error)

	// ResetMemory clears preferences and dislikes and deletes the history in one transaction.
	ResetMemory(ctx context.Context, userID uuid.UUID) error
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresUserRepo(pgpool database.Pool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func startSpan(ctx context.Context, name, op, table string, userID uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("UserRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", table),
		attribute.String("db.user.id", userID.String()),
	))
}

func (r *PostgresUserRepo) UpdatePreferences(ctx context.Context, userID uuid.UUID, preferences json.RawMessage) error {
	ctx, span := startSpan(ctx, "UpdatePreferences", "UPDATE", "users", userID)
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE users SET preferences = $2, updated_at = NOW() WHERE id = $1",
		userID, []byte(preferences))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	return nil
}

// AddDislike merges {place_id: {name}} into the dislikes document.
func (r *PostgresUserRepo) AddDislike(ctx context.Context, userID uuid.UUID, placeID string, dislike types.Dislike) error {
	ctx, span := startSpan(ctx, "AddDislike", "UPDATE", "users", userID)
	defer span.End()

	query := `
		UPDATE users
		SET dislikes = dislikes || jsonb_build_object($2::text, jsonb_build_object('name', $3::text)),
		    updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pgpool.Exec(ctx, query, userID, placeID, dislike.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("failed to add dislike: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	return nil
}

// RemoveDislike drops the key; removing an unknown place is not an error.
func (r *PostgresUserRepo) RemoveDislike(ctx context.Context, userID uuid.UUID, placeID string) error {
	ctx, span := startSpan(ctx, "RemoveDislike", "UPDATE", "users", userID)
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		"UPDATE users SET dislikes = dislikes - $2::text, updated_at = NOW() WHERE id = $1",
		userID, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return fmt.Errorf("failed to remove dislike: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepo) GetDislikes(ctx context.Context, userID uuid.UUID) (map[string]types.Dislike, error) {
	ctx, span := startSpan(ctx, "GetDislikes", "SELECT", "users", userID)
	defer span.End()

	var dislikes map[string]types.Dislike
	err := r.pgpool.QueryRow(ctx, "SELECT dislikes FROM users WHERE id = $1", userID).Scan(&dislikes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load dislikes: %w", err)
	}
	if dislikes == nil {
		dislikes = map[string]types.Dislike{}
	}
	return dislikes, nil
}

func (r *PostgresUserRepo) SavePlanSession(ctx context.Context, userID uuid.UUID, title string, stops []types.PlannedTask) (uuid.UUID, error) {
	ctx, span := startSpan(ctx, "SavePlanSession", "INSERT", "plan_sessions", userID)
	defer span.End()

	payload, err := json.Marshal(stops)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode stops: %w", err)
	}

	var id uuid.UUID
	err = r.pgpool.QueryRow(ctx,
		"INSERT INTO plan_sessions (user_id, title, stops) VALUES ($1, $2, $3) RETURNING id",
		userID, title, payload).Scan(&id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return uuid.Nil, fmt.Errorf("failed to save plan session: %w", err)
	}
	span.SetAttributes(attribute.String("plan_session.id", id.String()))
	return id, nil
}

// ListPlanSessions returns the user's plans newest first.
func (r *PostgresUserRepo) ListPlanSessions(ctx context.Context, userID uuid.UUID) ([]types.HistorySession, error) {
	ctx, span := startSpan(ctx, "ListPlanSessions", "SELECT", "plan_sessions", userID)
	defer span.End()
	l := r.logger.With(slog.String("method", "ListPlanSessions"), slog.String("userID", userID.String()))

	rows, err := r.pgpool.Query(ctx, `
		SELECT id, title, stops, created_at
		FROM plan_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query plan sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]types.HistorySession, 0)
	for rows.Next() {
		var (
			s     types.HistorySession
			stops []byte
		)
		if err := rows.Scan(&s.ID, &s.Title, &stops, &s.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan plan session: %w", err)
		}
		if len(stops) > 0 {
			if err := json.Unmarshal(stops, &s.Stops); err != nil {
				l.WarnContext(ctx, "Skipping undecodable stops", slog.String("session", s.ID.String()), slog.Any("error", err))
			}
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating plan sessions: %w", err)
	}
	span.SetAttributes(attribute.Int("db.rows", len(sessions)))
	return sessions, nil
}

func (r *PostgresUserRepo) ResetMemory(ctx context.Context, userID uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "ResetMemory", "UPDATE", "users", userID)
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.WarnContext(ctx, "Rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	tag, err := tx.Exec(ctx,
		"UPDATE users SET preferences = '{}'::jsonb, dislikes = '{}'::jsonb, updated_at = NOW() WHERE id = $1",
		userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	if _, err = tx.Exec(ctx, "DELETE FROM plan_sessions WHERE user_id = $1", userID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete plan sessions: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}
