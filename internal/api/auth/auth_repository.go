package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/dark-devil9/UrNav/app/db"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

const uniqueViolation = "23505"

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	CreateUser(ctx context.Context, email, phone *string, passwordHash string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByPhone(ctx context.Context, phone string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, token string) (string, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewPostgresAuthRepo(pgpool database.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func dbSpan(ctx context.Context, name, op, table string) (context.Context, trace.Span) {
	return otel.Tracer("AuthRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", table),
	))
}

// CreateUser inserts the user and returns its id. Unique violations on email
// or phone come back as api.ErrConflict.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, email, phone *string, passwordHash string) (string, error) {
	ctx, span := dbSpan(ctx, "CreateUser", "INSERT", "users")
	defer span.End()
	l := r.logger.With(slog.String("method", "CreateUser"))

	var id string
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (email, phone, password_hash, preferences, dislikes)
		 VALUES ($1, $2, $3, '{}'::jsonb, '{}'::jsonb)
		 RETURNING id::text`,
		email, phone, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			l.WarnContext(ctx, "User already exists", slog.String("constraint", pgErr.ConstraintName))
			span.SetStatus(codes.Error, "duplicate user")
			return "", fmt.Errorf("user already exists: %w", api.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return "", fmt.Errorf("error creating user: %w", err)
	}
	span.SetAttributes(attribute.String("db.user.id", id))
	return id, nil
}

func (r *PostgresAuthRepo) getUserAuth(ctx context.Context, column, value string) (*types.UserAuth, error) {
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx,
		`SELECT id::text, email, phone, password_hash, created_at FROM users WHERE `+column+` = $1`,
		value).Scan(&user.ID, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user by %s: %w", column, err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	ctx, span := dbSpan(ctx, "GetUserByEmail", "SELECT", "users")
	defer span.End()

	user, err := r.getUserAuth(ctx, "email", email)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
	}
	return user, err
}

func (r *PostgresAuthRepo) GetUserByPhone(ctx context.Context, phone string) (*types.UserAuth, error) {
	ctx, span := dbSpan(ctx, "GetUserByPhone", "SELECT", "users")
	defer span.End()

	user, err := r.getUserAuth(ctx, "phone", phone)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
	}
	return user, err
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	ctx, span := dbSpan(ctx, "GetUserByID", "SELECT", "users")
	defer span.End()
	span.SetAttributes(attribute.String("db.user.id", userID))

	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, name, email, phone, preferences, dislikes, location_awareness, created_at, updated_at
		 FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Preferences,
		&user.Dislikes, &user.LocationAwareness, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch user", slog.String("userID", userID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	ctx, span := dbSpan(ctx, "StoreRefreshToken", "INSERT", "refresh_tokens")
	defer span.End()

	_, err := r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		userID, token, expiresAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken revokes an unrevoked, unexpired token and returns its
// owner in one statement, so a token can be exchanged at most once.
func (r *PostgresAuthRepo) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	ctx, span := dbSpan(ctx, "ConsumeRefreshToken", "UPDATE", "refresh_tokens")
	defer span.End()

	var userID string
	err := r.pgpool.QueryRow(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW()
		 WHERE token = $1 AND revoked_at IS NULL AND expires_at > NOW()
		 RETURNING user_id::text`,
		token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("refresh token unknown, expired or revoked: %w", api.ErrUnauthenticated)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return "", fmt.Errorf("error consuming refresh token: %w", err)
	}
	return userID, nil
}
