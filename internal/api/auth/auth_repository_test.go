package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresAuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresAuthRepo(mock, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func TestPostgresAuthRepo_CreateUser(t *testing.T) {
	ctx := context.Background()
	email := "jane@example.com"

	t.Run("returns new id", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(&email, (*string)(nil), "hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("11111111-1111-1111-1111-111111111111"))

		id, err := repo.CreateUser(ctx, &email, nil, "hash")
		require.NoError(t, err)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(&email, (*string)(nil), "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.CreateUser(ctx, &email, nil, "hash")
		assert.ErrorIs(t, err, api.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAuthRepo_GetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		email := "jane@example.com"
		now := time.Now()
		mock.ExpectQuery("SELECT id::text, email, phone, password_hash, created_at FROM users WHERE email").
			WithArgs(email).
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "phone", "password_hash", "created_at"}).
				AddRow("u1", &email, (*string)(nil), "hash", now))

		user, err := repo.GetUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.Nil(t, user.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("FROM users WHERE email").
			WithArgs("nobody@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "phone", "password_hash", "created_at"}))

		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestPostgresAuthRepo_GetUserByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	email := "jane@example.com"
	now := time.Now()
	mock.ExpectQuery("SELECT id, name, email, phone, preferences, dislikes").
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "phone", "preferences", "dislikes", "location_awareness", "created_at", "updated_at"}).
			AddRow(id, (*string)(nil), &email, (*string)(nil), json.RawMessage(`{"cuisine":"thai"}`),
				map[string]types.Dislike{"fsq1": {Name: "Loud Cafe"}}, true, now, now))

	user, err := repo.GetUserByID(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.JSONEq(t, `{"cuisine":"thai"}`, string(user.Preferences))
	assert.Equal(t, "Loud Cafe", user.Dislikes["fsq1"].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuthRepo_RefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("store", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		exp := time.Now().Add(time.Hour)
		mock.ExpectExec("INSERT INTO refresh_tokens").
			WithArgs("u1", "tok", exp).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.StoreRefreshToken(ctx, "u1", "tok", exp))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("consume valid token", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE refresh_tokens SET revoked_at = NOW\(\)\s+WHERE token = \$1 AND revoked_at IS NULL AND expires_at > NOW\(\)\s+RETURNING user_id`).
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("u1"))

		userID, err := repo.ConsumeRefreshToken(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired, revoked or unknown token", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("UPDATE refresh_tokens").
			WithArgs("gone").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.ConsumeRefreshToken(ctx, "gone")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db failure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("UPDATE refresh_tokens").
			WithArgs("tok").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ConsumeRefreshToken(ctx, "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, api.ErrUnauthenticated)
	})
}
