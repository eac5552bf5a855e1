//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"upick/internal/models"
	"upick/internal/picker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, NewRepository(pool).EnsureSchema(ctx))
	return pool
}

func TestPostgresRepository_SaveAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDatabase(t))
	ctx := context.Background()

	idle := sampleSession(uuid.NewString())

	success := sampleSession(uuid.NewString())
	_, err := success.Begin(models.SearchFilters{Term: "dim sum", Price: models.PriceModerate}, success.CreatedAt)
	require.NoError(t, err)
	require.NoError(t, success.Complete(&models.SearchResult{
		Total: 2,
		Businesses: []models.Business{
			{ID: "x", Name: "Yank Sing", Distance: 1200.5, Photos: []string{"https://img/x.jpg"}},
			{ID: "y", Name: "Good Mong Kok", Distance: 800},
		},
	}, picker.Seeded(5), success.CreatedAt.Add(time.Second)))

	failed := sampleSession(uuid.NewString())
	_, err = failed.Begin(models.SearchFilters{}, failed.CreatedAt)
	require.NoError(t, err)
	require.NoError(t, failed.Fail(assert.AnError, failed.CreatedAt))

	tests := []struct {
		name    string
		session *picker.Session
	}{
		{name: "idle session", session: idle},
		{name: "session with result", session: success},
		{name: "failed session", session: failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, repo.Save(ctx, tt.session))

			found, err := repo.Find(ctx, tt.session.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.session.State, found.State)
			assert.Equal(t, tt.session.Filters, found.Filters)
			assert.Equal(t, tt.session.Message, found.Message)
			assert.Equal(t, tt.session.Selected, found.Selected)
			assert.Equal(t, tt.session.Location, found.Location)
			assert.Equal(t, tt.session.Result, found.Result)
			assert.True(t, tt.session.UpdatedAt.Equal(found.UpdatedAt))
		})
	}
}

func TestPostgresRepository_FindMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDatabase(t))

	_, err := repo.Find(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_MarkLoading(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDatabase(t))
	ctx := context.Background()

	assert.ErrorIs(t, repo.MarkLoading(ctx, sampleSession(uuid.NewString()), time.Time{}), ErrNotFound)

	s := sampleSession(uuid.NewString())
	require.NoError(t, repo.Save(ctx, s))
	_, err := s.Begin(models.SearchFilters{Term: "bbq"}, s.CreatedAt)
	require.NoError(t, err)

	require.NoError(t, repo.MarkLoading(ctx, s, s.CreatedAt))
	assert.ErrorIs(t, repo.MarkLoading(ctx, s, s.CreatedAt), ErrAlreadyLoading)

	stored, err := repo.Find(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.StateLoading, stored.State)
	assert.Equal(t, "bbq", stored.Filters.Term)
	assert.Nil(t, stored.Result)
}

func TestPostgresRepository_MarkLoadingTakesOverAbandoned(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDatabase(t))
	ctx := context.Background()

	s := sampleSession(uuid.NewString())
	_, err := s.Begin(models.SearchFilters{Term: "ramen"}, s.CreatedAt)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	retry := *s
	retry.Filters.Term = "udon"
	retry.UpdatedAt = s.CreatedAt.Add(time.Minute)

	assert.ErrorIs(t, repo.MarkLoading(ctx, &retry, s.CreatedAt), ErrAlreadyLoading)
	require.NoError(t, repo.MarkLoading(ctx, &retry, s.CreatedAt.Add(time.Second)))

	stored, err := repo.Find(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.StateLoading, stored.State)
	assert.Equal(t, "udon", stored.Filters.Term)
}
