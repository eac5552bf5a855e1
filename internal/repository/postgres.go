package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"upick/internal/models"
	"upick/internal/picker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS upick_sessions (
		id UUID PRIMARY KEY,
		location JSONB NOT NULL,
		term TEXT NOT NULL DEFAULT '',
		price VARCHAR(3) NOT NULL DEFAULT '',
		state VARCHAR(16) NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		result JSONB,
		selected INTEGER NOT NULL DEFAULT -1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS upick_sessions_updated_at_idx ON upick_sessions (updated_at);
`

// Repository stores pick sessions in PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the sessions table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// Save inserts or replaces a session
func (r *Repository) Save(ctx context.Context, s *picker.Session) error {
	loc, err := json.Marshal(s.Location)
	if err != nil {
		return fmt.Errorf("repository: failed to encode location: %w", err)
	}
	var result []byte
	if s.Result != nil {
		if result, err = json.Marshal(s.Result); err != nil {
			return fmt.Errorf("repository: failed to encode result: %w", err)
		}
	}

	sql := `
		INSERT INTO upick_sessions (id, location, term, price, state, message, result, selected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			location = EXCLUDED.location,
			term = EXCLUDED.term,
			price = EXCLUDED.price,
			state = EXCLUDED.state,
			message = EXCLUDED.message,
			result = EXCLUDED.result,
			selected = EXCLUDED.selected,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, sql,
		s.ID,
		loc,
		s.Filters.Term,
		string(s.Filters.Price),
		string(s.State),
		s.Message,
		result,
		s.Selected,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to save session: %w", err)
	}
	return nil
}

// Find loads a session by ID
func (r *Repository) Find(ctx context.Context, id string) (*picker.Session, error) {
	sql := `
		SELECT
			id::text,
			location,
			term,
			price,
			state,
			message,
			result,
			selected,
			created_at,
			updated_at
		FROM upick_sessions
		WHERE id = $1
	`

	var (
		s      picker.Session
		loc    []byte
		result []byte
		price  string
		state  string
	)
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&s.ID,
		&loc,
		&s.Filters.Term,
		&price,
		&state,
		&s.Message,
		&result,
		&s.Selected,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to load session: %w", err)
	}

	s.Filters.Price = models.PriceTier(price)
	s.State = picker.State(state)
	if err := json.Unmarshal(loc, &s.Location); err != nil {
		return nil, fmt.Errorf("repository: failed to decode location: %w", err)
	}
	if len(result) > 0 {
		s.Result = new(models.SearchResult)
		if err := json.Unmarshal(result, s.Result); err != nil {
			return nil, fmt.Errorf("repository: failed to decode result: %w", err)
		}
	}

	return &s, nil
}

// MarkLoading stores the session only if the stored copy is not already loading.
// It is the cross-instance guard that keeps one search in flight per session.
// A loading row last updated before staleBefore is treated as abandoned and taken over.
func (r *Repository) MarkLoading(ctx context.Context, s *picker.Session, staleBefore time.Time) error {
	sql := `
		UPDATE upick_sessions SET
			term = $2,
			price = $3,
			state = $4,
			message = '',
			result = NULL,
			selected = -1,
			updated_at = $5
		WHERE id = $1 AND (state <> $4 OR updated_at < $6)
	`

	tag, err := r.db.Exec(ctx, sql, s.ID, s.Filters.Term, string(s.Filters.Price), string(picker.StateLoading), s.UpdatedAt, staleBefore)
	if err != nil {
		return fmt.Errorf("repository: failed to mark session loading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Find(ctx, s.ID); err != nil {
			return err
		}
		return ErrAlreadyLoading
	}
	return nil
}
