package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"upick/internal/location"
	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSessionNotFound is returned for unknown or malformed session IDs
	ErrSessionNotFound = errors.New("service: session not found")
	// ErrBusy is returned when a pick is requested while one is in flight
	ErrBusy = errors.New("service: a pick is already in progress")
	// ErrLocationUnavailable is returned when the session has no coordinates
	ErrLocationUnavailable = errors.New("service: location unavailable")
)

// SessionRepository interface for dependency injection
type SessionRepository interface {
	Save(ctx context.Context, s *picker.Session) error
	Find(ctx context.Context, id string) (*picker.Session, error)
	MarkLoading(ctx context.Context, s *picker.Session, staleBefore time.Time) error
}

// DefaultStaleAfter is how long a session may stay loading before a new pick may take it over.
const DefaultStaleAfter = 30 * time.Second

// PickService contains the core business logic for picking a restaurant
type PickService struct {
	repo       SessionRepository
	search     picker.Searcher
	chooser    picker.Chooser
	now        func() time.Time
	staleAfter time.Duration
}

// Option customises a PickService
type Option func(*PickService)

// WithChooser replaces the random source used for selections
func WithChooser(c picker.Chooser) Option {
	return func(s *PickService) { s.chooser = c }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *PickService) { s.now = now }
}

// WithStaleAfter sets how long a loading marker is honoured. It should exceed the search timeout.
func WithStaleAfter(d time.Duration) Option {
	return func(s *PickService) { s.staleAfter = d }
}

// NewPickService creates a new pick service
func NewPickService(repo SessionRepository, search picker.Searcher, opts ...Option) *PickService {
	s := &PickService{
		repo:       repo,
		search:     search,
		chooser:    picker.Uniform,
		now:        time.Now,
		staleAfter: DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a session and resolves its location exactly once
func (s *PickService) CreateSession(ctx context.Context, l location.Locator) (*picker.Session, error) {
	status := location.Resolve(ctx, l)
	session := picker.NewSession(uuid.NewString(), status, s.now().UTC())

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	log.Info().Str("session", session.ID).Str("location", string(status.State)).Msg("session created")
	return session, nil
}

// GetSession loads a session
func (s *PickService) GetSession(ctx context.Context, id string) (*picker.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("service: failed to load session: %w", err)
	}

	// A search whose result was never stored must not block the session forever.
	now := s.now().UTC()
	if session.Expire(s.staleBefore(now), now) {
		log.Warn().Str("session", session.ID).Msg("abandoned pick expired")
	}
	return session, nil
}

func (s *PickService) staleBefore(now time.Time) time.Time {
	return now.Add(-s.staleAfter)
}

// Pick runs one search for the session and stores the randomly selected result.
// Search failures are not errors here: they leave the session in the error state.
func (s *PickService) Pick(ctx context.Context, id string, f models.SearchFilters) (*picker.Session, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	q, err := session.Begin(f, now)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.repo.MarkLoading(ctx, session, s.staleBefore(now)); err != nil {
		if errors.Is(err, repository.ErrAlreadyLoading) {
			return nil, ErrBusy
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("service: failed to start pick: %w", err)
	}

	s.finish(ctx, session, q)

	// The outcome must be stored even if the caller went away mid-search.
	if err := s.repo.Save(context.WithoutCancel(ctx), session); err != nil {
		return nil, fmt.Errorf("service: failed to store pick: %w", err)
	}
	return session, nil
}

// PickOnce runs a pick without storing a session
func (s *PickService) PickOnce(ctx context.Context, at models.Coordinates, f models.SearchFilters) (*picker.Session, error) {
	session := picker.NewSession("", location.Resolve(ctx, location.NewStatic(at.Latitude, at.Longitude)), s.now().UTC())

	q, err := session.Begin(f, s.now().UTC())
	if err != nil {
		return nil, translate(err)
	}
	s.finish(ctx, session, q)
	return session, nil
}

func (s *PickService) finish(ctx context.Context, session *picker.Session, q models.SearchQuery) {
	res, err := s.search.Search(ctx, q)
	if err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("pick failed")
		_ = session.Fail(err, s.now().UTC())
		return
	}

	_ = session.Complete(res, s.chooser, s.now().UTC())
	if b, ok := session.Selection(); ok {
		log.Info().Str("session", session.ID).Int("candidates", res.Len()).Str("business", b.ID).Msg("restaurant picked")
	} else {
		log.Info().Str("session", session.ID).Msg("no restaurants matched")
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, picker.ErrLocationUnavailable):
		return ErrLocationUnavailable
	case errors.Is(err, picker.ErrBusy):
		return ErrBusy
	default:
		return err
	}
}
