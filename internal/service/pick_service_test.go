package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"upick/internal/location"
	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearcher is a mock implementation of the picker.Searcher interface
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).(*models.SearchResult)
	return res, args.Error(1)
}

// MockSessionRepository is a mock implementation of the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, s *picker.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) Find(ctx context.Context, id string) (*picker.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*picker.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) MarkLoading(ctx context.Context, s *picker.Session, staleBefore time.Time) error {
	return m.Called(ctx, s, staleBefore).Error(0)
}

var (
	here    = models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	created = time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
)

func clock() time.Time { return created }

func result(names ...string) *models.SearchResult {
	r := &models.SearchResult{Total: len(names)}
	for _, n := range names {
		r.Businesses = append(r.Businesses, models.Business{ID: n, Name: n})
	}
	return r
}

func newService(repo SessionRepository, search picker.Searcher) *PickService {
	return NewPickService(repo, search, WithClock(clock), WithChooser(picker.ChooserFunc(func(n int) int { return n - 1 })))
}

func TestPickService_CreateSession(t *testing.T) {
	tests := []struct {
		name     string
		locator  location.Locator
		expected location.State
	}{
		{name: "granted", locator: location.NewStatic(here.Latitude, here.Longitude), expected: location.StateGranted},
		{name: "denied", locator: location.Reported{Permission: location.PermissionDenied}, expected: location.StateDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryRepository()
			svc := newService(repo, new(MockSearcher))

			s, err := svc.CreateSession(context.Background(), tt.locator)

			require.NoError(t, err)
			_, err = uuid.Parse(s.ID)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, s.Location.State)
			assert.Equal(t, picker.StateIdle, s.State)

			stored, err := repo.Find(context.Background(), s.ID)
			require.NoError(t, err)
			assert.Equal(t, s, stored)
		})
	}
}

func TestPickService_CreateSessionSaveError(t *testing.T) {
	repo := new(MockSessionRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := newService(repo, new(MockSearcher)).CreateSession(context.Background(), location.NewStatic(1, 1))

	assert.ErrorIs(t, err, assert.AnError)
}

func TestPickService_GetSession(t *testing.T) {
	svc := newService(repository.NewMemoryRepository(), new(MockSearcher))

	_, err := svc.GetSession(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.GetSession(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPickService_Pick(t *testing.T) {
	tests := []struct {
		name          string
		locator       location.Locator
		searchResult  *models.SearchResult
		searchErr     error
		expectErr     error
		expectState   picker.State
		expectPicked  string
		expectMessage string
	}{
		{
			name:         "picks from results",
			locator:      location.NewStatic(here.Latitude, here.Longitude),
			searchResult: result("a", "b", "c"),
			expectState:  picker.StateSuccess,
			expectPicked: "c",
		},
		{
			name:         "empty results",
			locator:      location.NewStatic(here.Latitude, here.Longitude),
			searchResult: result(),
			expectState:  picker.StateSuccess,
		},
		{
			name:          "search error",
			locator:       location.NewStatic(here.Latitude, here.Longitude),
			searchErr:     assert.AnError,
			expectState:   picker.StateError,
			expectMessage: assert.AnError.Error(),
		},
		{
			name:      "location denied",
			locator:   location.Reported{Permission: location.PermissionDenied},
			expectErr: ErrLocationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryRepository()
			search := new(MockSearcher)
			svc := newService(repo, search)

			s, err := svc.CreateSession(context.Background(), tt.locator)
			require.NoError(t, err)

			filters := models.SearchFilters{Term: "noodles", Price: models.PriceCheap}
			if tt.expectErr == nil {
				search.On("Search", mock.Anything, models.NewSearchQuery(filters, here)).Return(tt.searchResult, tt.searchErr).Once()
			}

			got, err := svc.Pick(context.Background(), s.ID, filters)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
				stored, err := repo.Find(context.Background(), s.ID)
				require.NoError(t, err)
				assert.Equal(t, picker.StateIdle, stored.State)
				return
			}

			require.NoError(t, err)
			search.AssertExpectations(t)
			assert.Equal(t, tt.expectState, got.State)
			assert.Equal(t, tt.expectMessage, got.Message)
			b, ok := got.Selection()
			assert.Equal(t, tt.expectPicked != "", ok)
			assert.Equal(t, tt.expectPicked, b.Name)

			stored, err := repo.Find(context.Background(), s.ID)
			require.NoError(t, err)
			assert.Equal(t, got, stored)
		})
	}
}

func TestPickService_PickWhileLoading(t *testing.T) {
	repo := repository.NewMemoryRepository()
	search := new(MockSearcher)
	svc := newService(repo, search)

	s, err := svc.CreateSession(context.Background(), location.NewStatic(here.Latitude, here.Longitude))
	require.NoError(t, err)
	_, err = s.Begin(models.SearchFilters{}, clock())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), s))

	_, err = svc.Pick(context.Background(), s.ID, models.SearchFilters{Term: "again"})

	assert.ErrorIs(t, err, ErrBusy)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestPickService_PickLostRace(t *testing.T) {
	id := uuid.NewString()
	stored := picker.NewSession(id, location.Status{State: location.StateGranted, Coordinates: here}, created)

	repo := new(MockSessionRepository)
	repo.On("Find", mock.Anything, id).Return(stored, nil)
	repo.On("MarkLoading", mock.Anything, mock.Anything, created.Add(-DefaultStaleAfter)).Return(repository.ErrAlreadyLoading)
	search := new(MockSearcher)

	_, err := newService(repo, search).Pick(context.Background(), id, models.SearchFilters{})

	assert.ErrorIs(t, err, ErrBusy)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

// failingSaves fails the first n saves after it is armed.
type failingSaves struct {
	*repository.MemoryRepository
	n int
}

func (r *failingSaves) Save(ctx context.Context, s *picker.Session) error {
	if r.n > 0 {
		r.n--
		return errors.New("db blip")
	}
	return r.MemoryRepository.Save(ctx, s)
}

func TestPickService_RetryAfterLostResult(t *testing.T) {
	repo := &failingSaves{MemoryRepository: repository.NewMemoryRepository()}
	search := new(MockSearcher)
	now := created
	svc := NewPickService(repo, search,
		WithClock(func() time.Time { return now }),
		WithChooser(picker.Seeded(3)),
		WithStaleAfter(time.Minute),
	)

	s, err := svc.CreateSession(context.Background(), location.NewStatic(here.Latitude, here.Longitude))
	require.NoError(t, err)

	search.On("Search", mock.Anything, mock.Anything).Return(result("a", "b"), nil).Twice()

	repo.n = 1
	_, err = svc.Pick(context.Background(), s.ID, models.SearchFilters{})
	require.Error(t, err)

	_, err = svc.Pick(context.Background(), s.ID, models.SearchFilters{})
	assert.ErrorIs(t, err, ErrBusy)

	now = created.Add(2 * time.Minute)
	stale, err := svc.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.StateError, stale.State)
	assert.Equal(t, picker.AbandonedMessage, stale.Message)

	got, err := svc.Pick(context.Background(), s.ID, models.SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, picker.StateSuccess, got.State)
	_, ok := got.Selection()
	assert.True(t, ok)

	stored, err := repo.Find(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.StateSuccess, stored.State)
	search.AssertExpectations(t)
}

func TestPickService_ConsecutivePicksDoNotLeak(t *testing.T) {
	repo := repository.NewMemoryRepository()
	search := new(MockSearcher)
	svc := NewPickService(repo, search, WithClock(clock), WithChooser(picker.Seeded(11)))

	s, err := svc.CreateSession(context.Background(), location.NewStatic(here.Latitude, here.Longitude))
	require.NoError(t, err)

	search.On("Search", mock.Anything, mock.Anything).Return(result("first-1", "first-2", "first-3"), nil).Once()
	search.On("Search", mock.Anything, mock.Anything).Return(result("second-1", "second-2"), nil).Once()

	_, err = svc.Pick(context.Background(), s.ID, models.SearchFilters{})
	require.NoError(t, err)
	got, err := svc.Pick(context.Background(), s.ID, models.SearchFilters{})
	require.NoError(t, err)

	b, ok := got.Selection()
	require.True(t, ok)
	assert.Contains(t, []string{"second-1", "second-2"}, b.Name)
}

func TestPickService_PickOnce(t *testing.T) {
	search := new(MockSearcher)
	repo := new(MockSessionRepository)
	svc := newService(repo, search)
	filters := models.SearchFilters{Term: "bagels"}
	search.On("Search", mock.Anything, models.NewSearchQuery(filters, here)).Return(result("x", "y"), nil).Once()

	s, err := svc.PickOnce(context.Background(), here, filters)

	require.NoError(t, err)
	b, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, "y", b.Name)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	_, err = svc.PickOnce(context.Background(), models.Coordinates{}, filters)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
