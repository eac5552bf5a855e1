// Package picker implements the search-and-pick workflow: one places search per trigger,
// followed by a single uniformly random selection from the returned list.
package picker

import (
	"context"
	"errors"
	"time"

	"upick/internal/location"
	"upick/internal/models"
)

// State is the workflow state of a session. The states are mutually exclusive.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

// NoSelection marks a session without a selected business.
const NoSelection = -1

// AbandonedMessage is shown when a search never reported back.
const AbandonedMessage = "The last search did not finish. Please try again."

var (
	// ErrLocationUnavailable means the session has no coordinates; the trigger is disabled.
	ErrLocationUnavailable = errors.New("picker: location unavailable")
	// ErrBusy means a search is already in flight; the trigger is disabled.
	ErrBusy = errors.New("picker: search already in progress")
	// ErrNotLoading is returned when a response arrives for a session that is not waiting for one.
	ErrNotLoading = errors.New("picker: no search in progress")
)

// Session is the state owned by one screen.
type Session struct {
	ID        string               `json:"id"`
	Location  location.Status      `json:"location"`
	Filters   models.SearchFilters `json:"filters"`
	State     State                `json:"state"`
	Message   string               `json:"message,omitempty"`
	Result    *models.SearchResult `json:"result,omitempty"`
	Selected  int                  `json:"selected"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewSession returns an idle session with the given resolved location.
func NewSession(id string, loc location.Status, now time.Time) *Session {
	return &Session{
		ID:        id,
		Location:  loc,
		State:     StateIdle,
		Selected:  NoSelection,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanPick reports whether the pick trigger is enabled.
func (s *Session) CanPick() bool {
	return s.Location.Available() && s.State != StateLoading
}

// Selection returns the selected business, if any.
func (s *Session) Selection() (models.Business, bool) {
	if s.State != StateSuccess || s.Selected < 0 || s.Selected >= s.Result.Len() {
		return models.Business{}, false
	}
	return s.Result.Businesses[s.Selected], true
}

// Begin moves the session to loading and returns the query to run.
// Without coordinates, or while loading, it returns an error and leaves the session untouched.
func (s *Session) Begin(f models.SearchFilters, now time.Time) (models.SearchQuery, error) {
	if !s.Location.Available() {
		return models.SearchQuery{}, ErrLocationUnavailable
	}
	if s.State == StateLoading {
		return models.SearchQuery{}, ErrBusy
	}

	s.Filters = f
	s.State = StateLoading
	s.Message = ""
	s.Result = nil
	s.Selected = NoSelection
	s.UpdatedAt = now

	return models.NewSearchQuery(f, s.Location.Coordinates), nil
}

// Complete stores a successful response and draws the selection for it.
// The selection is drawn here and only here, so it stays stable until the next response.
func (s *Session) Complete(r *models.SearchResult, c Chooser, now time.Time) error {
	if s.State != StateLoading {
		return ErrNotLoading
	}
	if r == nil {
		r = &models.SearchResult{}
	}

	s.State = StateSuccess
	s.Result = r
	s.Selected = NoSelection
	if n := r.Len(); n > 0 {
		s.Selected = c.Intn(n)
	}
	s.UpdatedAt = now
	return nil
}

// Fail stores the failure message. Any previous result is already gone since Begin.
func (s *Session) Fail(err error, now time.Time) error {
	if s.State != StateLoading {
		return ErrNotLoading
	}

	s.State = StateError
	s.Message = ErrorMessage(err)
	s.Result = nil
	s.Selected = NoSelection
	s.UpdatedAt = now
	return nil
}

// Expire ends a search that has been loading since before the given time.
// It reports whether the session was changed.
func (s *Session) Expire(before, now time.Time) bool {
	if s.State != StateLoading || !s.UpdatedAt.Before(before) {
		return false
	}

	s.State = StateError
	s.Message = AbandonedMessage
	s.Result = nil
	s.Selected = NoSelection
	s.UpdatedAt = now
	return true
}

// Searcher runs one places search.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
}

// Run drives one full pick cycle on a session owned by the caller.
// The returned error is only non-nil when the trigger was disabled; search failures end in StateError.
func Run(ctx context.Context, s *Session, f models.SearchFilters, search Searcher, c Chooser, clock func() time.Time) error {
	q, err := s.Begin(f, clock())
	if err != nil {
		return err
	}

	res, err := search.Search(ctx, q)
	if err != nil {
		return s.Fail(err, clock())
	}
	return s.Complete(res, c, clock())
}
