// Package location resolves the caller's position once per session.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"upick/internal/models"

	"github.com/rs/zerolog/log"
)

// DeniedMessage is shown when the user refuses location access.
const DeniedMessage = "Permission to access location was denied"

// Permission is the answer to a foreground location permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Locator is the device location collaborator.
type Locator interface {
	RequestPermission(ctx context.Context) (Permission, error)
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// State is the outcome of resolving the location.
type State string

const (
	StatePending     State = "pending"
	StateGranted     State = "granted"
	StateDenied      State = "denied"
	StateUnavailable State = "unavailable"
)

// Status is the resolved location of a session. Coordinates are only meaningful when State is StateGranted.
type Status struct {
	State       State              `json:"state"`
	Coordinates models.Coordinates `json:"coordinates"`
	Message     string             `json:"message,omitempty"`
}

// Available reports whether coordinates can be used for a search.
func (s Status) Available() bool {
	return s.State == StateGranted
}

// Resolve requests permission once and, if granted, reads the current position once.
// It never retries; a denial or failure is final for the session.
func Resolve(ctx context.Context, l Locator) Status {
	perm, err := l.RequestPermission(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("location permission request failed")
		return Status{State: StateUnavailable, Message: fmt.Sprintf("Could not request location permission: %v", err)}
	}
	if perm != PermissionGranted {
		return Status{State: StateDenied, Message: DeniedMessage}
	}

	coords, err := l.CurrentPosition(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("current position lookup failed")
		return Status{State: StateUnavailable, Message: fmt.Sprintf("Could not determine your location: %v", err)}
	}
	if !coords.Valid() {
		return Status{State: StateUnavailable, Message: "Could not determine your location: coordinates out of range"}
	}

	return Status{State: StateGranted, Coordinates: coords}
}

// Provider resolves a Locator at most once.
type Provider struct {
	locator Locator
	once    sync.Once
	status  Status
}

// NewProvider creates a provider for the given locator.
func NewProvider(l Locator) *Provider {
	return &Provider{locator: l, status: Status{State: StatePending}}
}

// Status resolves the location on first call and returns the cached result afterwards.
func (p *Provider) Status(ctx context.Context) Status {
	p.once.Do(func() {
		p.status = Resolve(ctx, p.locator)
	})
	return p.status
}

// ErrNoPosition is returned by locators that have no position to report.
var ErrNoPosition = errors.New("location: no position available")

// Static is a Locator backed by fixed coordinates, e.g. from flags or config.
// A Static with no coordinates denies permission.
type Static struct {
	Coordinates *models.Coordinates
}

// NewStatic returns a Static locator; zero coordinates are treated as "not configured".
func NewStatic(lat, lon float64) Static {
	c := models.Coordinates{Latitude: lat, Longitude: lon}
	if c.IsZero() {
		return Static{}
	}
	return Static{Coordinates: &c}
}

func (s Static) RequestPermission(context.Context) (Permission, error) {
	if s.Coordinates == nil {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

func (s Static) CurrentPosition(context.Context) (models.Coordinates, error) {
	if s.Coordinates == nil {
		return models.Coordinates{}, ErrNoPosition
	}
	return *s.Coordinates, nil
}

// Reported is a Locator for positions reported by a remote client along with its permission answer.
type Reported struct {
	Permission  Permission
	Coordinates *models.Coordinates
}

func (r Reported) RequestPermission(context.Context) (Permission, error) {
	if r.Permission == "" {
		return "", fmt.Errorf("location: client did not report a permission")
	}
	return r.Permission, nil
}

func (r Reported) CurrentPosition(context.Context) (models.Coordinates, error) {
	if r.Coordinates == nil {
		return models.Coordinates{}, ErrNoPosition
	}
	return *r.Coordinates, nil
}
