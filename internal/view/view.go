// Package view derives what a screen shows from a session.
package view

import (
	"fmt"
	"net/url"
	"strings"

	"upick/internal/location"
	"upick/internal/models"
	"upick/internal/picker"
)

// MetersToMiles converts the service's meter distances for display.
const MetersToMiles = 0.000621371192

// EmptyMessage is shown when a search returns no businesses.
const EmptyMessage = "No open restaurants matched. Try a different search."

// Kind is the rendered state.
type Kind string

const (
	KindBlocked  Kind = "blocked"
	KindIdle     Kind = "idle"
	KindLoading  Kind = "loading"
	KindError    Kind = "error"
	KindEmpty    Kind = "empty"
	KindBusiness Kind = "business"
)

// Actions are the external links offered on a business card.
type Actions struct {
	Call       string `json:"call,omitempty"`
	Directions string `json:"directions"`
	Provider   string `json:"provider,omitempty"`
}

// Card is the details card of the picked business.
type Card struct {
	Name     string  `json:"name"`
	Price    string  `json:"price,omitempty"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	Distance string  `json:"distance"`
	Address  string  `json:"address"`
	Phone    string  `json:"phone,omitempty"`
	Image    string  `json:"image,omitempty"`
	Actions  Actions `json:"actions"`
}

// View is the screen state presented to a client.
type View struct {
	SessionID string               `json:"session_id,omitempty"`
	Kind      Kind                 `json:"kind"`
	CanPick   bool                 `json:"can_pick"`
	Message   string               `json:"message,omitempty"`
	Filters   models.SearchFilters `json:"filters"`
	Total     int                  `json:"total,omitempty"`
	Business  *Card                `json:"business,omitempty"`
}

// Render maps a session to its view. It never draws a selection itself.
func Render(s *picker.Session) View {
	v := View{
		SessionID: s.ID,
		CanPick:   s.CanPick(),
		Filters:   s.Filters,
	}

	if !s.Location.Available() {
		v.Kind = KindBlocked
		v.Message = s.Location.Message
		if v.Message == "" {
			v.Message = location.DeniedMessage
		}
		return v
	}

	switch s.State {
	case picker.StateLoading:
		v.Kind = KindLoading
	case picker.StateError:
		v.Kind = KindError
		v.Message = s.Message
	case picker.StateSuccess:
		if s.Result != nil {
			v.Total = s.Result.Total
		}
		b, ok := s.Selection()
		if !ok {
			v.Kind = KindEmpty
			v.Message = EmptyMessage
			return v
		}
		card := NewCard(b)
		v.Kind = KindBusiness
		v.Business = &card
	default:
		v.Kind = KindIdle
	}
	return v
}

// NewCard builds the details card for a business.
func NewCard(b models.Business) Card {
	c := Card{
		Name:     b.Name,
		Price:    b.Price,
		Rating:   b.Rating,
		Reviews:  b.ReviewCount,
		Distance: FormatMiles(b.Distance),
		Address:  FormatAddress(b.Location),
		Phone:    b.DisplayPhone,
		Actions: Actions{
			Call:       DialURL(b.Phone),
			Directions: DirectionsURL(b),
			Provider:   b.URL,
		},
	}
	if c.Phone == "" {
		c.Phone = b.Phone
	}
	if len(b.Photos) > 0 {
		c.Image = b.Photos[0]
	}
	return c
}

// FormatMiles renders a distance in meters as miles with exactly two decimals.
func FormatMiles(meters float64) string {
	return fmt.Sprintf("%.2f", meters*MetersToMiles)
}

// FormatAddress prefers the service's formatted address and falls back to its parts.
func FormatAddress(a models.Address) string {
	if a.FormattedAddress != "" {
		return strings.Join(strings.Fields(strings.ReplaceAll(a.FormattedAddress, "\n", ", ")), " ")
	}
	var parts []string
	for _, p := range []string{a.Address1, a.City, a.State, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// DialURL returns a tel: link, or "" when there is no phone number.
func DialURL(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' || r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

// DirectionsURL returns a maps link to the business, by coordinates when known.
func DirectionsURL(b models.Business) string {
	dest := FormatAddress(b.Location)
	if !b.Coordinates.IsZero() {
		dest = fmt.Sprintf("%f,%f", b.Coordinates.Latitude, b.Coordinates.Longitude)
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", dest)
	return "https://www.google.com/maps/dir/?" + q.Encode()
}
