// Package places is a client for the hosted places search GraphQL service.
package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"upick/internal/models"

	"github.com/machinebox/graphql"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const searchQuery = `
query Search($term: String, $latitude: Float!, $longitude: Float!, $price: String, $openNow: Boolean, $radius: Float, $limit: Int) {
  search(term: $term, latitude: $latitude, longitude: $longitude, price: $price, open_now: $openNow, radius: $radius, limit: $limit) {
    total
    business {
      id
      name
      rating
      review_count
      price
      url
      phone
      display_phone
      distance
      photos
      location {
        address1
        city
        state
        country
        formatted_address
      }
      coordinates {
        latitude
        longitude
      }
    }
  }
}`

// ErrMissingAPIKey is returned when no bearer token is configured.
var ErrMissingAPIKey = errors.New("places: API key not configured")

// ServiceError is an error reported by the places service in its response payload.
type ServiceError struct {
	Message string
	// Status is the HTTP status of the rejected request, zero for errors in a 200 payload.
	Status int
}

func (e *ServiceError) Error() string { return "places: service error: " + e.Message }

// UserMessage is the message shown to the user.
func (e *ServiceError) UserMessage() string { return e.Message }

// Options configures a Client.
type Options struct {
	Endpoint string
	APIKey   string
	Radius   int
	Limit    int
	Timeout  time.Duration
	// Base is the transport under the bearer token; nil uses http.DefaultTransport.
	Base http.RoundTripper
}

// Client runs searches against the places service.
type Client struct {
	gql    *graphql.Client
	apiKey string
	radius int
	limit  int
}

// NewClient creates a places client authenticating with a static bearer token.
func NewClient(opts Options) *Client {
	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey, TokenType: "Bearer"}),
			Base:   &statusTransport{base: opts.Base},
		},
	}

	gql := graphql.NewClient(opts.Endpoint, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { log.Debug().Str("component", "places").Msg(s) }

	return &Client{gql: gql, apiKey: opts.APIKey, radius: opts.Radius, limit: opts.Limit}
}

type searchResponse struct {
	Search *models.SearchResult `json:"search"`
}

// Search runs one search. Radius and limit from the query win over the client defaults.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req := graphql.NewRequest(searchQuery)
	req.Var("term", nullable(q.Term))
	req.Var("latitude", q.Latitude)
	req.Var("longitude", q.Longitude)
	req.Var("price", nullable(priceParam(q.Price)))
	req.Var("openNow", q.OpenNow)
	req.Var("radius", firstPositive(q.Radius, c.radius, models.DefaultRadius))
	if limit := firstPositive(q.Limit, c.limit); limit > 0 {
		req.Var("limit", limit)
	} else {
		req.Var("limit", nil)
	}

	start := time.Now()
	var resp searchResponse
	if err := c.gql.Run(ctx, req, &resp); err != nil {
		err = classify(err)
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("places search failed")
		return nil, err
	}
	if resp.Search == nil {
		return nil, &ServiceError{Message: "The search service returned no results payload"}
	}

	log.Info().
		Int("total", resp.Search.Total).
		Int("returned", len(resp.Search.Businesses)).
		Dur("elapsed", time.Since(start)).
		Msg("places search completed")
	return resp.Search, nil
}

// classify separates errors reported in a GraphQL payload from transport failures.
func classify(err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	msg := err.Error()
	const prefix = "graphql: "
	if strings.HasPrefix(msg, prefix) && !strings.Contains(msg, "non-200 status code") {
		return &ServiceError{Message: strings.TrimPrefix(msg, prefix)}
	}
	return fmt.Errorf("places: search request failed: %w", err)
}

// priceParam maps "$".."$$$" to the service's "1".."3" price levels.
func priceParam(p models.PriceTier) string {
	if p == models.PriceAny {
		return ""
	}
	return fmt.Sprintf("%d", len(p))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
