package models

// Address is the postal location of a business as reported by the places service.
type Address struct {
	Address1         string `json:"address1"`
	City             string `json:"city"`
	State            string `json:"state"`
	Country          string `json:"country"`
	FormattedAddress string `json:"formatted_address"`
}

// Business is a single search hit.
type Business struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Rating       float64     `json:"rating"`
	ReviewCount  int         `json:"review_count"`
	Price        string      `json:"price"`
	URL          string      `json:"url"`
	Phone        string      `json:"phone"`
	DisplayPhone string      `json:"display_phone"`
	Distance     float64     `json:"distance"` // meters
	Location     Address     `json:"location"`
	Coordinates  Coordinates `json:"coordinates"`
	Photos       []string    `json:"photos"`
}

// SearchResult is one complete response from the places service. Each response replaces the previous one.
type SearchResult struct {
	Total      int        `json:"total"`
	Businesses []Business `json:"business"`
}

// Len returns the number of businesses in the result, treating nil as empty.
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Businesses)
}
