package models

import (
	"time"
)

// Review is one user's rating + text for a place. Places live in the external
// graph store, so PlaceID is an opaque string with no foreign key behind it.
type Review struct {
	ID        string     `json:"id"`
	User      ReviewUser `json:"user"`
	PlaceID   string     `json:"place_id"`
	Rating    int        `json:"rating"`
	Review    string     `json:"review"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ReviewUser is the authoring user's display block joined into listings.
type ReviewUser struct {
	ID       string  `json:"user_id,omitempty"`
	FullName string  `json:"full_name"`
	Avatar   *string `json:"avatar,omitempty"`
	Email    string  `json:"email,omitempty"`
}

// ReviewPage is the paging envelope returned by listing endpoints and stored
// in the review cache.
type ReviewPage struct {
	Items      []Review `json:"items"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}

// ListParams carries pagination and sorting for listing queries.
type ListParams struct {
	Page   int
	Size   int
	SortBy string
	Order  string
}
