package models

import "math"

// MaxPageLimit caps the page size any listing will serve.
const MaxPageLimit = 100

// PageRequest is a normalized page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest coerces raw values: page below 1 becomes 1, a limit below 1
// becomes defaultLimit, and a limit above MaxPageLimit is capped. Page is
// capped so the row offset cannot overflow.
func NewPageRequest(page, limit, defaultLimit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is ceil(total / limit), or 0 when nothing matches.
func (p PageRequest) TotalPages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasMore reports whether a page after this one exists.
func (p PageRequest) HasMore(total int64) bool {
	return p.Page < p.TotalPages(total)
}

// ToggleResult reports the state of a reaction or follow after a toggle.
type ToggleResult struct {
	Message string
	Count   int64
	Active  bool
}
