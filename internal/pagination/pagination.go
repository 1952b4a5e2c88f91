// Package pagination slices the reception queue listing into pages.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 200
)

// Params represents pagination query parameters
type Params struct {
	Page  int `json:"page"`  // 1-based
	Limit int `json:"limit"`
}

// Meta contains pagination metadata for responses
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ParseParams reads page and limit from the query string. Missing or
// malformed values fall back to the defaults; limit is capped at MaxLimit.
func ParseParams(r *http.Request) Params {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = n
	}
	p.Validate()
	return p
}

// Validate ensures pagination parameters are valid and sets defaults if needed
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

func (p *Params) CalculateOffset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) slice bounds of the page within total items.
func (p *Params) Window(total int) (int, int) {
	start := p.CalculateOffset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

func (p *Params) CalculateMeta(totalRecords int) Meta {
	totalPages := (totalRecords + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		HasNext:      p.Page < totalPages,
		HasPrevious:  p.Page > 1,
	}
}
