package domain

import "encoding/json"

// Envelope is the response wrapper used by every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination derives page counts from a total item count.
func NewPagination(page, limit, total int) Pagination {
	p := Pagination{Page: page, Limit: limit, TotalItems: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}

	return p
}
