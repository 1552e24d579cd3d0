// Package service wraps the backend REST endpoints on top of the gateway.
package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/eventreg/regclient/internal/gateway"
)

var (
	ErrSessionExpired = gateway.ErrSessionExpired
)

// Requester is satisfied by *gateway.Gateway.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...gateway.RequestOption) ([]byte, error)
	DoJSON(ctx context.Context, method, path string, body, out any, opts ...gateway.RequestOption) error
}

// ListOptions pages through list endpoints. Public lists only what anonymous
// visitors may see and is sent without credentials.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Public bool
}

func (o ListOptions) requestOptions() []gateway.RequestOption {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Public {
		q.Set("publicView", "true")
	}

	opts := []gateway.RequestOption{gateway.WithQuery(q)}
	if o.Public {
		opts = append(opts, gateway.Public())
	}
	return opts
}
