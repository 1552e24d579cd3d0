// Package client assembles the credential store, the gateway and the
// service wrappers from configuration.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/credential"
	"github.com/eventreg/regclient/internal/gateway"
	"github.com/eventreg/regclient/internal/registration"
	"github.com/eventreg/regclient/internal/service"
)

var ErrWatchUnsupported = errors.New("credential store cannot be watched")

type Client struct {
	Store         credential.Store
	Gateway       *gateway.Gateway
	Navigator     gateway.Navigator
	Auth          *service.AuthService
	Events        *service.EventService
	Tickets       *service.TicketService
	Questions     *service.QuestionService
	Users         *service.UserService
	Registrations *service.RegistrationService
}

// OpenStore opens the credential store named by conf.Driver.
func OpenStore(conf config.CredentialStoreConfig) (credential.Store, error) {
	switch conf.Driver {
	case "", "memory":
		return credential.NewMemoryStore(), nil
	case "file":
		store, err := credential.NewFileStore(conf.Path)
		if err != nil {
			return nil, fmt.Errorf("credential.NewFileStore -> %w", err)
		}
		return store, nil
	case "sqlite":
		store, err := credential.OpenSQLiteStore(conf.Path)
		if err != nil {
			return nil, fmt.Errorf("credential.OpenSQLiteStore -> %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown credential store driver %q", conf.Driver)
	}
}

// Open is OpenStore followed by New.
func Open(conf *config.ClientConfig, nav gateway.Navigator) (*Client, error) {
	store, err := OpenStore(conf.CredentialStore)
	if err != nil {
		return nil, err
	}

	c, err := New(conf, store, nav)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}

	return c, nil
}

// New builds a client around store. When nav is nil, an expired session
// is reported through a RedirectNavigator for conf.SignInPath.
func New(conf *config.ClientConfig, store credential.Store, nav gateway.Navigator) (*Client, error) {
	if nav == nil {
		nav = NewRedirectNavigator(conf.SignInPath, zap.L().Named("navigator"))
	}

	opts := []gateway.Option{
		gateway.WithHTTPClient(&http.Client{Timeout: conf.Timeout}),
		gateway.WithLogger(zap.L().Named("gateway")),
		gateway.WithNavigator(nav),
	}

	gw, err := gateway.New(conf.BaseURL, store, opts...)
	if err != nil {
		return nil, fmt.Errorf("gateway.New -> %w", err)
	}

	events := service.NewEventService(gw)

	return &Client{
		Store:         store,
		Gateway:       gw,
		Navigator:     nav,
		Auth:          service.NewAuthService(gw, store),
		Events:        events,
		Tickets:       service.NewTicketService(gw),
		Questions:     service.NewQuestionService(gw),
		Users:         service.NewUserService(gw, store),
		Registrations: service.NewRegistrationService(gw, events),
	}, nil
}

// NewSession returns an empty registration session. Load an event into it
// with Registrations.LoadEvent.
func (c *Client) NewSession() *registration.Session {
	return registration.NewSession()
}

// WatchCredentials calls onChange when another process signs in or out.
// Only the file store can be watched. It blocks until ctx is done.
func (c *Client) WatchCredentials(ctx context.Context, onChange func(credential.Holder)) error {
	fs, ok := c.Store.(*credential.FileStore)
	if !ok {
		return ErrWatchUnsupported
	}

	return fs.Watch(ctx, onChange)
}

func (c *Client) Close() error {
	if closer, ok := c.Store.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
