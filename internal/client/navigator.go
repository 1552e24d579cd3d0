package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultSignInPath = "/signIn"

// RedirectNavigator is the navigator used when the caller has no view to
// switch to. It logs the sign-in path and keeps it until Redirect is called.
type RedirectNavigator struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	pending bool
}

func NewRedirectNavigator(path string, logger *zap.Logger) *RedirectNavigator {
	if path == "" {
		path = defaultSignInPath
	}

	return &RedirectNavigator{
		path:   path,
		logger: logger,
	}
}

func (n *RedirectNavigator) SignIn(context.Context) {
	n.mu.Lock()
	n.pending = true
	n.mu.Unlock()

	n.logger.Info("session expired, redirecting to sign in", zap.String("path", n.path))
}

// Redirect returns the sign-in path if the session expired since the last
// call.
func (n *RedirectNavigator) Redirect() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.pending {
		return "", false
	}
	n.pending = false

	return n.path, true
}
