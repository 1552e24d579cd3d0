package gateway

import "context"

// Navigator sends the user to the sign-in view after the session expired.
type Navigator interface {
	SignIn(ctx context.Context)
}

type NavigatorFunc func(ctx context.Context)

func (f NavigatorFunc) SignIn(ctx context.Context) {
	f(ctx)
}

type nopNavigator struct{}

func (nopNavigator) SignIn(context.Context) {}
