// Package gateway performs authenticated calls against the registration
// backend and recovers once from an expired access token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eventreg/regclient/internal/credential"
)

const (
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh-token"
	PathLogout  = "/auth/logout"

	headerRequestID = "X-Request-ID"

	defaultTimeout        = 30 * time.Second
	defaultRefreshTimeout = 15 * time.Second
)

type Gateway struct {
	baseURL   *url.URL
	client    *http.Client
	creds     credential.Store
	nav       Navigator
	jar       http.CookieJar
	refreshes singleflight.Group
	// refreshTimeout bounds a refresh, which outlives the caller's context.
	refreshTimeout time.Duration
	logger         *zap.Logger
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

func WithNavigator(n Navigator) Option {
	return func(g *Gateway) {
		g.nav = n
	}
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.refreshTimeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

func New(baseURL string, creds credential.Store, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse -> %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New -> %w", err)
	}

	g := &Gateway{
		baseURL: u,
		client:         &http.Client{Timeout: defaultTimeout},
		creds:          creds,
		nav:            nopNavigator{},
		jar:            jar,
		refreshTimeout: defaultRefreshTimeout,
		logger:         zap.L(),
	}
	for _, opt := range opts {
		opt(g)
	}

	// Cookies are attached by hand, only where the refresh cookie is needed.
	client := *g.client
	client.Jar = nil
	g.client = &client

	return g, nil
}

type RequestOption func(*call)

// Public sends the request without the bearer token. Public requests never
// trigger a token refresh.
func Public() RequestOption {
	return func(c *call) {
		c.public = true
	}
}

func WithQuery(q url.Values) RequestOption {
	return func(c *call) {
		c.query = q
	}
}

type call struct {
	method string
	path   string
	query  url.Values
	body   []byte
	public bool
}

func (c call) withCredentials() bool {
	return c.path == PathRefresh || c.path == PathLogout
}

// Do sends one logical request and returns the response body, which is
// always a JSON document on success.
func (g *Gateway) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) ([]byte, error) {
	c := call{method: method, path: path}
	for _, opt := range opts {
		opt(&c)
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal -> %w", err)
		}
		c.body = data
	}

	out := g.attempt(ctx, c, false)
	if out.state == stateAuthRetry {
		out = g.retryAfterRefresh(ctx, c, out.token)
	}
	g.logger.Debug("request finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Stringer("outcome", out.state),
	)

	switch out.state {
	case stateSuccess:
		return out.body, nil
	case stateAuthExpired:
		g.expire(ctx, out.err)
		return nil, out.err
	default:
		return nil, out.err
	}
}

// DoJSON is Do followed by DecodeData into out.
func (g *Gateway) DoJSON(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	raw, err := g.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return DecodeData(raw, out)
}

func (g *Gateway) retryAfterRefresh(ctx context.Context, c call, rejected string) outcome {
	if err := g.refresh(ctx, rejected); err != nil {
		var expired *AuthExpiredError
		if errors.As(err, &expired) {
			return outcome{state: stateAuthExpired, err: expired}
		}
		return outcome{state: stateAuthExpired, err: &AuthExpiredError{Cause: err}}
	}

	return g.attempt(ctx, c, true)
}

// refresh obtains a new access token to replace rejected. Concurrent callers
// share one in-flight refresh request, and a caller arriving after the token
// was already replaced does not refresh again.
func (g *Gateway) refresh(ctx context.Context, rejected string) error {
	_, err, shared := g.refreshes.Do(PathRefresh, func() (any, error) {
		// Detached so one abandoned caller does not fail the others.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
		defer cancel()

		if h, err := g.creds.Get(refreshCtx); err == nil && h.AccessToken != "" && h.AccessToken != rejected {
			g.logger.Debug("access token already refreshed")
			return nil, nil
		}

		g.logger.Info("attempting to refresh access token")
		out := g.attempt(refreshCtx, call{method: http.MethodPost, path: PathRefresh}, true)
		if out.state != stateSuccess {
			return nil, out.err
		}

		var data struct {
			AccessToken string `json:"accessToken"`
		}
		if err := DecodeData(out.body, &data); err != nil {
			return nil, err
		}
		if data.AccessToken == "" {
			return nil, errors.New("refresh response carries no access token")
		}
		if err := g.creds.SetAccessToken(refreshCtx, data.AccessToken); err != nil {
			return nil, fmt.Errorf("g.creds.SetAccessToken -> %w", err)
		}

		fields := []zap.Field{}
		if exp, err := credential.TokenExpiry(data.AccessToken); err == nil {
			fields = append(fields, zap.Time("expires_at", exp))
		}
		g.logger.Info("access token refreshed", fields...)

		return nil, nil
	})
	if err != nil {
		g.logger.Warn("failed to refresh token", zap.Bool("shared", shared), zap.Error(err))
	}

	return err
}

func (g *Gateway) expire(ctx context.Context, cause error) {
	g.logger.Warn("session expired, clearing credentials", zap.Error(cause))
	if err := g.creds.Clear(ctx); err != nil {
		g.logger.Error("failed to clear credentials", zap.Error(err))
	}
	g.nav.SignIn(ctx)
}

// attempt sends c once and classifies the response. Only a first attempt
// (retried == false) can yield stateAuthRetry.
func (g *Gateway) attempt(ctx context.Context, c call, retried bool) outcome {
	u := g.baseURL.JoinPath(c.path)
	if len(c.query) > 0 {
		u.RawQuery = c.query.Encode()
	}

	var reqBody io.Reader
	if c.body != nil {
		reqBody = bytes.NewReader(c.body)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, u.String(), reqBody)
	if err != nil {
		return outcome{state: stateOtherError, err: fmt.Errorf("http.NewRequest -> %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if !c.public && c.path != PathRefresh {
		h, err := g.creds.Get(ctx)
		if err != nil {
			return outcome{state: stateOtherError, err: fmt.Errorf("g.creds.Get -> %w", err)}
		}
		token = h.AccessToken
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if c.withCredentials() {
		for _, ck := range g.jar.Cookies(u) {
			req.AddCookie(ck)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return outcome{state: stateOtherError, err: &NetworkError{Method: c.method, Path: c.path, Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{state: stateOtherError, err: &NetworkError{Method: c.method, Path: c.path, Err: err}}
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		g.jar.SetCookies(u, cookies)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return outcome{state: stateSuccess, body: successBody(body)}
	}

	remote := &RemoteError{
		Method:     c.method,
		Path:       c.path,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, body),
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return outcome{state: stateOtherError, err: remote}
	}

	switch {
	case c.path == PathRefresh:
		return outcome{state: stateAuthExpired, err: &AuthExpiredError{Cause: remote}}
	case c.path == PathLogin || c.public:
		return outcome{state: stateOtherError, err: remote}
	case retried:
		return outcome{state: stateAuthExpired, err: &AuthExpiredError{Cause: remote}}
	default:
		return outcome{state: stateAuthRetry, err: remote, token: token}
	}
}
