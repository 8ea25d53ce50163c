package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client is the single persistent handle to the remote auth service. It owns
// session custody (storage, token refresh, request signing) and fans session
// lifecycle changes out to subscribers. One Client per process is expected;
// construct it once at startup and inject it into consumers.
type Client struct {
	cfg        Config
	httpClient *http.Client
	store      SessionStore
	logger     *slog.Logger
	listeners  *listenerSet
	now        func() time.Time

	mu           sync.Mutex
	session      *RawSession
	refreshTimer *time.Timer
	closed       bool
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionStore configures where the current session is persisted.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLogger configures the logger for background refresh activity.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an auth transport client from the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: newListenerSet(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	return c, nil
}

// OnAuthStateChange registers a listener for session lifecycle events. The
// returned subscription must be unsubscribed on teardown.
func (c *Client) OnAuthStateChange(fn ListenerFunc) *Subscription {
	return c.listeners.add(fn)
}

// GetSession returns the current session, loading it from the store on first
// use. An expired session with a refresh token is refreshed transparently; an
// expired session without one is cleared. Returns (nil, nil) when signed out.
func (c *Client) GetSession(ctx context.Context) (*RawSession, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	session := c.session
	c.mu.Unlock()

	if session == nil {
		stored, err := c.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, nil
		}
		c.mu.Lock()
		c.session = stored
		c.mu.Unlock()
		session = stored
	}

	if !c.expired(session) {
		return session, nil
	}
	if session.RefreshToken == "" {
		_ = c.clearSession(ctx)
		return nil, nil
	}
	refreshed, err := c.RefreshSession(ctx)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

// CurrentSession returns the in-memory session without touching the store or
// the network. Nil when signed out.
func (c *Client) CurrentSession() *RawSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// AdoptSession makes the given session current: it is persisted, background
// refresh is scheduled, and EventSignedIn is emitted. Operations that return
// sessions do not adopt them; the caller decides when a grant becomes the
// live session (MFA gating depends on this).
func (c *Client) AdoptSession(ctx context.Context, session *RawSession) error {
	if session == nil || session.AccessToken == "" {
		return ErrNoSession
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Unix() + session.ExpiresIn
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	c.session = session
	c.scheduleRefreshLocked(session)
	c.mu.Unlock()

	if err := c.store.Save(ctx, session); err != nil {
		return err
	}
	c.listeners.emit(EventSignedIn, session)
	return nil
}

// SignUp registers a new account. The service sends a confirmation email;
// unless auto-confirm is enabled no session exists until the user follows it.
func (c *Client) SignUp(ctx context.Context, params SignUpParams) (*SignUpResult, error) {
	q := url.Values{}
	if to := c.cfg.redirectTarget(params.RedirectTo); to != "" {
		q.Set("redirect_to", to)
	}

	// The service returns either the bare user object or a {user, session}
	// envelope depending on whether auto-confirm is enabled.
	var body struct {
		RawUser
		User    *RawUser    `json:"user"`
		Session *RawSession `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", q, params, &body, ""); err != nil {
		return nil, err
	}
	user := body.User
	if user == nil {
		u := body.RawUser
		user = &u
	}
	if body.Session != nil && body.Session.User == nil {
		body.Session.User = user
	}
	return &SignUpResult{User: user, Session: body.Session}, nil
}

// SignInWithPassword exchanges email/password credentials for a session. The
// returned session is not adopted; see AdoptSession.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*RawSession, error) {
	q := url.Values{"grant_type": {"password"}}
	payload := map[string]string{"email": email, "password": password}

	var session RawSession
	if err := c.do(ctx, http.MethodPost, "/token", q, payload, &session, ""); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithIDToken exchanges a provider-issued ID token for a session,
// completing a native OAuth flow. The returned session is not adopted.
func (c *Client) SignInWithIDToken(ctx context.Context, params IDTokenParams) (*RawSession, error) {
	q := url.Values{"grant_type": {"id_token"}}

	var session RawSession
	if err := c.do(ctx, http.MethodPost, "/token", q, params, &session, ""); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithOTP requests a one-time code or magic link. No session is
// produced here; the grant arrives later through VerifyOTP or the emailed
// link.
func (c *Client) SignInWithOTP(ctx context.Context, params OTPParams) error {
	q := url.Values{}
	if to := c.cfg.redirectTarget(params.RedirectTo); to != "" {
		q.Set("redirect_to", to)
	}
	return c.do(ctx, http.MethodPost, "/otp", q, params, nil, "")
}

// VerifyOTP verifies an emailed or texted code. The returned session is not
// adopted.
func (c *Client) VerifyOTP(ctx context.Context, params VerifyOTPParams) (*RawSession, error) {
	var session RawSession
	if err := c.do(ctx, http.MethodPost, "/verify", nil, params, &session, ""); err != nil {
		return nil, err
	}
	return &session, nil
}

// OAuthURL builds the authorize URL for a redirect-based OAuth flow. The
// caller navigates the user there; the completed session arrives later via
// the push stream, after the provider redirects back and the callback is
// verified. No local session exists in between.
func (c *Client) OAuthURL(provider, redirectTo string, scopes []string) (string, error) {
	if provider == "" {
		return "", ErrInvalidConfig
	}
	q := url.Values{"provider": {provider}}
	if to := c.cfg.redirectTarget(redirectTo); to != "" {
		q.Set("redirect_to", to)
	}
	if len(scopes) > 0 {
		q.Set("scopes", strings.Join(scopes, " "))
	}
	return fmt.Sprintf("%s/authorize?%s", strings.TrimRight(c.cfg.BaseURL, "/"), q.Encode()), nil
}

// SignOut revokes the current session per the given scope, clears custody and
// emits EventSignedOut. Revocation failures other than an already-invalid
// token are returned, but local custody is cleared regardless.
func (c *Client) SignOut(ctx context.Context, scope SignOutScope) error {
	if scope == "" {
		scope = SignOutGlobal
	}

	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	var revokeErr error
	if session != nil {
		q := url.Values{"scope": {string(scope)}}
		revokeErr = c.do(ctx, http.MethodPost, "/logout", q, nil, nil, session.AccessToken)
		var apiErr *APIError
		if errors.As(revokeErr, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			// Token already dead server-side; treat as signed out.
			revokeErr = nil
		}
	}

	if scope != SignOutOthers {
		if err := c.clearSession(ctx); err != nil && revokeErr == nil {
			revokeErr = err
		}
	}
	return revokeErr
}

// ResetPasswordForEmail sends a password recovery email.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	q := url.Values{}
	if to := c.cfg.redirectTarget(redirectTo); to != "" {
		q.Set("redirect_to", to)
	}
	payload := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/recover", q, payload, nil, "")
}

// UpdateUser applies a partial update to the authenticated user. On success
// the stored session's user is replaced and EventUserUpdated is emitted.
func (c *Client) UpdateUser(ctx context.Context, params UpdateUserParams) (*RawUser, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	var user RawUser
	if err := c.do(ctx, http.MethodPut, "/user", nil, params, &user, token); err != nil {
		return nil, err
	}

	c.mu.Lock()
	var session *RawSession
	if c.session != nil {
		c.session.User = &user
		session = c.session
	}
	c.mu.Unlock()

	if session != nil {
		_ = c.store.Save(ctx, session)
	}
	c.listeners.emit(EventUserUpdated, session)
	return &user, nil
}

// GetUser fetches the authenticated user from the service.
func (c *Client) GetUser(ctx context.Context) (*RawUser, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}
	var user RawUser
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &user, token); err != nil {
		return nil, err
	}
	return &user, nil
}

// Resend re-requests a signup or email-change confirmation message.
func (c *Client) Resend(ctx context.Context, params ResendParams) error {
	return c.do(ctx, http.MethodPost, "/resend", nil, params, nil, "")
}

// RefreshSession exchanges the current refresh token for a fresh session,
// persists it and emits EventTokenRefreshed. On a rejected refresh token the
// session is cleared and EventSignedOut is emitted.
func (c *Client) RefreshSession(ctx context.Context) (*RawSession, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	current := c.session
	c.mu.Unlock()

	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoSession
	}

	q := url.Values{"grant_type": {"refresh_token"}}
	payload := map[string]string{"refresh_token": current.RefreshToken}

	var session RawSession
	if err := c.do(ctx, http.MethodPost, "/token", q, payload, &session, ""); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			// Refresh token rejected: the grant is gone for good.
			_ = c.clearSession(ctx)
		}
		return nil, err
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Unix() + session.ExpiresIn
	}
	if session.User == nil {
		session.User = current.User
	}

	c.mu.Lock()
	c.session = &session
	c.scheduleRefreshLocked(&session)
	c.mu.Unlock()

	if err := c.store.Save(ctx, &session); err != nil {
		return nil, err
	}
	c.listeners.emit(EventTokenRefreshed, &session)
	return &session, nil
}

// Close stops background refresh and releases the client. Subsequent
// operations return ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	return nil
}

// clearSession drops custody and emits EventSignedOut.
func (c *Client) clearSession(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.mu.Unlock()

	err := c.store.Clear(ctx)
	c.listeners.emit(EventSignedOut, nil)
	return err
}

// requireToken returns the current access token or ErrNoSession.
func (c *Client) requireToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClientClosed
	}
	if c.session == nil || c.session.AccessToken == "" {
		return "", ErrNoSession
	}
	return c.session.AccessToken, nil
}

func (c *Client) expired(session *RawSession) bool {
	return session.ExpiresAt > 0 && c.now().Unix() >= session.ExpiresAt
}

// do executes one JSON request against the auth service. A non-empty token is
// sent as a bearer credential; the public API key accompanies every request.
// Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any, token string) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody apiErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &errBody)
		apiErr := errBody.normalize(resp.StatusCode)
		c.logger.Debug("auth service request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("error_code", apiErr.Code),
			slog.String("component", "transport"),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}
