// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jeranaias/backoffice-tui/internal/logging"
	"github.com/jeranaias/backoffice-tui/internal/session"
)

// =============================================================================
// SHARED CLIENT PLUMBING
// =============================================================================

// TokenStore is the part of Store the clients need.
type TokenStore interface {
	Credentials() Credentials
	Set(creds Credentials) error
	Clear() error
}

// ClientConfig holds the transport settings shared by both clients.
type ClientConfig struct {
	// Timeout bounds a single HTTP attempt (default: 10 seconds).
	Timeout time.Duration

	// RetryMaxElapsed bounds all attempts of one call (default: 15 seconds).
	RetryMaxElapsed time.Duration

	// RetryInitialInterval is the first backoff delay (default: 250ms).
	RetryInitialInterval time.Duration

	// RequestsPerSecond paces outbound calls; zero disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client

	Logger logging.Logger
}

func (c *ClientConfig) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RetryMaxElapsed <= 0 {
		c.RetryMaxElapsed = 15 * time.Second
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 250 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}
}

func (c ClientConfig) newResty(baseURL string) *resty.Client {
	var rc *resty.Client
	if c.HTTPClient != nil {
		rc = resty.NewWithClient(c.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(baseURL).
		SetTimeout(c.Timeout).
		SetHeader("Accept", "application/json")
	return rc
}

func (c ClientConfig) newLimiter() *rate.Limiter {
	if c.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
}

func (c ClientConfig) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.RetryInitialInterval),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(c.RetryMaxElapsed/4),
		backoff.WithMaxElapsedTime(c.RetryMaxElapsed),
	)
	return backoff.WithContext(eb, ctx)
}

// classify turns a response into nil, a retryable error or a permanent one.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	code := resp.StatusCode()
	switch {
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("server error: %s", resp.Status())
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return backoff.Permanent(fmt.Errorf("%w: %s", ErrRefreshRejected, resp.Status()))
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("rate limited: %s", resp.Status())
	case code >= http.StatusBadRequest:
		return backoff.Permanent(fmt.Errorf("unexpected status: %s", resp.Status()))
	default:
		return nil
	}
}

// subjectOf reads the sub claim, keeping fallback when the token is opaque.
func subjectOf(access, fallback string) string {
	info, err := session.NewJWTDecoder().Inspect(access)
	if err != nil || info.Subject == "" {
		return fallback
	}
	return info.Subject
}

// =============================================================================
// REST CLIENT
// =============================================================================

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	ClientConfig

	BaseURL     string
	RefreshPath string
	LogoutPath  string
}

// RESTClient refreshes and ends sessions against the back-office JSON API.
type RESTClient struct {
	store   TokenStore
	http    *resty.Client
	limiter *rate.Limiter
	cfg     RESTConfig
	log     logging.Logger
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Subject      string `json:"subject"`
}

// NewRESTClient creates a client that keeps store up to date.
func NewRESTClient(store TokenStore, cfg RESTConfig) *RESTClient {
	cfg.setDefaults()
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = "/api/auth/refresh"
	}
	if cfg.LogoutPath == "" {
		cfg.LogoutPath = "/api/auth/logout"
	}

	return &RESTClient{
		store:   store,
		http:    cfg.newResty(cfg.BaseURL),
		limiter: cfg.newLimiter(),
		cfg:     cfg,
		log:     cfg.Logger.WithField("component", "auth_rest"),
	}
}

// Refresh exchanges the current credentials for a new access token and
// stores it. Transport failures and 5xx responses are retried.
func (c *RESTClient) Refresh(ctx context.Context) error {
	creds := c.store.Credentials()
	if !creds.SignedIn() && creds.RefreshToken == "" {
		return ErrNotSignedIn
	}

	var result refreshResponse
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(creds.AccessToken).
			SetBody(refreshRequest{RefreshToken: creds.RefreshToken}).
			SetResult(&result).
			Post(c.cfg.RefreshPath)
		if err := classify(resp, err); err != nil {
			c.log.WithError(err).Debug("refresh attempt failed")
			return err
		}
		if result.AccessToken == "" {
			return backoff.Permanent(fmt.Errorf("%w: response carried no access token", ErrRefreshRejected))
		}
		return nil
	}

	if err := backoff.Retry(op, c.cfg.newBackOff(ctx)); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	next := Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Subject:      result.Subject,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}
	if next.Subject == "" {
		next.Subject = subjectOf(next.AccessToken, creds.Subject)
	}

	if err := c.store.Set(next); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	c.log.WithField("subject", next.Subject).Info("session refreshed")
	return nil
}

// SignOut tells the backend to end the session and clears local
// credentials regardless of the outcome. The remote error, if any, is
// returned after the store has been cleared.
func (c *RESTClient) SignOut(ctx context.Context) error {
	creds := c.store.Credentials()

	var remoteErr error
	if creds.SignedIn() {
		op := func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
			resp, err := c.http.R().
				SetContext(ctx).
				SetAuthToken(creds.AccessToken).
				Post(c.cfg.LogoutPath)
			err = classify(resp, err)
			if errors.Is(err, ErrRefreshRejected) {
				// Token already dead on the server
				return nil
			}
			return err
		}
		if err := backoff.Retry(op, c.cfg.newBackOff(ctx)); err != nil {
			remoteErr = fmt.Errorf("remote logout: %w", err)
			c.log.WithError(err).Warn("remote logout failed")
		}
	}

	if err := c.store.Clear(); err != nil {
		return errors.Join(remoteErr, fmt.Errorf("clear credentials: %w", err))
	}
	c.log.Info("signed out")
	return remoteErr
}
