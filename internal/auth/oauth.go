// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jeranaias/backoffice-tui/internal/logging"
)

// OAuth2Config configures an OAuth2Client.
type OAuth2Config struct {
	ClientConfig

	ClientID     string
	ClientSecret string
	TokenURL     string
	RevokeURL    string
	Scopes       []string
}

// OAuth2Client refreshes sessions with the OAuth 2.0 refresh-token grant
// and signs out through token revocation (RFC 7009).
type OAuth2Client struct {
	store   TokenStore
	oauth   oauth2.Config
	http    *resty.Client
	limiter *rate.Limiter
	cfg     OAuth2Config
	log     logging.Logger
}

// NewOAuth2Client creates a client that keeps store up to date.
func NewOAuth2Client(store TokenStore, cfg OAuth2Config) *OAuth2Client {
	cfg.setDefaults()

	rc := cfg.newResty("")
	return &OAuth2Client{
		store: store,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
			Scopes:       cfg.Scopes,
		},
		http:    rc,
		limiter: cfg.newLimiter(),
		cfg:     cfg,
		log:     cfg.Logger.WithField("component", "auth_oauth2"),
	}
}

// Refresh runs the refresh-token grant and stores the new tokens.
func (c *OAuth2Client) Refresh(ctx context.Context) error {
	creds := c.store.Credentials()
	if creds.RefreshToken == "" {
		return ErrNotSignedIn
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http.GetClient())

	var tok *oauth2.Token
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		tok, err = c.oauth.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
		if err == nil {
			return nil
		}

		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrRefreshRejected, describeRetrieveError(re)))
		}
		c.log.WithError(err).Debug("token endpoint attempt failed")
		return err
	}

	if err := backoff.Retry(op, c.cfg.newBackOff(ctx)); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	next := Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Subject:      subjectOf(tok.AccessToken, creds.Subject),
	}
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}

	if err := c.store.Set(next); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	c.log.WithField("subject", next.Subject).Info("session refreshed")
	return nil
}

// SignOut revokes the refresh token, or the access token when there is no
// refresh token, then clears the store. Without a revocation endpoint the
// sign-out is local only.
func (c *OAuth2Client) SignOut(ctx context.Context) error {
	creds := c.store.Credentials()

	var remoteErr error
	token, hint := creds.RefreshToken, "refresh_token"
	if token == "" {
		token, hint = creds.AccessToken, "access_token"
	}

	if c.cfg.RevokeURL != "" && token != "" {
		op := func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}

			req := c.http.R().
				SetContext(ctx).
				SetFormData(map[string]string{
					"token":           token,
					"token_type_hint": hint,
				})
			if c.cfg.ClientSecret != "" {
				req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
			} else {
				req.SetFormData(map[string]string{"client_id": c.cfg.ClientID})
			}

			resp, err := req.Post(c.cfg.RevokeURL)
			return classify(resp, err)
		}
		if err := backoff.Retry(op, c.cfg.newBackOff(ctx)); err != nil {
			remoteErr = fmt.Errorf("revoke token: %w", err)
			c.log.WithError(err).Warn("token revocation failed")
		}
	}

	if err := c.store.Clear(); err != nil {
		return errors.Join(remoteErr, fmt.Errorf("clear credentials: %w", err))
	}
	c.log.Info("signed out")
	return remoteErr
}

func describeRetrieveError(re *oauth2.RetrieveError) string {
	if re.ErrorCode != "" {
		return re.ErrorCode
	}
	return re.Response.Status
}
