// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type oauthServer struct {
	srv         *httptest.Server
	tokenStatus int
	revoked     atomic.Value
	revokeCalls atomic.Int32
}

func newOAuthServer(t *testing.T) *oauthServer {
	t.Helper()

	o := &oauthServer{tokenStatus: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "r1", r.PostForm.Get("refresh_token"))

		if o.tokenStatus != http.StatusOK {
			writeJSON(w, o.tokenStatus, map[string]string{"error": "invalid_grant"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "fresh",
			"refresh_token": "r2",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})

	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		o.revokeCalls.Add(1)
		require.NoError(t, r.ParseForm())
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "backoffice", user)
		require.Equal(t, "s3cret", pass)
		require.Equal(t, "refresh_token", r.PostForm.Get("token_type_hint"))
		o.revoked.Store(r.PostForm.Get("token"))
		w.WriteHeader(http.StatusOK)
	})

	o.srv = httptest.NewServer(mux)
	t.Cleanup(o.srv.Close)
	return o
}

func (o *oauthServer) client(store TokenStore, revoke bool) *OAuth2Client {
	cfg := OAuth2Config{
		ClientConfig: fastClientConfig(),
		ClientID:     "backoffice",
		ClientSecret: "s3cret",
		TokenURL:     o.srv.URL + "/token",
	}
	if revoke {
		cfg.RevokeURL = o.srv.URL + "/revoke"
	}
	return NewOAuth2Client(store, cfg)
}

func TestOAuth2Client_Refresh(t *testing.T) {
	o := newOAuthServer(t)
	store := newTestStore(t)
	require.NoError(t, store.Set(Credentials{AccessToken: "stale", RefreshToken: "r1", Subject: "ops"}))

	require.NoError(t, o.client(store, true).Refresh(context.Background()))

	creds := store.Credentials()
	require.Equal(t, "fresh", creds.AccessToken)
	require.Equal(t, "r2", creds.RefreshToken)
	require.Equal(t, "ops", creds.Subject, "opaque token keeps previous subject")
}

func TestOAuth2Client_RefreshRejected(t *testing.T) {
	o := newOAuthServer(t)
	o.tokenStatus = http.StatusBadRequest
	store := newTestStore(t)
	require.NoError(t, store.Set(Credentials{AccessToken: "stale", RefreshToken: "r1"}))

	err := o.client(store, true).Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshRejected)
	require.ErrorContains(t, err, "invalid_grant")
	require.Equal(t, "stale", store.Token())
}

func TestOAuth2Client_RefreshNeedsRefreshToken(t *testing.T) {
	o := newOAuthServer(t)
	store := newTestStore(t)
	require.NoError(t, store.Set(Credentials{AccessToken: "only-access"}))

	require.ErrorIs(t, o.client(store, true).Refresh(context.Background()), ErrNotSignedIn)
}

func TestOAuth2Client_SignOutRevokes(t *testing.T) {
	o := newOAuthServer(t)
	store := newTestStore(t)
	require.NoError(t, store.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, o.client(store, true).SignOut(context.Background()))
	require.Equal(t, "r1", o.revoked.Load())
	require.Empty(t, store.Token())
}

func TestOAuth2Client_SignOutWithoutRevokeURLIsLocal(t *testing.T) {
	o := newOAuthServer(t)
	store := newTestStore(t)
	require.NoError(t, store.Set(Credentials{AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, o.client(store, false).SignOut(context.Background()))
	require.Zero(t, o.revokeCalls.Load())
	require.Empty(t, store.Token())
}
