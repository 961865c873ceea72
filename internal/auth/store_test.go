// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func writeExternal(t *testing.T, path string, creds Credentials) {
	t.Helper()

	data, err := json.Marshal(creds)
	require.NoError(t, err)
	tmp := path + ".ext"
	require.NoError(t, os.WriteFile(tmp, data, 0600))
	require.NoError(t, os.Rename(tmp, path))
}

func TestOpenStore_MissingFileIsSignedOut(t *testing.T) {
	s := newTestStore(t)

	require.Empty(t, s.Token())
	require.False(t, s.Credentials().SignedIn())
}

func TestOpenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := OpenStore(path)
	require.ErrorContains(t, err, "parse token file")
}

func TestStore_SetPersistsAndNotifies(t *testing.T) {
	s := newTestStore(t)

	var got []string
	s.Subscribe(func(access string) { got = append(got, access) })

	require.NoError(t, s.Set(Credentials{AccessToken: "a1", RefreshToken: "r1", Subject: "ops"}))
	require.Equal(t, []string{"a1"}, got)
	require.Equal(t, "a1", s.Token())
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), s.Credentials().UpdatedAt)

	reopened, err := OpenStore(s.Path())
	require.NoError(t, err)
	require.Equal(t, s.Credentials(), reopened.Credentials())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(s.Path())
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestStore_ClearRemovesFileAndNotifies(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set(Credentials{AccessToken: "a1"}))

	var got []string
	s.Subscribe(func(access string) { got = append(got, access) })

	require.NoError(t, s.Clear())
	require.Equal(t, []string{""}, got)
	require.NoFileExists(t, s.Path())

	// Clearing twice is fine
	require.NoError(t, s.Clear())
}

func TestStore_Unsubscribe(t *testing.T) {
	s := newTestStore(t)

	calls := 0
	unsub := s.Subscribe(func(string) { calls++ })
	require.NoError(t, s.Set(Credentials{AccessToken: "a1"}))
	unsub()
	require.NoError(t, s.Set(Credentials{AccessToken: "a2"}))

	require.Equal(t, 1, calls)
}

func TestStore_Reload(t *testing.T) {
	tests := []struct {
		name     string
		external func(t *testing.T, s *Store)
		want     ReloadResult
		token    string
		notified []string
	}{
		{
			name:     "own_write_ignored",
			external: func(t *testing.T, s *Store) {},
			want:     ReloadIgnored,
			token:    "a1",
		},
		{
			name: "new_token",
			external: func(t *testing.T, s *Store) {
				writeExternal(t, s.Path(), Credentials{AccessToken: "a2", Subject: "ops"})
			},
			want:     ReloadTokenChanged,
			token:    "a2",
			notified: []string{"a2"},
		},
		{
			name: "same_token_rewritten",
			external: func(t *testing.T, s *Store) {
				writeExternal(t, s.Path(), Credentials{AccessToken: "a1", UpdatedAt: time.Now()})
			},
			want:  ReloadSameToken,
			token: "a1",
		},
		{
			name: "file_deleted",
			external: func(t *testing.T, s *Store) {
				require.NoError(t, os.Remove(s.Path()))
			},
			want:     ReloadTokenChanged,
			token:    "",
			notified: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, s.Set(Credentials{AccessToken: "a1"}))

			var notified []string
			s.Subscribe(func(access string) { notified = append(notified, access) })

			tt.external(t, s)
			got, err := s.Reload()

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.token, s.Token())
			require.Equal(t, tt.notified, notified)
		})
	}
}

func TestStore_ReloadCorruptKeepsState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set(Credentials{AccessToken: "a1"}))
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0600))

	_, err := s.Reload()
	require.Error(t, err)
	require.Equal(t, "a1", s.Token())
}
