// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/backoffice-tui/internal/util"
)

// Credentials is the persisted sign-in state.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignedIn reports whether an access token is present.
func (c Credentials) SignedIn() bool {
	return c.AccessToken != ""
}

// ReloadResult describes what Reload found on disk.
type ReloadResult int

const (
	// ReloadIgnored means the file matches what this store last wrote.
	ReloadIgnored ReloadResult = iota

	// ReloadTokenChanged means the access token changed and subscribers were notified.
	ReloadTokenChanged

	// ReloadSameToken means the file was rewritten by someone else but
	// carries the same access token.
	ReloadSameToken
)

// Store holds the current credentials and mirrors them to a JSON file.
// Subscribers are notified with the new access token after every change,
// outside the store lock.
type Store struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	creds   Credentials
	written []byte
	subs    []storeSub
	nextID  int
}

type storeSub struct {
	id int
	fn func(access string)
}

// OpenStore loads credentials from path. A missing file means signed out.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	creds, err := decodeCredentials(data)
	if err != nil {
		return nil, err
	}
	s.creds = creds
	s.written = data
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Token returns the current access token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Credentials returns a copy of the current credentials.
func (s *Store) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Set replaces the credentials, persists them and notifies subscribers.
func (s *Store) Set(creds Credentials) error {
	creds.UpdatedAt = s.now().UTC()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	s.mu.Lock()
	if err := util.AtomicWriteFile(s.path, data, 0600, 0700); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write token file: %w", err)
	}
	s.creds = creds
	s.written = data
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, creds.AccessToken)
	return nil
}

// Clear forgets the credentials and removes the file. Subscribers are
// notified with an empty token even if the file could not be removed.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.written = nil
	err := os.Remove(s.path)
	subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, "")

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Reload re-reads the file after an out-of-band change.
func (s *Store) Reload() (ReloadResult, error) {
	data, err := os.ReadFile(s.path)
	missing := errors.Is(err, os.ErrNotExist)
	if err != nil && !missing {
		return ReloadIgnored, fmt.Errorf("read token file: %w", err)
	}

	var creds Credentials
	if !missing {
		if creds, err = decodeCredentials(data); err != nil {
			return ReloadIgnored, err
		}
	}

	s.mu.Lock()
	if bytes.Equal(data, s.written) {
		s.mu.Unlock()
		return ReloadIgnored, nil
	}

	prev := s.creds.AccessToken
	s.creds = creds
	s.written = data
	subs := s.snapshotLocked()
	s.mu.Unlock()

	if prev == creds.AccessToken {
		return ReloadSameToken, nil
	}

	notify(subs, creds.AccessToken)
	return ReloadTokenChanged, nil
}

// Subscribe registers fn for token changes. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(access string)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, storeSub{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) snapshotLocked() []func(string) {
	fns := make([]func(string), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	return fns
}

func notify(subs []func(string), access string) {
	for _, fn := range subs {
		fn(access)
	}
}

func decodeCredentials(data []byte) (Credentials, error) {
	var creds Credentials
	if len(bytes.TrimSpace(data)) == 0 {
		return creds, nil
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse token file: %w", err)
	}
	return creds, nil
}
