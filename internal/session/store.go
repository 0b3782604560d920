// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the backend session cookie between runs.
//
// The backend identifies the user by an HTTP cookie set at login. The
// browser kept that cookie in its cookie store; here it lives in
// ~/.xst/session.json so a restart does not force a fresh login. The
// file holds only what the jar needs to replay the cookie.
package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xst-ai/xst-tui/internal/util"
)

// =============================================================================
// STORED COOKIE FORMAT
// =============================================================================

// storedCookie is the on-disk shape of a single cookie.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// storedSession is the on-disk shape of the session file.
type storedSession struct {
	// BaseURL records which backend the cookies belong to. Cookies are
	// discarded when the configured backend changes.
	BaseURL string         `json:"baseUrl"`
	Cookies []storedCookie `json:"cookies"`
	SavedAt time.Time      `json:"savedAt"`
}

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes the persisted session.
type Store struct {
	path string
}

// NewStore creates a store using the default session file location.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	return &Store{path: filepath.Join(home, ".xst", "session.json")}, nil
}

// NewStoreAt creates a store using a specific file path. Used in tests.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists cookies for the given backend origin. Expired cookies
// are dropped rather than written.
func (s *Store) Save(baseURL string, cookies []*http.Cookie) error {
	stored := storedSession{
		BaseURL: baseURL,
		SavedAt: time.Now(),
	}
	now := time.Now()
	for _, c := range cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		stored.Cookies = append(stored.Cookies, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Session cookies are credentials; 0600 and atomic replace.
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load returns the persisted cookies for the given backend origin.
// Returns nil (no error) when there is no usable session: missing file,
// different backend, or all cookies expired.
func (s *Store) Load(baseURL string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt session file is not fatal; the user logs in again.
		return nil, nil
	}

	if stored.BaseURL != baseURL {
		return nil, nil
	}

	now := time.Now()
	var cookies []*http.Cookie
	for _, c := range stored.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}
	return cookies, nil
}

// Clear removes the persisted session. Missing files are not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
