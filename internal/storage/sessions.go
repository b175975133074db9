// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions as JSON files on disk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a session file does not exist.
var ErrNotFound = errors.New("session not found")

// ArchiveError wraps archive failures with the operation and session id.
type ArchiveError struct {
	Op        string
	SessionID string
	Cause     error
}

func (e *ArchiveError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.SessionID, e.Cause)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Cause)
}

func (e *ArchiveError) Unwrap() error { return e.Cause }

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive stores one JSON file per session under a directory. File names
// are the session id plus ".json"; writes go through an atomic
// rename so a crash never leaves a torn file.
type Archive struct {
	dir string
}

// NewArchive creates the directory if needed and returns an archive over
// it.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &ArchiveError{Op: "create archive dir", Cause: err}
	}
	return &Archive{dir: dir}, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string { return a.dir }

// Save writes one session to disk.
func (a *Archive) Save(sess model.ChatSession) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return &ArchiveError{Op: "encode", SessionID: sess.ID, Cause: err}
	}
	path := a.pathFor(sess.ID)
	if err := util.AtomicWriteFile(path, data, 0o600); err != nil {
		return &ArchiveError{Op: "write", SessionID: sess.ID, Cause: err}
	}
	return nil
}

// SaveAll writes every session, continuing past individual failures and
// returning the first error encountered.
func (a *Archive) SaveAll(sessions []model.ChatSession) error {
	var first error
	for _, sess := range sessions {
		if err := a.Save(sess); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Load reads one session by id.
func (a *Archive) Load(id string) (model.ChatSession, error) {
	data, err := os.ReadFile(a.pathFor(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.ChatSession{}, &ArchiveError{Op: "load", SessionID: id, Cause: ErrNotFound}
		}
		return model.ChatSession{}, &ArchiveError{Op: "load", SessionID: id, Cause: err}
	}
	var sess model.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return model.ChatSession{}, &ArchiveError{Op: "decode", SessionID: id, Cause: err}
	}
	return sess, nil
}

// LoadAll reads every session in the archive, newest first. Files that fail
// to parse are skipped: one corrupt file must not block startup.
func (a *Archive) LoadAll() ([]model.ChatSession, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, &ArchiveError{Op: "list", Cause: err}
	}

	var sessions []model.ChatSession
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		sess, err := a.Load(id)
		if err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

// Delete removes one session file. Deleting an absent session is an error
// so callers can distinguish it from success.
func (a *Archive) Delete(id string) error {
	if err := os.Remove(a.pathFor(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ArchiveError{Op: "delete", SessionID: id, Cause: ErrNotFound}
		}
		return &ArchiveError{Op: "delete", SessionID: id, Cause: err}
	}
	return nil
}

func (a *Archive) pathFor(id string) string {
	// Session ids are UUIDs, but sanitize anyway: the id becomes a file
	// name.
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, id)
	return filepath.Join(a.dir, safe+".json")
}
