// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if err := AtomicWriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestAtomicWriteFile_MissingDir(t *testing.T) {
	err := AtomicWriteFile(filepath.Join(t.TempDir(), "nope", "out"), []byte("x"), 0o600)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this one is too long", 7, "this on..."},
		{"日本語のテキストです", 3, "日本語..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK runes are two cells wide.
	got := TruncateWidth("日本語テキスト", 6)
	if got == "日本語テキスト" {
		t.Errorf("expected truncation for 12-cell string in 6 cells, got %q", got)
	}
	if got := TruncateWidth("abc", 10); got != "abc" {
		t.Errorf("no-op truncation altered string: %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("hello\nworld"); got != "hello" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine("  spaced  "); got != "spaced" {
		t.Errorf("FirstLine = %q", got)
	}
}
