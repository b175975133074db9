// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// =============================================================================
// SSE STREAM READER
// =============================================================================

// maxLineSize bounds a single SSE line. Chunks carrying large inline parts
// would otherwise overflow bufio.Scanner's default 64 KiB token limit.
const maxLineSize = 1 << 20 // 1 MiB

// StreamReader parses a server-sent-event response body into text
// fragments. Lines that are not data events (comments, blank keep-alives,
// the terminal "[DONE]" marker) are skipped.
type StreamReader struct {
	scanner *bufio.Scanner
}

// NewStreamReader wraps an SSE response body.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &StreamReader{scanner: scanner}
}

// Process reads events until the stream ends, invoking onFragment for each
// non-empty text fragment. Returns nil on clean end-of-stream, a canceled
// error if ctx ends first, and a stream error if the body breaks mid-read
// or carries an in-band error event.
func (sr *StreamReader) Process(ctx context.Context, onFragment FragmentFunc) error {
	for sr.scanner.Scan() {
		select {
		case <-ctx.Done():
			return newError(ErrTypeCanceled, "stream canceled", ctx.Err())
		default:
		}

		line := strings.TrimSpace(sr.scanner.Text())
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk GenerateChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return newError(ErrTypeStream, "malformed stream event", err)
		}
		if chunk.Error != nil {
			return newError(ErrTypeStream, chunk.Error.Message, nil)
		}
		if text := chunk.Text(); text != "" {
			onFragment(text)
		}
	}

	if err := sr.scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return newError(ErrTypeCanceled, "stream canceled", err)
		}
		return newError(ErrTypeStream, "stream interrupted", err)
	}
	return nil
}
