// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment turns local media files into inline request payloads.
package attachment

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/lumina-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// UnsupportedTypeError reports a file whose media type is neither image nor
// video. The detected type is kept so the UI can name it.
type UnsupportedTypeError struct {
	Path     string
	MIMEType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported attachment type %q for %s (images and videos only)", e.MIMEType, e.Path)
}

// EncodeError wraps I/O failures while reading an attachment.
type EncodeError struct {
	Path  string
	Cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot read attachment %s: %v", e.Path, e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// =============================================================================
// ENCODER
// =============================================================================

// MaxSize caps attachment payloads. Inline data is carried base64-encoded in
// the request body, so oversized media would balloon the request well past
// what the backend accepts.
const MaxSize = 20 << 20 // 20 MiB

// Accept reports whether a MIME type is eligible for attachment. Only images
// and videos are; everything else (PDFs, audio, text) is rejected before any
// bytes are read.
func Accept(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/")
}

// Encode reads the file at path and produces an inline attachment: MIME type
// resolved from the extension with a content sniff fallback, bytes
// base64-encoded, and the original path kept for preview rendering.
func Encode(path string) (model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, &EncodeError{Path: path, Cause: err}
	}
	if info.Size() > MaxSize {
		return model.Attachment{}, &EncodeError{
			Path:  path,
			Cause: fmt.Errorf("file is %d bytes, limit is %d", info.Size(), MaxSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, &EncodeError{Path: path, Cause: err}
	}

	mimeType := DetectMIME(path, data)
	if !Accept(mimeType) {
		return model.Attachment{}, &UnsupportedTypeError{Path: path, MIMEType: mimeType}
	}

	return model.Attachment{
		MIMEType:    mimeType,
		Data:        base64.StdEncoding.EncodeToString(data),
		PreviewPath: path,
	}, nil
}

// EncodeReader encodes already-loaded bytes, e.g. pasted clipboard images
// that never touch disk. The name is used only for extension-based MIME
// resolution and the preview label.
func EncodeReader(name string, r io.Reader) (model.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return model.Attachment{}, &EncodeError{Path: name, Cause: err}
	}
	if len(data) > MaxSize {
		return model.Attachment{}, &EncodeError{
			Path:  name,
			Cause: fmt.Errorf("payload exceeds %d byte limit", MaxSize),
		}
	}

	mimeType := DetectMIME(name, data)
	if !Accept(mimeType) {
		return model.Attachment{}, &UnsupportedTypeError{Path: name, MIMEType: mimeType}
	}

	return model.Attachment{
		MIMEType:    mimeType,
		Data:        base64.StdEncoding.EncodeToString(data),
		PreviewPath: name,
	}, nil
}

// DetectMIME resolves a media type from the file extension, falling back to
// content sniffing when the extension is unknown. Video containers that
// http.DetectContentType cannot sniff still resolve via their extensions.
func DetectMIME(path string, data []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			// Strip any charset parameter; the wire format wants a bare type.
			if mt, _, err := mime.ParseMediaType(byExt); err == nil {
				return mt
			}
			return byExt
		}
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}
