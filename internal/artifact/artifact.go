// Package artifact handles the filled-form PDF delivered by the pipeline.
// The artifact arrives base64-embedded in the status payload, not as a
// separate byte stream, and must decode into a valid PDF before the viewer
// ever sees it.
package artifact

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrDecode means the artifact payload was malformed base64 or not a
// readable PDF.
var ErrDecode = errors.New("artifact decode failed")

// Artifact is a decoded filled-form PDF. It is owned by exactly one review
// session at a time and released before a replacement is acquired.
type Artifact struct {
	data      []byte
	pageCount int
	path      string
}

// Decode turns a base64 payload into a validated artifact.
func Decode(b64 string) (*Artifact, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", ErrDecode, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrDecode)
	}

	return &Artifact{data: data, pageCount: pageCount}, nil
}

// Bytes returns the raw PDF bytes.
func (a *Artifact) Bytes() []byte {
	return a.data
}

// PageCount returns the number of pages in the filled form.
func (a *Artifact) PageCount() int {
	return a.pageCount
}

// Path returns where the artifact was saved, or "" if it only lives in
// memory.
func (a *Artifact) Path() string {
	return a.path
}

// SaveTo writes the artifact under dir and remembers the location so
// Release can clean it up.
func (a *Artifact) SaveTo(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, a.data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	a.path = path
	return path, nil
}

// Release drops the artifact's resources: the in-memory bytes and any file
// written by SaveTo. Safe to call on nil and more than once.
func (a *Artifact) Release() error {
	if a == nil {
		return nil
	}
	a.data = nil
	if a.path == "" {
		return nil
	}
	path := a.path
	a.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact file: %w", err)
	}
	return nil
}
