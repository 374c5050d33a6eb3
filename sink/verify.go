package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

// ErrStale is wrapped by every mismatch a VerifySink records.
var ErrStale = errors.New("generated file is out of date")

// VerifySink compares generated content with the files already on disk
// instead of writing it. Mismatches are collected; WriteFile only fails on
// I/O or path errors.
type VerifySink struct {
	// Root is the directory compared against.
	Root string

	mu      sync.Mutex
	result  *multierror.Error
	checked []string
}

// NewVerifySink creates a VerifySink comparing against files below root.
func NewVerifySink(root string) *VerifySink {
	return &VerifySink{Root: root}
}

// WriteFile compares content with the file at path.
func (s *VerifySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	existing, err := os.ReadFile(fullPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.record(path, fmt.Errorf("%s: %w: file is missing", fullPath, ErrStale))
		return nil
	case err != nil:
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	if bytes.Equal(existing, content) {
		s.record(path, nil)
		return nil
	}

	diff := cmp.Diff(strings.Split(string(existing), "\n"), strings.Split(string(content), "\n"))
	s.record(path, fmt.Errorf("%s: %w (-disk +generated):\n%s", fullPath, ErrStale, diff))
	return nil
}

// RemoveFile records that path should no longer exist.
func (s *VerifySink) RemoveFile(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	if _, err := os.Stat(fullPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	s.record(path, fmt.Errorf("%s: %w: no enum generates this file", fullPath, ErrStale))
	return nil
}

func (s *VerifySink) record(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checked = append(s.checked, path)
	if err != nil {
		s.result = multierror.Append(s.result, err)
	}
}

// Checked returns the paths compared or removed so far.
func (s *VerifySink) Checked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.checked...)
}

// Err returns all recorded mismatches, or nil when every file is current.
func (s *VerifySink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result.ErrorOrNil()
}
