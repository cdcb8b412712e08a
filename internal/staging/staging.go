// Package staging writes inbound image streams to local temp files so the
// recognition and archival steps can each read the full contents.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyStream is returned when the inbound stream carries no bytes.
var ErrEmptyStream = errors.New("uploaded stream is empty")

// StagedFile is a temporary local copy of an uploaded image. It is owned by
// exactly one pipeline run and must be released on every exit path.
type StagedFile struct {
	Path     string
	Filename string
	Size     int64

	released bool
}

// Stage copies r to a uuid-named file under the OS temp directory. Names never
// collide across concurrent requests and are not reused. filename is the
// client-supplied original name, kept for the storage path later on.
func Stage(r io.Reader, filename string) (*StagedFile, error) {
	if r == nil {
		return nil, ErrEmptyStream
	}

	path := filepath.Join(os.TempDir(), uuid.New().String())
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if n == 0 {
		os.Remove(path)
		return nil, ErrEmptyStream
	}

	return &StagedFile{Path: path, Filename: filename, Size: n}, nil
}

// Release deletes the staged file. Deletion failure is logged, not fatal;
// a second Release is a no-op.
func (s *StagedFile) Release(log *zap.Logger) {
	if s == nil || s.released {
		return
	}
	s.released = true

	if err := os.Remove(s.Path); err != nil {
		log.Warn("failed to remove staged file",
			zap.String("path", s.Path),
			zap.Error(err))
		return
	}
	log.Debug("staged file released", zap.String("path", s.Path))
}
