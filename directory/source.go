package directory

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Source owns the current Directory snapshot for a process.
//
// The file is read once by [NewSource]. If that snapshot is empty, the first
// call to [Source.Directory] retries the load once. After that the snapshot
// only changes through [Source.Reload].
type Source struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	current *Directory
	retried bool
}

// NewSource loads the directory file at path. Load failures are logged and
// leave the source serving an empty directory.
func NewSource(path string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{path: path, logger: logger}
	s.current = s.loadOrEmpty()
	return s
}

// Fixed returns a Source that always serves d and has no backing file.
func Fixed(d *Directory) *Source {
	if d == nil {
		d = New(nil)
	}
	return &Source{logger: zap.NewNop(), current: d, retried: true}
}

// Path returns the backing file path, or "" for a fixed source.
func (s *Source) Path() string {
	return s.path
}

// Directory returns the current snapshot.
func (s *Source) Directory() *Directory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Len() == 0 && !s.retried {
		s.retried = true
		s.current = s.loadOrEmpty()
	}
	return s.current
}

// Reload re-reads the backing file and swaps in the new snapshot. On failure
// the previous snapshot stays in place and the error is returned.
func (s *Source) Reload() (*Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return s.current, errors.New("directory: source has no backing file")
	}
	d, err := Load(s.path)
	if err != nil {
		s.logger.Error("reloading contacts directory failed", zap.String("path", s.path), zap.Error(err))
		return s.current, err
	}
	s.current = d
	s.retried = true
	s.logger.Info("reloaded contacts directory", zap.String("path", s.path), zap.Int("contacts", d.Len()))
	return d, nil
}

func (s *Source) loadOrEmpty() *Directory {
	if s.path == "" {
		return New(nil)
	}
	d, err := Load(s.path)
	switch {
	case err == nil:
		s.logger.Info("loaded contacts directory", zap.String("path", s.path), zap.Int("contacts", d.Len()))
		return d
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warn("contacts directory not found", zap.String("path", s.path))
	default:
		s.logger.Error("loading contacts directory failed", zap.String("path", s.path), zap.Error(err))
	}
	return New(nil)
}
