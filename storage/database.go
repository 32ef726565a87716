// Package storage keeps the task list in a single JSON document on disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"todo-api/models"
)

// Store owns the task file and an in-memory copy of its last known content.
// Every operation runs its load, mutate and persist steps under one lock.
type Store struct {
	mu      sync.Mutex
	path    string
	seqPath string
	now     func() time.Time
	logger  *slog.Logger
	write   func(path string, data []byte) error

	raw    []byte
	tasks  []models.Task
	lastID int64
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open prepares a store backed by path. A missing file is fine and reads as
// an empty list; a corrupted one is reported right away.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty task file path", ErrInvalidArgument)
	}

	s := &Store{
		path:    filepath.Clean(path),
		seqPath: filepath.Clean(path) + ".seq",
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		write:   writeFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}

	lastID, err := readSeq(s.seqPath)
	if err != nil {
		return nil, err
	}
	s.lastID = lastID

	if _, err := s.load(); err != nil {
		return nil, err
	}

	s.logger.Info("task store opened", "path", s.path, "tasks", len(s.tasks), "last_id", s.lastID)
	return s, nil
}

// Close releases the cached state. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.raw = nil
	s.tasks = nil
	s.logger.Info("task store closed", "path", s.path)
	return nil
}

// Path returns the location of the task file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ready() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// load returns the current task list. The result is shared with the cache
// and must not be modified. Callers hold s.mu.
func (s *Store) load() ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.raw = nil
		s.tasks = []models.Task{}
		return s.tasks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read task file: %w", ErrStorage, err)
	}

	if s.raw != nil && bytes.Equal(data, s.raw) {
		return s.tasks, nil
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		s.logger.Error("task file unreadable", "path", s.path, "error", err)
		return nil, err
	}
	s.raw = data
	s.tasks = tasks
	return tasks, nil
}

// persist atomically replaces the task file with tasks and refreshes the cache.
func (s *Store) persist(tasks []models.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := s.write(s.path, data); err != nil {
		s.logger.Error("failed to save tasks", "path", s.path, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.raw = data
	s.tasks = tasks
	return nil
}

// nextID returns one past the highest id ever issued or stored.
func (s *Store) nextID(tasks []models.Task) int64 {
	next := s.lastID
	for _, t := range tasks {
		if t.ID > next {
			next = t.ID
		}
	}
	return next + 1
}

// reserveID records id in the sequence file before it is used, so an id is
// never handed out twice even across deletes and restarts.
func (s *Store) reserveID(id int64) error {
	if err := s.write(s.seqPath, []byte(strconv.FormatInt(id, 10)+"\n")); err != nil {
		s.logger.Error("failed to save id sequence", "path", s.seqPath, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.lastID = id
	return nil
}

func readSeq(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read id sequence: %w", ErrStorage, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: id sequence %s: %q", ErrParse, path, strings.TrimSpace(string(data)))
	}
	return n, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
