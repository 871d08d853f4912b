package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps containers and notes in maps. It backs dry runs and
// tests. Keys are Path.String() and Ref.String().
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]struct{}
	notes      map[string]string

	// FailOn makes the named operation fail with the given error; tests use
	// it to simulate store failures.
	FailOn map[string]error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		containers: make(map[string]struct{}),
		notes:      make(map[string]string),
	}
}

func (s *MemoryStore) fail(op, path string) error {
	if err, ok := s.FailOn[op]; ok {
		return wrapErr(op, path, err)
	}
	return nil
}

// Exists reports whether the note exists
func (s *MemoryStore) Exists(ctx context.Context, ref Ref) (bool, error) {
	if err := s.fail("exists", ref.String()); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.notes[ref.String()]
	return ok, nil
}

// Create records the container and its ancestors
func (s *MemoryStore) Create(ctx context.Context, dir Path) error {
	if err := s.fail("create", dir.String()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(dir)
	return nil
}

func (s *MemoryStore) createLocked(dir Path) {
	for i := 1; i <= len(dir); i++ {
		s.containers[dir[:i].String()] = struct{}{}
	}
}

// ReadBody returns the note content, "" when missing
func (s *MemoryStore) ReadBody(ctx context.Context, ref Ref) (string, error) {
	if err := s.fail("read", ref.String()); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes[ref.String()], nil
}

// AppendLine appends line and a newline, creating the note if needed
func (s *MemoryStore) AppendLine(ctx context.Context, ref Ref, line string) error {
	if err := s.fail("append", ref.String()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(ref.Dir)
	s.notes[ref.String()] += line + "\n"
	return nil
}

// WriteBody replaces the note content
func (s *MemoryStore) WriteBody(ctx context.Context, ref Ref, content string) error {
	if err := s.fail("write", ref.String()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(ref.Dir)
	s.notes[ref.String()] = content
	return nil
}

// HasContainer reports whether the container exists
func (s *MemoryStore) HasContainer(dir Path) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.containers[dir.String()]
	return ok
}

// Snapshot returns a copy of every note keyed by its Ref string
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.notes))
	for k, v := range s.notes {
		out[k] = v
	}
	return out
}

// Containers returns every container path, sorted
func (s *MemoryStore) Containers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.containers))
	for k := range s.containers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
