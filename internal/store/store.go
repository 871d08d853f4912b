// Package store defines the node store the materializer writes to, and its
// backends.
//
// A store holds containers (identified by a Path of sanitized labels) and
// notes (identified by a Ref: the container holding the note plus the note
// name). A container's own note is the note named after its last segment.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Store is the persistence contract required by the materializer.
//
// Implementations do no locking of their own beyond what is needed for
// memory safety; a materialization pass assumes exclusive access to its
// output root (see Acquire).
type Store interface {
	// Exists reports whether the note exists
	Exists(ctx context.Context, ref Ref) (bool, error)

	// Create creates the container and its ancestors. Creating an existing
	// container is a no-op.
	Create(ctx context.Context, dir Path) error

	// ReadBody returns the note's content, or "" if it does not exist
	ReadBody(ctx context.Context, ref Ref) (string, error)

	// AppendLine appends line plus a newline, creating the note if absent
	AppendLine(ctx context.Context, ref Ref, line string) error

	// WriteBody replaces the note's content
	WriteBody(ctx context.Context, ref Ref, content string) error
}

// Path is a container location relative to the output root
type Path []string

// Child returns a new path one level below p
func (p Path) Child(label string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, label)
}

// Last returns the final segment, or "" for the root
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Ref names a note inside a container
type Ref struct {
	Dir  Path
	Name string
}

// NoteOf returns the container's own note
func NoteOf(dir Path) Ref {
	return Ref{Dir: dir, Name: dir.Last()}
}

// LeafOf returns a note named name inside dir
func LeafOf(dir Path, name string) Ref {
	return Ref{Dir: dir, Name: name}
}

func (r Ref) String() string {
	if len(r.Dir) == 0 {
		return r.Name + ".md"
	}
	return r.Dir.String() + "/" + r.Name + ".md"
}

// Sanitize makes an entity label safe to use as a path segment: every
// character outside [A-Za-z0-9:_ ] becomes '_'.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ':' || r == '_' || r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Error is a node store failure. It aborts the current pass.
type Error struct {
	Op   string // exists, create, read, append, write
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}
