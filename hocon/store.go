// FILE: lixenwraith/config/hocon/store.go
package hocon

import (
	"slices"
	"strings"
	"sync"
)

// Node marks a path as an object scope rather than a leaf value.
type Node struct{}

func (Node) String() string { return "{}" }

// IsNode reports whether v is the structural marker.
func IsNode(v any) bool {
	_, ok := v.(Node)
	return ok
}

// Entry is one flattened (path, value) pair. Value is a Node for object scopes.
type Entry struct {
	Path  string
	Value any
}

// IsNode reports whether the entry is an object scope.
func (e Entry) IsNode() bool {
	return IsNode(e.Value)
}

// Store is the backing storage the reader materializes paths into. The reader
// depends only on this contract, so any keyed storage can be targeted.
type Store interface {
	// WriteValue creates or overwrites a scalar or list entry.
	WriteValue(path string, value any) error
	// WriteNode creates or overwrites an object scope entry.
	WriteNode(path string) error
	// Remove deletes the entry at path. Descendants are left untouched.
	Remove(path string) error
	// ReadOne returns the entry stored at exactly path.
	ReadOne(path string) (value any, found bool, err error)
	// ReadPrefix returns path itself and every entry below it, ordered by path.
	ReadPrefix(path string) ([]Entry, error)
}

// Resolver maps a source name (root document or include target) to raw text.
// An unresolvable name yields empty text and a nil error; a non-nil error
// aborts the parse.
type Resolver interface {
	Resolve(name string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (string, error)

func (f ResolverFunc) Resolve(name string) (string, error) {
	return f(name)
}

// MapResolver resolves names from an in-memory table.
type MapResolver map[string]string

func (m MapResolver) Resolve(name string) (string, error) {
	return m[name], nil
}

// MapStore is an in-memory flattened path store, safe for concurrent readers.
type MapStore struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMapStore creates an empty store.
func NewMapStore() *MapStore {
	return &MapStore{entries: make(map[string]any)}
}

func (s *MapStore) WriteValue(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = value
	return nil
}

func (s *MapStore) WriteNode(path string) error {
	return s.WriteValue(path, Node{})
}

func (s *MapStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, path)
	return nil
}

func (s *MapStore) ReadOne(path string) (any, bool, error) {
	v, ok := s.Get(path)
	return v, ok, nil
}

func (s *MapStore) ReadPrefix(path string) ([]Entry, error) {
	return s.Prefix(path), nil
}

// Get returns the value stored at path.
func (s *MapStore) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[path]
	return v, ok
}

// Prefix returns path and its descendants, ordered by path.
func (s *MapStore) Prefix(path string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := path + "."
	var result []Entry
	for p, v := range s.entries {
		if p == path || strings.HasPrefix(p, prefix) {
			result = append(result, Entry{Path: p, Value: v})
		}
	}
	sortEntries(result)
	return result
}

// Entries returns every stored entry, ordered by path.
func (s *MapStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, 0, len(s.entries))
	for p, v := range s.entries {
		result = append(result, Entry{Path: p, Value: v})
	}
	sortEntries(result)
	return result
}

// Len returns the number of stored entries.
func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clone returns an independent copy. Lists are copied one level deep.
func (s *MapStore) Clone() *MapStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &MapStore{entries: make(map[string]any, len(s.entries))}
	for p, v := range s.entries {
		if list, ok := v.([]any); ok {
			v = slices.Clone(list)
		}
		clone.entries[p] = v
	}
	return clone
}

// sortEntries orders entries by path, with the separator ranking below every
// other byte so a scope is immediately followed by its own descendants.
func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return comparePaths(a.Path, b.Path)
	})
}

func comparePaths(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		switch {
		case ca == '.':
			return -1
		case cb == '.':
			return 1
		case ca < cb:
			return -1
		default:
			return 1
		}
	}
	return len(a) - len(b)
}
