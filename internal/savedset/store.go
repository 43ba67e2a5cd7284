// Package savedset tracks the set of recall ids a user has saved, persisted
// write-through behind an injected key/value collaborator. The store owns its
// collaborator exclusively: nothing else reads or writes the saved-set key.
//
// Persistence format: a JSON array of ids, sorted ascending so the stored
// bytes are deterministic. Semantically the data is a set — membership only.
package savedset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultKey is the key the saved-set is stored under when none is given.
const DefaultKey = "saved_recalls"

// ErrCorrupt wraps persistence payloads that fail to decode. Load treats it
// as "no saved items" rather than surfacing it; it exists so backends and
// tests can classify the condition.
var ErrCorrupt = errors.New("saved-set payload corrupt")

// KV is the persistence collaborator: an opaque byte store. GetBytes
// reports ok=false when the key has never been written.
type KV interface {
	GetBytes(ctx context.Context, key string) (value []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte) error
}

// Store is the in-memory saved-set with write-through persistence. Toggles
// from concurrent callers serialize on an internal mutex, so the last toggle
// wins and no update is lost.
type Store struct {
	kv  KV
	key string

	mu  sync.Mutex
	ids map[int]struct{}
}

// New constructs a Store over kv. key == "" uses DefaultKey. The returned
// store is empty; call Load to hydrate it from persistence.
func New(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, ids: make(map[int]struct{})}
}

// Load replaces the in-memory set with the persisted one. Missing or corrupt
// data degrades to an empty set; Load never fails on payload contents, only
// on backend I/O errors.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.GetBytes(ctx, s.key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int]struct{})

	if err != nil {
		return err
	}
	if !ok || len(raw) == 0 {
		return nil
	}

	list, err := decodeIDs(raw)
	if errors.Is(err, ErrCorrupt) {
		// Unreadable payload means "nothing saved", by contract.
		return nil
	}
	for _, id := range list {
		s.ids[id] = struct{}{}
	}
	return nil
}

// decodeIDs parses the persisted payload, wrapping failures in ErrCorrupt.
func decodeIDs(raw []byte) ([]int, error) {
	var list []int
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return list, nil
}

// Save writes the current set, overwriting whatever is stored. The write
// happens under the store mutex so it cannot interleave with a toggle's
// persist.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.SetBytes(ctx, s.key, s.encodeLocked())
}

// Toggle flips membership for id and persists synchronously. It returns the
// new membership state (true when the toggle saved the id).
//
// The persist stays under the store mutex: overlapping toggles must land
// their writes in mutation order or the durable bytes end up describing an
// older snapshot. The KV collaborator never calls back into the store, so
// holding the lock across SetBytes cannot deadlock.
func (s *Store) Toggle(ctx context.Context, id int) (saved bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		saved = false
	} else {
		s.ids[id] = struct{}{}
		saved = true
	}
	return saved, s.kv.SetBytes(ctx, s.key, s.encodeLocked())
}

// IsSaved reports membership for id.
func (s *Store) IsSaved(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the saved ids sorted ascending — the same order they persist in.
func (s *Store) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Len returns the set size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Store) sortedLocked() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (s *Store) encodeLocked() []byte {
	b, _ := json.Marshal(s.sortedLocked()) // []int cannot fail to encode
	return b
}
