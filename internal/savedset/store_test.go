package savedset

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memKV is an in-memory KV fake used across the tests.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error // injected backend failure
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) SetBytes(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func TestStore_ToggleTwiceRestoresPriorState(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), "")

	saved, err := s.Toggle(ctx, 42)
	if err != nil || !saved {
		t.Fatalf("first toggle: saved=%v err=%v", saved, err)
	}
	if !s.IsSaved(42) {
		t.Fatalf("IsSaved must reflect the toggle")
	}

	saved, err = s.Toggle(ctx, 42)
	if err != nil || saved {
		t.Fatalf("second toggle: saved=%v err=%v", saved, err)
	}
	if s.IsSaved(42) || s.Len() != 0 {
		t.Fatalf("double toggle must restore the prior state")
	}
}

func TestStore_PersistedBytesRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()

	s := New(kv, "")
	for _, id := range []int{30, 10, 20} {
		if _, err := s.Toggle(ctx, id); err != nil {
			t.Fatalf("toggle %d: %v", id, err)
		}
	}

	// A fresh store over the same KV sees the same set.
	s2 := New(kv, "")
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := s2.IDs()
	if len(ids) != 3 || ids[0] != 10 || ids[1] != 20 || ids[2] != 30 {
		t.Fatalf("round trip ids = %v", ids)
	}
}

func TestStore_PersistedFormIsSortedJSON(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, "k")
	for _, id := range []int{5, 1, 3} {
		if _, err := s.Toggle(ctx, id); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	raw, ok, _ := kv.GetBytes(ctx, "k")
	if !ok || string(raw) != "[1,3,5]" {
		t.Fatalf("persisted bytes = %q", raw)
	}
}

func TestStore_LoadMissingKeyYieldsEmpty(t *testing.T) {
	s := New(newMemKV(), "")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("missing key must load as empty set")
	}
}

func TestStore_LoadCorruptPayloadYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[DefaultKey] = []byte(`{"not":"a list"}`)

	s := New(kv, "")
	if err := s.Load(ctx); err != nil {
		t.Fatalf("corrupt payload must not fail loudly: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("corrupt payload must load as empty set")
	}
}

func TestStore_LoadBackendErrorSurfaces(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("disk on fire")

	s := New(kv, "")
	if err := s.Load(context.Background()); err == nil {
		t.Fatalf("backend I/O errors must surface")
	}
	if s.Len() != 0 {
		t.Fatalf("failed load must leave the set empty")
	}
}

func TestStore_ConcurrentTogglesSerialize(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), "")

	const workers = 16
	const togglesEach = 101 // odd so an odd total count flips membership

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < togglesEach; j++ {
				if _, err := s.Toggle(ctx, 7); err != nil {
					t.Errorf("toggle: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// workers*togglesEach toggles total: even count => not saved.
	want := (workers*togglesEach)%2 == 1
	if s.IsSaved(7) != want {
		t.Fatalf("after %d toggles IsSaved=%v, want %v", workers*togglesEach, s.IsSaved(7), want)
	}
}

// stallKV blocks the first SetBytes until released and records every
// persisted payload in arrival order.
type stallKV struct {
	mu      sync.Mutex
	writes  []string
	entered chan struct{} // closed when the first write is in flight
	release chan struct{} // closing it lets the first write land
	first   bool
}

func newStallKV() *stallKV {
	return &stallKV{entered: make(chan struct{}), release: make(chan struct{}), first: true}
}

func (k *stallKV) GetBytes(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (k *stallKV) SetBytes(_ context.Context, _ string, value []byte) error {
	k.mu.Lock()
	stall := k.first
	k.first = false
	k.mu.Unlock()

	if stall {
		close(k.entered)
		<-k.release
	}

	k.mu.Lock()
	k.writes = append(k.writes, string(value))
	k.mu.Unlock()
	return nil
}

func TestStore_TogglePersistsInMutationOrder(t *testing.T) {
	ctx := context.Background()
	kv := newStallKV()
	s := New(kv, "")

	// First toggle saves id 1; its persist stalls inside the KV.
	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		if _, err := s.Toggle(ctx, 1); err != nil {
			t.Errorf("first toggle: %v", err)
		}
	}()
	<-kv.entered

	// Second toggle unsaves id 1. It must not overtake the stalled persist,
	// or a restart would resurrect the id from the later-landing "[1]".
	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		if _, err := s.Toggle(ctx, 1); err != nil {
			t.Errorf("second toggle: %v", err)
		}
	}()
	select {
	case <-done2:
		t.Fatalf("second toggle persisted before the first write landed")
	case <-time.After(50 * time.Millisecond):
	}

	close(kv.release)
	<-done1
	<-done2

	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.writes) != 2 {
		t.Fatalf("writes = %v, want 2 payloads", kv.writes)
	}
	if kv.writes[0] != "[1]" || kv.writes[1] != "[]" {
		t.Fatalf("writes landed out of mutation order: %v", kv.writes)
	}
	if s.IsSaved(1) {
		t.Fatalf("memory and durable state disagree: id 1 still saved")
	}
}

func TestDecodeIDs_Corrupt(t *testing.T) {
	if _, err := decodeIDs([]byte("oops")); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
	ids, err := decodeIDs([]byte("[1,2]"))
	if err != nil || len(ids) != 2 {
		t.Fatalf("valid payload: ids=%v err=%v", ids, err)
	}
}
