package dedup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nao1215/dataminer/internal/model"
)

// memoryStore is an in-memory Store guarded by a mutex.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*model.PageRecord
	fail    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*model.PageRecord)}
}

func (m *memoryStore) PutPageRecord(_ context.Context, record *model.PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.records[record.Fingerprint]; ok {
		return fmt.Errorf("insert %s: %w", record.URL, ErrDuplicateContent)
	}
	m.records[record.Fingerprint] = record
	return nil
}

func (m *memoryStore) ExistsFingerprint(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[fingerprint]
	return ok, nil
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("same content gives same fingerprint", func(t *testing.T) {
		t.Parallel()
		if Fingerprint("hello world") != Fingerprint("hello world") {
			t.Error("fingerprint is not deterministic")
		}
	})

	t.Run("one character difference changes fingerprint", func(t *testing.T) {
		t.Parallel()
		if Fingerprint("hello world") == Fingerprint("hello worle") {
			t.Error("expected different fingerprints")
		}
	})

	t.Run("fingerprint is hex SHA3-256", func(t *testing.T) {
		t.Parallel()
		// SHA3-256 of the empty string.
		want := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
		if got := Fingerprint(""); got != want {
			t.Errorf("Fingerprint(\"\") = %s, expected %s", got, want)
		}
	})
}

func TestDeduplicator(t *testing.T) {
	t.Parallel()

	t.Run("second register of same content is rejected", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore()
		d := New(store)
		ctx := context.Background()

		first := &model.PageRecord{URL: "http://a.example/", Content: "same text"}
		second := &model.PageRecord{URL: "http://b.example/", Content: "same text"}

		ok, err := d.RegisterIfNew(ctx, first)
		if err != nil || !ok {
			t.Fatalf("first RegisterIfNew = %v, %v; expected true, nil", ok, err)
		}
		if first.Fingerprint != Fingerprint("same text") {
			t.Errorf("fingerprint not stamped: %q", first.Fingerprint)
		}

		ok, err = d.RegisterIfNew(ctx, second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected duplicate to be rejected")
		}

		seen, err := d.Seen(ctx, first.Fingerprint)
		if err != nil || !seen {
			t.Errorf("Seen = %v, %v; expected true", seen, err)
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore()
		store.fail = errors.New("disk full")
		d := New(store)

		ok, err := d.RegisterIfNew(context.Background(), &model.PageRecord{Content: "x"})
		if err == nil {
			t.Fatal("expected error")
		}
		if ok {
			t.Error("expected false on failure")
		}
		if errors.Is(err, ErrDuplicateContent) {
			t.Error("store failure must not look like a duplicate")
		}
	})

	t.Run("concurrent registers store exactly once", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore()
		d := New(store)
		var accepted atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := &model.PageRecord{URL: fmt.Sprintf("http://example.com/%d", i), Content: "shared"}
				ok, err := d.RegisterIfNew(context.Background(), rec)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if ok {
					accepted.Add(1)
				}
			}(i)
		}
		wg.Wait()

		if got := accepted.Load(); got != 1 {
			t.Errorf("accepted = %d, expected 1", got)
		}
	})
}
