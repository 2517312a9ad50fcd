package session

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/tree"
)

func TestNew(t *testing.T) {
	a, err := New(time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, _ := New(time.Hour)
	if a.ID == b.ID {
		t.Error("session IDs should be unique")
	}
	if err := errs.ValidateSessionID(a.ID); err != nil {
		t.Errorf("generated ID invalid: %v", err)
	}
	if a.IsExpired() {
		t.Error("new session should not be expired")
	}
}

func TestNamedID(t *testing.T) {
	if NamedID("explore") != NamedID("explore") {
		t.Error("NamedID should be stable")
	}
	if NamedID("explore") == NamedID("other") {
		t.Error("NamedID should differ by name")
	}
	if err := errs.ValidateSessionID(NamedID("explore")); err != nil {
		t.Errorf("NamedID invalid: %v", err)
	}
}

func TestCompact(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"pair cancels", []string{"a", "a"}, []string{}},
		{"odd survives once", []string{"a", "b", "a", "a"}, []string{"a", "b"}},
		{"order of first occurrence", []string{"b", "a", "b", "b"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Toggles: append([]string(nil), tt.in...)}
			s.Compact()
			if len(s.Toggles) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(s.Toggles, tt.want) {
				t.Errorf("Compact(%v) = %v, want %v", tt.in, s.Toggles, tt.want)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	build := func() *tree.Tree {
		tr, err := breakdown.Tree(breakdown.DefaultInputs())
		if err != nil {
			t.Fatal(err)
		}
		return tr
	}

	s := NewNamed("test", time.Hour)
	s.Record(breakdown.IDAwake)
	s.Record(breakdown.IDWork)
	s.Record("gone")
	s.Record(breakdown.IDTotal)
	s.Record(breakdown.IDTotal)

	tr := build()
	skipped := s.Replay(tr)
	if !reflect.DeepEqual(skipped, []string{"gone"}) {
		t.Errorf("skipped = %v", skipped)
	}
	want := []string{breakdown.IDTotal, breakdown.IDAwake, breakdown.IDWork}
	if got := tr.ExpandedIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandedIDs() = %v, want %v", got, want)
	}

	// Compaction must not change the replayed state.
	s.Compact()
	again := build()
	s.Replay(again)
	if !reflect.DeepEqual(again.ExpandedIDs(), want) {
		t.Errorf("after Compact ExpandedIDs() = %v", again.ExpandedIDs())
	}
}

func TestRecordCompactsLongHistory(t *testing.T) {
	s := NewNamed("long", time.Hour)
	for i := 0; i < maxToggles+1; i++ {
		s.Record("awake")
	}
	if len(s.Toggles) > 1 {
		t.Errorf("history not compacted: %d entries", len(s.Toggles))
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	sess, err := New(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sess.Record("awake")

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got != nil {
		t.Fatalf("Get(before Set) = %v, %v", got, err)
	}

	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if !reflect.DeepEqual(got.Toggles, []string{"awake"}) {
		t.Errorf("Toggles = %v", got.Toggles)
	}

	// Stored copies are independent of the caller's value.
	got.Record("work")
	again, _ := store.Get(ctx, sess.ID)
	if len(again.Toggles) != 1 {
		t.Errorf("store shares state with caller: %v", again.Toggles)
	}

	expired, _ := New(-time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set(expired): %v", err)
	}
	if got, _ := store.Get(ctx, expired.ID); got != nil {
		t.Error("expired session returned")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session survived Delete")
	}

	_, err = Require(ctx, store, sess.ID)
	if !errors.Is(err, ErrNotFound) || !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("Require(missing) = %v", err)
	}
}

func testSwap(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	sess, err := New(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Two writers read version 0.
	first, _ := store.Get(ctx, sess.ID)
	second, _ := store.Get(ctx, sess.ID)

	first.Record("awake")
	if err := store.Swap(ctx, first, 0); err != nil {
		t.Fatalf("Swap(first): %v", err)
	}
	if first.Version != 1 {
		t.Errorf("Version after Swap = %d, want 1", first.Version)
	}

	second.Record("work")
	err = store.Swap(ctx, second, 0)
	if !errors.Is(err, ErrConflict) || !errs.Is(err, errs.ErrCodeConflict) {
		t.Fatalf("Swap(stale) = %v, want CONFLICT", err)
	}
	if second.Version != 0 {
		t.Errorf("failed Swap changed Version to %d", second.Version)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Version != 1 || !reflect.DeepEqual(got.Toggles, []string{"awake"}) {
		t.Errorf("stored = version %d toggles %v", got.Version, got.Toggles)
	}

	fresh := NewNamed("swap-missing", time.Hour)
	if err := store.Swap(ctx, fresh, 0); err != nil {
		t.Errorf("Swap(missing) = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStore(t, store)
	testSwap(t, store)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()
	testStore(t, store)
	testSwap(t, store)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "../../etc/passwd"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Get(traversal) = %v", err)
	}
	if err := store.Set(ctx, &Session{ID: "x"}); err == nil {
		t.Error("Set with bad ID should fail")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	old := NewNamed("old", time.Hour)
	if err := store.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	old.ExpiresAt = time.Now().Add(-time.Hour)
	if err := store.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Cleanup left %d files", len(entries))
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"}); !errs.Is(err, errs.ErrCodeNetwork) {
		t.Errorf("NewRedisStore(unreachable) = %v, want NETWORK_ERROR", err)
	}
}
