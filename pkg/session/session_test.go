package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/flowprof/pkg/surface"
)

func testState() surface.State {
	return surface.State{Selected: "1", Expanded: []string{"1"}, Tab: surface.TabGraph}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{"memory": NewMemoryStore(), "file": fs}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess := New(testState(), time.Hour)
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := store.Get(ctx, sess.ID)
			if err != nil || got == nil {
				t.Fatalf("Get() = %v, %v", got, err)
			}
			if !reflect.DeepEqual(got.State, sess.State) {
				t.Errorf("State = %+v, want %+v", got.State, sess.State)
			}

			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if got, _ := store.Get(ctx, sess.ID); got != nil {
				t.Error("session still present after Delete")
			}
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			old := New(testState(), -time.Minute)
			live := New(testState(), time.Hour)
			_ = store.Set(ctx, old)
			_ = store.Set(ctx, live)

			if got, err := store.Get(ctx, old.ID); got != nil || err != nil {
				t.Errorf("Get(expired) = %v, %v", got, err)
			}
			if err := store.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup() error = %v", err)
			}
			if got, _ := store.Get(ctx, live.ID); got == nil {
				t.Error("Cleanup removed a live session")
			}
		})
	}
}

func TestStore_RejectsBadID(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess := New(testState(), time.Hour)
			sess.ID = "../../etc/passwd"
			if err := store.Set(ctx, sess); !errors.Is(err, ErrInvalidID) {
				t.Errorf("Set() error = %v, want ErrInvalidID", err)
			}
			if got, err := store.Get(ctx, sess.ID); got != nil || err != nil {
				t.Errorf("Get() = %v, %v", got, err)
			}
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	sess := New(testState(), time.Hour)
	if err := fs.Set(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, sess.ID+".json")); err != nil {
		t.Errorf("session file missing: %v", err)
	}
	if fs.Path() != dir {
		t.Errorf("Path() = %q, want %q", fs.Path(), dir)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := New(testState(), time.Hour)
	_ = store.Set(ctx, sess)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, _ := store.Get(ctx, sess.ID)
			s.Touch(s.State, time.Hour)
			_ = store.Set(ctx, s)
			_ = store.Set(ctx, New(testState(), time.Hour))
		}()
	}
	wg.Wait()
	if store.Len() != 17 {
		t.Errorf("Len() = %d, want 17", store.Len())
	}
}

func TestTouch(t *testing.T) {
	sess := New(surface.State{}, -time.Second)
	if !sess.IsExpired() {
		t.Fatal("session with negative ttl not expired")
	}
	sess.Touch(testState(), time.Hour)
	if sess.IsExpired() || sess.State.Selected != "1" {
		t.Errorf("Touch() = %+v", sess)
	}
}
