package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blastradius/internal/logging"
)

// startWatcher runs a watcher over root and returns a channel of delivered
// events plus a stop function
func startWatcher(t *testing.T, root string) (chan Event, func()) {
	t.Helper()

	events := make(chan Event, 64)
	w := New(root, []string{".ts"}, 50*time.Millisecond, logging.Discard(), func(batch []Event) {
		for _, ev := range batch {
			events <- ev
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Let the watcher finish registering before the test mutates the tree.
	time.Sleep(200 * time.Millisecond)

	return events, func() {
		cancel()
		<-done
	}
}

// waitFor drains events until one matches, or fails after the deadline
func waitFor(t *testing.T, events chan Event, match func(Event) bool, what string) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-events:
			if match(ev) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestWatcherReportsFileChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	if err := os.WriteFile(path, []byte("export const a = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events, stop := startWatcher(t, root)
	defer stop()

	if err := os.WriteFile(path, []byte("export const a = 2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, events, func(ev Event) bool {
		return ev.Kind == Changed && strings.HasSuffix(ev.Path, "a.ts")
	}, "write to a.ts")
}

func TestWatcherReportsRemoval(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ts")
	if err := os.WriteFile(path, []byte("export const a = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events, stop := startWatcher(t, root)
	defer stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	waitFor(t, events, func(ev Event) bool {
		return ev.Kind == Removed && strings.HasSuffix(ev.Path, "a.ts")
	}, "removal of a.ts")
}

func TestWatcherPicksUpNewSubdirectories(t *testing.T) {
	root := t.TempDir()

	events, stop := startWatcher(t, root)
	defer stop()

	// The subdirectory does not exist when watching starts; files created
	// under it must still surface.
	sub := filepath.Join(root, "src")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the loop a moment to register the new directory.
	time.Sleep(300 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "b.ts"), []byte("export const b = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, events, func(ev Event) bool {
		return ev.Kind == Changed && strings.HasSuffix(ev.Path, filepath.Join("src", "b.ts"))
	}, "file in a subdirectory created after startup")
}

func TestWatcherWatchesExistingSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	events, stop := startWatcher(t, root)
	defer stop()

	if err := os.WriteFile(filepath.Join(sub, "c.ts"), []byte("export const c = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, events, func(ev Event) bool {
		return ev.Kind == Changed && strings.HasSuffix(ev.Path, "c.ts")
	}, "file in a pre-existing nested directory")
}

func TestWatchableFilters(t *testing.T) {
	w := New("/w", []string{".ts", ".tsx"}, 0, logging.Discard(), nil)

	cases := []struct {
		path string
		want bool
	}{
		{"/w/src/a.ts", true},
		{"/w/src/a.tsx", true},
		{"/w/src/a.js", false},
		{"/w/node_modules/pkg/index.ts", false},
		{"/w/.git/x.ts", false},
	}
	for _, tc := range cases {
		if got := w.watchable(tc.path); got != tc.want {
			t.Errorf("watchable(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	if w.watchableDir("/w/node_modules") {
		t.Error("node_modules should not be watchable")
	}
	if w.watchableDir("/w/.hidden") {
		t.Error("hidden directories should not be watchable")
	}
	if !w.watchableDir("/w/src") {
		t.Error("plain source directory should be watchable")
	}
}
