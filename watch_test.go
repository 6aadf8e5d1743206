package yay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.yay")
	other := filepath.Join(dir, "b.yay")
	for _, f := range []string{watched, other} {
		if err := os.WriteFile(f, []byte("a: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	w, err := NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(watched, "https://example.com/c.yay"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			changes <- struct{}{}
			return nil
		})
	}()

	// writes to files which are not watched do not count.
	if err := os.WriteFile(other, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
		t.Fatal("change reported for an unwatched file")
	case <-time.After(200 * time.Millisecond):
	}

	// a burst of writes is reported once.
	for i := range 3 {
		if err := os.WriteFile(watched, []byte{'a', ':', ' ', byte('2' + i), '\n'}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-changes:
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
	select {
	case <-changes:
		t.Error("burst reported more than once")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch: %v", err)
	}
}

func TestWatcherCallbackError(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.yay")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(f); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error { return stop })
	}()
	if err := os.WriteFile(f, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := <-done; !errors.Is(err, stop) {
		t.Errorf("got %v, want %v", err, stop)
	}
}
