package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ardnew/picobeat/pkg"
)

func TestBoardConsoleBeforeInit(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf)

	if b.Console() != io.Discard {
		t.Errorf("Console() before Init = %T, want io.Discard", b.Console())
	}
	if _, err := io.WriteString(b.Console(), "lost\n"); err != nil {
		t.Fatalf("write before Init: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("console wrote %q before Init", buf.String())
	}
}

func TestBoardInit(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf)

	if err := b.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := b.Init(context.Background()); !errors.Is(err, pkg.ErrAlreadyInitialized) {
		t.Errorf("second Init() error = %v, want ErrAlreadyInitialized", err)
	}

	io.WriteString(b.Console(), "tick: 0\n")
	if got := buf.String(); got != "tick: 0\n" {
		t.Errorf("console = %q, want %q", got, "tick: 0\n")
	}
}

func TestBoardInitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(nil).Init(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Init(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestBoardSleep(t *testing.T) {
	b := New(io.Discard)
	start := b.Now()
	if err := b.Sleep(context.Background(), 15*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Sleep() elapsed %v, want >= 15ms", elapsed)
	}
}
