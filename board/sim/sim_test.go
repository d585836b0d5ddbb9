package sim

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ardnew/picobeat/pkg"
)

func TestSleepAdvancesClock(t *testing.T) {
	b := New()
	ctx := context.Background()

	b.Sleep(ctx, 2*time.Second)
	b.Sleep(ctx, time.Second)
	b.Sleep(ctx, -time.Second)

	if got := b.Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed() = %v, want 3s", got)
	}
	if got := b.Now(); !got.Equal(Epoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v", got)
	}
	want := []time.Duration{2 * time.Second, time.Second, -time.Second}
	got := b.Sleeps()
	if len(got) != len(want) {
		t.Fatalf("Sleeps() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sleeps()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSleepHookCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []int
	b := New(WithSleepHook(func(call int, now time.Duration) {
		calls = append(calls, call)
		if call == 2 {
			cancel()
		}
	}))

	if err := b.Sleep(ctx, time.Second); err != nil {
		t.Fatalf("first Sleep() error = %v", err)
	}
	if err := b.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("second Sleep() error = %v, want context.Canceled", err)
	}
	if err := b.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("third Sleep() error = %v, want context.Canceled", err)
	}
	if len(calls) != 2 {
		t.Errorf("hook calls = %v, want [1 2]", calls)
	}
	if got := b.Elapsed(); got != 2*time.Second {
		t.Errorf("Elapsed() = %v, want 2s", got)
	}
}

func TestConsoleRecordsLines(t *testing.T) {
	b := New()
	ctx := context.Background()

	io.WriteString(b.Console(), "dropped before init\n")
	if err := b.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := b.Init(ctx); !errors.Is(err, pkg.ErrAlreadyInitialized) {
		t.Errorf("second Init() error = %v", err)
	}

	io.WriteString(b.Console(), "tick")
	b.Sleep(ctx, time.Second)
	io.WriteString(b.Console(), ": 0\ntick: 1\npartial")

	lines := b.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() = %+v, want 2 lines", lines)
	}
	if lines[0].Text != "tick: 0" || lines[0].At != time.Second {
		t.Errorf("lines[0] = %+v", lines[0])
	}
	if lines[1].Text != "tick: 1" || lines[1].At != time.Second {
		t.Errorf("lines[1] = %+v", lines[1])
	}
	if got := b.Output(); got != "tick: 0\ntick: 1\npartial" {
		t.Errorf("Output() = %q", got)
	}
}

func TestInjectedErrors(t *testing.T) {
	errInit := errors.New("usb phy dead")
	b := New(WithInitError(errInit))
	if err := b.Init(context.Background()); !errors.Is(err, errInit) {
		t.Errorf("Init() error = %v, want %v", err, errInit)
	}

	errWrite := errors.New("no host")
	b = New(WithWriteError(errWrite))
	b.Init(context.Background())
	if _, err := io.WriteString(b.Console(), "x\n"); !errors.Is(err, errWrite) {
		t.Errorf("Write() error = %v, want %v", err, errWrite)
	}
	if len(b.Records()) != 0 {
		t.Errorf("failed write was recorded")
	}
}
