package fifo

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/picobeat/pkg"
)

func newTestBoard(t *testing.T) (*Board, string) {
	t.Helper()
	bus := t.TempDir()
	b := New(bus)
	if err := b.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, bus
}

func TestBoardInitCreatesLayout(t *testing.T) {
	b, bus := newTestBoard(t)

	dir := b.Dir()
	if filepath.Dir(dir) != bus {
		t.Errorf("Dir() = %q, want parent %q", dir, bus)
	}
	if want := DirPrefix + b.ID().String(); filepath.Base(dir) != want {
		t.Errorf("Dir() base = %q, want %q", filepath.Base(dir), want)
	}
	for _, name := range []string{fifoSerial, fifoConnection} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Mode()&os.ModeNamedPipe == 0 {
			t.Errorf("%s mode = %v, want named pipe", name, info.Mode())
		}
	}

	if err := b.Init(context.Background()); !errors.Is(err, pkg.ErrAlreadyInitialized) {
		t.Errorf("second Init() error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestBoardCloseRemovesDir(t *testing.T) {
	b, bus := newTestBoard(t)
	dir := b.Dir()

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("board dir still present after Close: %v", err)
	}
	dirs, err := FindBoards(bus)
	if err != nil {
		t.Fatalf("FindBoards() error = %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("FindBoards() = %v after Close", dirs)
	}
	if err := b.Sleep(context.Background(), time.Hour); !errors.Is(err, pkg.ErrClosed) {
		t.Errorf("Sleep() after Close error = %v, want ErrClosed", err)
	}
}

func TestConsoleBeforeInitDiscards(t *testing.T) {
	b := New(t.TempDir())
	if b.Console() != io.Discard {
		t.Errorf("Console() before Init = %T, want io.Discard", b.Console())
	}
	n, err := io.WriteString(b.Console(), "tick: 0\n")
	if err != nil || n != 8 {
		t.Errorf("write before Init = %d, %v", n, err)
	}
}

func TestPortRoundTrip(t *testing.T) {
	b, bus := newTestBoard(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dir, err := WaitBoard(ctx, bus)
	if err != nil {
		t.Fatalf("WaitBoard() error = %v", err)
	}
	if dir != b.Dir() {
		t.Errorf("WaitBoard() = %q, want %q", dir, b.Dir())
	}

	port, err := OpenPort(dir)
	if err != nil {
		t.Fatalf("OpenPort() error = %v", err)
	}
	defer port.Close()

	if !port.Connected() {
		t.Error("Connected() = false after board Init")
	}
	if port.Started().IsZero() {
		t.Error("Started() is zero")
	}

	want := []string{"L00 Pico SDK hello", "tick: 0", "tick: 1"}
	for _, line := range want {
		if _, err := io.WriteString(b.Console(), line+"\n"); err != nil {
			t.Fatalf("console write: %v", err)
		}
	}

	scanner := bufio.NewScanner(port.Reader(ctx))
	for i, line := range want {
		if !scanner.Scan() {
			t.Fatalf("line %d: scan stopped: %v", i, scanner.Err())
		}
		if got := scanner.Text(); got != line {
			t.Errorf("line %d = %q, want %q", i, got, line)
		}
	}

	b.Close()
	if scanner.Scan() {
		t.Errorf("unexpected line after Close: %q", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("scanner error after Close = %v, want clean EOF", err)
	}
	if port.Connected() {
		t.Error("Connected() = true after board Close")
	}
}

func TestPortReaderCancelled(t *testing.T) {
	b, _ := newTestBoard(t)

	port, err := OpenPort(b.Dir())
	if err != nil {
		t.Fatalf("OpenPort() error = %v", err)
	}
	defer port.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	var buf [64]byte
	_, err = port.Reader(ctx).Read(buf[:])
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}

func TestConsoleDropsWhenNobodyReads(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetWriteTimeout(10 * time.Millisecond)

	// Larger than any default pipe buffer.
	big := bytes.Repeat([]byte("tick: 0\n"), 1<<17)
	n, err := b.Console().Write(big)
	if err == nil {
		t.Fatalf("Write(%d bytes) succeeded with no reader", len(big))
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("Write() error = %v, want deadline exceeded", err)
	}
	if n >= len(big) {
		t.Errorf("Write() n = %d, want partial", n)
	}
}

func TestWaitBoardTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err := WaitBoard(ctx, t.TempDir())
	if !errors.Is(err, pkg.ErrNoBoard) {
		t.Errorf("WaitBoard() error = %v, want ErrNoBoard", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitBoard() error = %v, want DeadlineExceeded", err)
	}
}

func TestFindBoardsIgnoresOtherEntries(t *testing.T) {
	bus := t.TempDir()
	os.Mkdir(filepath.Join(bus, "device-1234"), 0o755)
	os.Mkdir(filepath.Join(bus, DirPrefix+"empty"), 0o755)
	os.WriteFile(filepath.Join(bus, DirPrefix+"file"), nil, 0o644)

	dirs, err := FindBoards(bus)
	if err != nil {
		t.Fatalf("FindBoards() error = %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("FindBoards() = %v, want none", dirs)
	}

	if _, err := FindBoards(filepath.Join(bus, "missing")); err == nil ||
		!strings.Contains(err.Error(), "read bus dir") {
		t.Errorf("FindBoards(missing) error = %v", err)
	}
}
