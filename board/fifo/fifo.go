package fifo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/picobeat/board"
	"github.com/ardnew/picobeat/pkg"
)

// Connection signal bytes written to the connection FIFO.
const (
	sigConnect    = 0x01 // Board attached
	sigDisconnect = 0x00 // Board detached
)

// FIFO file names inside a board directory.
const (
	fifoSerial     = "serial"
	fifoConnection = "connection"
)

// DirPrefix prefixes every board directory under the bus directory.
const DirPrefix = "board-"

// DefaultWriteTimeout bounds a single console write. A write that cannot
// complete in time (no reader draining the pipe) is dropped.
const DefaultWriteTimeout = 50 * time.Millisecond

// Board implements board.HAL using named pipes (FIFOs).
// Each board creates a unique subdirectory under the bus directory so that
// several boards can share one bus.
type Board struct {
	busDir string

	// Board subdirectory (busDir/board-{uuid}/)
	boardDir string
	id       uuid.UUID

	serialWrite     *os.File
	connectionWrite *os.File

	writeTimeout time.Duration

	mutex     sync.RWMutex
	initDone  bool
	closeCh   chan struct{}
	closeOnce sync.Once
}

// New creates a FIFO board on busDir. Nothing touches the filesystem
// until Init.
func New(busDir string) *Board {
	return &Board{
		busDir:       busDir,
		writeTimeout: DefaultWriteTimeout,
		closeCh:      make(chan struct{}),
	}
}

// SetWriteTimeout changes the per-write timeout. Non-positive values
// restore DefaultWriteTimeout.
func (b *Board) SetWriteTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultWriteTimeout
	}
	b.mutex.Lock()
	b.writeTimeout = d
	b.mutex.Unlock()
}

// Init creates the board directory and its FIFOs, then signals connect.
func (b *Board) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.initDone {
		return pkg.ErrAlreadyInitialized
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("generate board id: %w", err)
	}
	b.id = id
	b.boardDir = filepath.Join(b.busDir, DirPrefix+id.String())

	if err := os.MkdirAll(b.boardDir, 0o755); err != nil {
		return fmt.Errorf("create board dir: %w", err)
	}
	if err := b.createFIFO(fifoSerial); err != nil {
		b.cleanup()
		return err
	}
	if err := b.createFIFO(fifoConnection); err != nil {
		b.cleanup()
		return err
	}

	// O_RDWR|O_NONBLOCK so that opening never waits for a reader
	if b.serialWrite, err = b.openFIFO(fifoSerial, os.O_RDWR|syscall.O_NONBLOCK); err != nil {
		b.cleanup()
		return err
	}
	if b.connectionWrite, err = b.openFIFO(fifoConnection, os.O_RDWR|syscall.O_NONBLOCK); err != nil {
		b.cleanup()
		return err
	}

	if _, err := b.connectionWrite.Write([]byte{sigConnect}); err != nil {
		pkg.LogWarn(pkg.ComponentBoard, "failed to signal connection", "error", err)
	}

	b.initDone = true
	pkg.LogInfo(pkg.ComponentBoard, "fifo board initialized",
		"busDir", b.busDir,
		"boardDir", b.boardDir,
		"id", b.id)
	return nil
}

// Sleep blocks for d, returning early if ctx is done or the board closes.
func (b *Board) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closeCh:
		return pkg.ErrClosed
	case <-timer.C:
		return nil
	}
}

// Console returns a writer onto the serial FIFO. Before Init, and after
// Close, it discards.
func (b *Board) Console() io.Writer {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if !b.initDone {
		return io.Discard
	}
	return consoleWriter{b}
}

// Close signals disconnect, closes the FIFOs and removes the board directory.
func (b *Board) Close() error {
	b.closeOnce.Do(func() {
		close(b.closeCh)
	})

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.connectionWrite != nil {
		b.connectionWrite.Write([]byte{sigDisconnect})
	}
	b.cleanup()
	if b.initDone {
		pkg.LogInfo(pkg.ComponentBoard, "fifo board closed", "id", b.id)
	}
	b.initDone = false
	return nil
}

// Dir returns the board subdirectory path (empty before Init).
func (b *Board) Dir() string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.boardDir
}

// ID returns the board's unique identifier (zero before Init).
func (b *Board) ID() uuid.UUID {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.id
}

// cleanup closes all FIFOs and removes the board directory.
// The caller must hold the mutex.
func (b *Board) cleanup() {
	if b.serialWrite != nil {
		b.serialWrite.Close()
		b.serialWrite = nil
	}
	if b.connectionWrite != nil {
		b.connectionWrite.Close()
		b.connectionWrite = nil
	}
	if b.boardDir != "" {
		os.RemoveAll(b.boardDir)
	}
}

// createFIFO creates a named pipe in the board directory.
func (b *Board) createFIFO(name string) error {
	path := filepath.Join(b.boardDir, name)
	os.Remove(path)
	if err := syscall.Mkfifo(path, 0o666); err != nil {
		return fmt.Errorf("mkfifo %s: %w", name, err)
	}
	return nil
}

// openFIFO opens a named pipe in the board directory.
func (b *Board) openFIFO(name string, flag int) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(b.boardDir, name), flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// consoleWriter writes whole buffers to the serial FIFO within the board's
// write timeout.
type consoleWriter struct {
	b *Board
}

func (w consoleWriter) Write(p []byte) (int, error) {
	w.b.mutex.RLock()
	f := w.b.serialWrite
	timeout := w.b.writeTimeout
	w.b.mutex.RUnlock()

	if f == nil {
		return 0, pkg.ErrClosed
	}

	f.SetWriteDeadline(time.Now().Add(timeout))
	written := 0
	for written < len(p) {
		n, err := f.Write(p[written:])
		written += n
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return written, fmt.Errorf("serial fifo full: %w", err)
			}
			return written, err
		}
	}
	return written, nil
}

// Compile-time interface checks
var (
	_ board.HAL    = (*Board)(nil)
	_ board.Closer = (*Board)(nil)
)
