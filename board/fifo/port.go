package fifo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ardnew/picobeat/pkg"
)

// pollInterval is how often blocked reads wake up to check for cancellation.
const pollInterval = 100 * time.Millisecond

// FindBoards returns the board directories currently on the bus, oldest
// first.
func FindBoards(busDir string) ([]string, error) {
	entries, err := os.ReadDir(busDir)
	if err != nil {
		return nil, fmt.Errorf("read bus dir: %w", err)
	}

	type found struct {
		dir string
		mod time.Time
	}
	var boards []found
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), DirPrefix) {
			continue
		}
		dir := filepath.Join(busDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, fifoSerial)); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		boards = append(boards, found{dir, info.ModTime()})
	}

	sort.Slice(boards, func(i, j int) bool {
		return boards[i].mod.Before(boards[j].mod)
	})
	dirs := make([]string, len(boards))
	for i, f := range boards {
		dirs[i] = f.dir
	}
	return dirs, nil
}

// WaitBoard polls busDir until a board appears or ctx is done.
func WaitBoard(ctx context.Context, busDir string) (string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		dirs, err := FindBoards(busDir)
		if err == nil && len(dirs) > 0 {
			return dirs[0], nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("wait for board on %s: %w: %w", busDir, pkg.ErrNoBoard, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Port is the host end of a FIFO board's serial channel.
type Port struct {
	dir     string
	started time.Time

	serialRead     *os.File
	connectionRead *os.File

	mutex     sync.Mutex
	connected bool
}

// OpenPort opens the read ends of the board in dir.
func OpenPort(dir string) (*Port, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat board dir: %w", err)
	}

	p := &Port{dir: dir, started: info.ModTime()}
	p.serialRead, err = os.OpenFile(filepath.Join(dir, fifoSerial), os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fifoSerial, err)
	}
	p.connectionRead, err = os.OpenFile(filepath.Join(dir, fifoConnection), os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		p.serialRead.Close()
		return nil, fmt.Errorf("open %s: %w", fifoConnection, err)
	}

	pkg.LogDebug(pkg.ComponentBoard, "fifo port opened", "boardDir", dir)
	return p, nil
}

// Dir returns the board directory this port reads from.
func (p *Port) Dir() string {
	return p.dir
}

// Started returns the time the board directory was populated, which is
// when the board ran Init.
func (p *Port) Started() time.Time {
	return p.started
}

// Connected drains pending connection signals and reports the latest one.
func (p *Port) Connected() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var sig [16]byte
	p.connectionRead.SetReadDeadline(time.Now().Add(time.Millisecond))
	n, _ := p.connectionRead.Read(sig[:])
	if n > 0 {
		p.connected = sig[n-1] == sigConnect
	}
	return p.connected
}

// Reader returns an io.Reader over the serial channel bound to ctx.
// Reads block until data arrives, the board closes (io.EOF) or ctx is
// done (ctx.Err()).
func (p *Port) Reader(ctx context.Context) io.Reader {
	return portReader{p: p, ctx: ctx}
}

// Close closes the read ends.
func (p *Port) Close() error {
	p.serialRead.Close()
	p.connectionRead.Close()
	return nil
}

type portReader struct {
	p   *Port
	ctx context.Context
}

func (r portReader) Read(buf []byte) (int, error) {
	for {
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}
		r.p.serialRead.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := r.p.serialRead.Read(buf)
		if n > 0 {
			return n, nil
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			// io.EOF once every writer has gone
			return 0, err
		}
	}
}
