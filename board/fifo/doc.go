// Package fifo provides a board whose serial console is a named pipe.
//
// It stands in for a USB CDC serial port when picobeat runs on a host:
// the emitting process owns a [Board], and any number of monitoring
// processes attach to it through a [Port].
//
// # Bus Layout
//
// Boards share a bus directory. Each board creates its own subdirectory on
// Init, named after a random UUID:
//
//	busDir/
//	└── board-{uuid}/
//	    ├── serial      (board → host, raw console bytes)
//	    └── connection  (board → host, 0x01 attach / 0x00 detach)
//
// The serial FIFO carries exactly what a terminal would see on a real
// board. There is no framing.
//
// # Non-blocking Output
//
// The board opens its FIFOs O_RDWR|O_NONBLOCK, so Init never waits for a
// host. Console writes give up after the board's write timeout when the
// pipe is full; the serial layer counts these as dropped lines.
//
// # Usage
//
//	b := fifo.New("/tmp/picobeat-bus")
//	b.Init(ctx)
//	defer b.Close()
//
//	// in another process
//	dir, _ := fifo.WaitBoard(ctx, "/tmp/picobeat-bus")
//	port, _ := fifo.OpenPort(dir)
//	io.Copy(os.Stdout, port.Reader(ctx))
package fifo
