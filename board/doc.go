// Package board defines the hardware-abstraction interface between the
// heartbeat emitter and whatever it runs on.
//
// The emitter needs very little from a board: one-time initialization of
// the serial output channel, a blocking delay, and the console writer that
// initialization produced. Everything else (clock trees, USB enumeration,
// pin muxing) stays behind the [HAL] interface.
//
// # Implementations
//
//   - [github.com/ardnew/picobeat/board/host]: a regular process; the
//     console is any [io.Writer], usually os.Stdout
//   - [github.com/ardnew/picobeat/board/fifo]: a virtual serial port backed
//     by a named pipe under a shared bus directory
//   - [github.com/ardnew/picobeat/board/sim]: a virtual clock that records
//     every console write with its timestamp, for tests
//
// The TinyGo firmware in examples/tinygo/rp2040 implements HAL on top of
// machine.Serial.
//
// # Implementing a HAL
//
//	type myBoard struct{ uart io.Writer }
//
//	func (b *myBoard) Init(ctx context.Context) error { return nil }
//
//	func (b *myBoard) Sleep(ctx context.Context, d time.Duration) error {
//	    return board.Sleep(ctx, d)
//	}
//
//	func (b *myBoard) Console() io.Writer { return b.uart }
package board
