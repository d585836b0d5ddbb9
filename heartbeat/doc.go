// Package heartbeat implements the heartbeat emitter: a board smoke test
// that initializes the serial channel, waits for the host terminal, then
// prints an incrementing counter at a fixed interval forever.
//
// # Lifecycle
//
//	idle → initializing → ready → warming-up → running
//
// [Emitter.Initialize] runs once. [Emitter.WarmUp] sleeps so that a freshly
// enumerated USB serial device can be opened by the host before anything
// is printed. [Emitter.RunForever] writes the banner (if the variant has
// one) and then loops: emit, increment, sleep. [Emitter.Run] does all
// three.
//
// On hardware the loop has no exit. On a host, cancelling the context
// stops it (state stopped), and variants with a tick limit end on their
// own after writing a trailer (state finished).
//
// # Variants
//
// The two Pico SDK sketches are kept as separate variants:
//
//	a:  L00 Pico SDK smoke test tick 0      (int counter, no banner)
//	b:  L00 Pico SDK hello                  (banner, once)
//	    tick: 0                             (unsigned long counter)
//
// Both wait 2s before the first line and 1s between lines. Two MicroPython
// variants are also available; see [Variants].
//
// # Counter
//
// The counter is a sequence number owned by the loop. Its printed form
// follows the variant's [Width], so an int counter goes negative after
// 2147483647 and an unsigned long one returns to 0 after 4294967295, as
// they would on the RP2040. The MicroPython variants' unbounded counter is
// printed up to math.MaxInt64 and stays there.
//
// # Failures
//
// There are none at runtime. A board whose serial channel fails to
// initialize, or a console nobody reads, just loses output; the loop keeps
// its pace and the serial port counts the dropped lines.
package heartbeat
