// Package monitor is the host side of the heartbeat: it reads the line
// stream a board prints and checks, as lines arrive, that the heartbeat
// behaves.
//
// # Checked Properties
//
//   - the first counter is 0 and each next one is the previous plus one,
//     wrapping at the variant's counter width
//   - consecutive ticks are at least one interval apart
//   - the first tick comes at least one warm-up delay after the board
//     started (when the start time is known)
//   - the banner, if the variant has one, appears exactly once and before
//     the first tick
//   - a tick always arrives within one interval plus a grace period,
//     until a limited run prints its trailer
//   - a limited run prints exactly its limit of ticks, then the trailer,
//     and nothing ticks after it
//
// Every timing bound is relaxed by a jitter allowance. Violations unwrap
// to the sentinels in package pkg.
//
// # Pieces
//
// [Parser] classifies a line, [Checker] holds the properties over a
// sequence of observations, and [Monitor] drives both from an io.Reader
// with a liveness watchdog, callbacks and OpenTelemetry instruments:
//
//	picobeat.ticks       counter
//	picobeat.violations  counter, attribute kind
//	picobeat.interval    histogram, seconds
package monitor
