// Package serial is the line-oriented output channel of a board.
//
// A [Port] turns a board console into a fire-and-forget line writer: each
// line goes out in one write, and failures (no host attached, pipe full,
// USB not enumerated) are counted in [Stats] instead of being returned.
// This matches a firmware stdio stream, where printf has no one to report
// to.
//
// [LineCoding] describes the nominal terminal settings (115200 8N1 by
// default) in the notation terminal programs use.
package serial
