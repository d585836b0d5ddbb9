// Package pkg provides shared utilities for picobeat.
//
// This package contains the pieces every other package leans on:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors for lifecycle misuse and line protocol violations
//   - Component identifiers for log filtering
//
// # Logging
//
// Logs go to os.Stderr and are tagged with the emitting component:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentHeartbeat, "tick", "counter", 3)
//
// The serial console carries heartbeat lines only; nothing in this
// package writes to it.
//
// # Errors
//
// Errors are sentinel values, wrapped with %w by callers:
//
//	if errors.Is(err, pkg.ErrCounterGap) {
//	    // the emitter skipped or repeated a value
//	}
package pkg
