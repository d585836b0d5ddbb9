// Package config loads picobeat's host-side settings.
//
// Settings come from an optional TOML or YAML file, chosen by extension,
// with command-line flags applied on top by the caller. Durations are
// written as Go duration strings:
//
//	variant = "b"
//	board = "fifo"
//	bus_dir = "/tmp/picobeat-bus"
//	warm_up = "2s"
//	interval = "1s"
//
//	[log]
//	level = "info"
//	format = "json"
//
//	[monitor]
//	jitter = "50ms"
//	grace = "2s"
//	late_attach = true
//
// Fields left out of the file keep their [Default] values.
package config
