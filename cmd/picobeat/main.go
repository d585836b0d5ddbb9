// Command picobeat runs the heartbeat emitter on a host board and checks
// heartbeat streams from host or firmware boards.
//
//	picobeat emit --variant b --board fifo --bus /tmp/picobeat-bus
//	picobeat monitor --variant b --bus /tmp/picobeat-bus
//	picobeat variants
package main

import (
	"errors"
	"os"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitUsage)
	}
}
