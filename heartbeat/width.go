package heartbeat

import (
	"math"
	"strconv"
)

// Width is the integer type the firmware keeps its counter in. It decides
// how the counter is displayed once it outgrows that type.
type Width uint8

// Counter widths.
const (
	WidthUnbounded Width = iota // MicroPython int; displayed up to math.MaxInt64
	WidthInt32                  // C int on ARM: wraps to math.MinInt32
	WidthUint32                 // C unsigned long on ARM: wraps to 0
)

// String returns the C-like name of the width.
func (w Width) String() string {
	switch w {
	case WidthInt32:
		return "int32"
	case WidthUint32:
		return "uint32"
	default:
		return "unbounded"
	}
}

// Value returns the counter as the firmware would hold it after seq
// increments from zero.
//
// WidthUnbounded saturates at math.MaxInt64: after 2^63 ticks (about
// 292 billion years at one per second) the displayed counter stops
// increasing.
func (w Width) Value(seq uint64) int64 {
	switch w {
	case WidthInt32:
		return int64(int32(uint32(seq)))
	case WidthUint32:
		return int64(uint32(seq))
	default:
		if seq > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(seq)
	}
}

// Format renders the counter for seq in decimal.
func (w Width) Format(seq uint64) string {
	return strconv.FormatInt(w.Value(seq), 10)
}

// Successor returns the value that follows v, wrapping like the firmware.
func (w Width) Successor(v int64) int64 {
	switch w {
	case WidthInt32:
		if v == math.MaxInt32 {
			return math.MinInt32
		}
	case WidthUint32:
		if v == math.MaxUint32 {
			return 0
		}
	}
	return v + 1
}

// Contains reports whether v is representable in the width.
func (w Width) Contains(v int64) bool {
	switch w {
	case WidthInt32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case WidthUint32:
		return v >= 0 && v <= math.MaxUint32
	default:
		return v >= 0
	}
}
