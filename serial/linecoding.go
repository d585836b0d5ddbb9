package serial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/picobeat/pkg"
)

// Stop bit values.
const (
	StopBits1   = 0 // 1 stop bit
	StopBits1_5 = 1 // 1.5 stop bits
	StopBits2   = 2 // 2 stop bits
)

// Parity values.
const (
	ParityNone  = 0
	ParityOdd   = 1
	ParityEven  = 2
	ParityMark  = 3
	ParitySpace = 4
)

// LineCoding is the serial line configuration a host terminal would use.
//
// Over USB CDC the baud rate is nominal (the host may pick any value and
// the data still arrives), so picobeat treats it as metadata that is shown
// to the user, not as something that changes behavior.
type LineCoding struct {
	BaudRate   uint32 // Data terminal rate
	CharFormat uint8  // Stop bits: 0=1, 1=1.5, 2=2
	ParityType uint8  // Parity: 0=None, 1=Odd, 2=Even, 3=Mark, 4=Space
	DataBits   uint8  // Data bits: 5, 6, 7, 8, or 16
}

// DefaultLineCoding is 115200 8N1, the SDK's stdio default.
var DefaultLineCoding = LineCoding{
	BaudRate:   115200,
	CharFormat: StopBits1,
	ParityType: ParityNone,
	DataBits:   8,
}

var parityLetters = [...]byte{'N', 'O', 'E', 'M', 'S'}

var stopBitNames = [...]string{"1", "1.5", "2"}

// String formats the coding in the conventional "115200 8N1" notation.
func (lc LineCoding) String() string {
	parity := byte('?')
	if int(lc.ParityType) < len(parityLetters) {
		parity = parityLetters[lc.ParityType]
	}
	stop := "?"
	if int(lc.CharFormat) < len(stopBitNames) {
		stop = stopBitNames[lc.CharFormat]
	}
	return fmt.Sprintf("%d %d%c%s", lc.BaudRate, lc.DataBits, parity, stop)
}

// ParseLineCoding parses the "115200 8N1" notation produced by String.
func ParseLineCoding(s string) (LineCoding, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return LineCoding{}, fmt.Errorf("line coding %q: %w", s, pkg.ErrInvalidParameter)
	}

	baud, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || baud == 0 {
		return LineCoding{}, fmt.Errorf("line coding %q: baud: %w", s, pkg.ErrInvalidParameter)
	}

	frame := strings.ToUpper(fields[1])
	if len(frame) < 3 {
		return LineCoding{}, fmt.Errorf("line coding %q: frame: %w", s, pkg.ErrInvalidParameter)
	}

	lc := LineCoding{BaudRate: uint32(baud)}

	// Data bits may be one or two digits (16).
	i := 0
	for i < len(frame) && frame[i] >= '0' && frame[i] <= '9' {
		i++
	}
	bits, err := strconv.ParseUint(frame[:i], 10, 8)
	if err != nil {
		return LineCoding{}, fmt.Errorf("line coding %q: data bits: %w", s, pkg.ErrInvalidParameter)
	}
	switch bits {
	case 5, 6, 7, 8, 16:
		lc.DataBits = uint8(bits)
	default:
		return LineCoding{}, fmt.Errorf("line coding %q: data bits: %w", s, pkg.ErrInvalidParameter)
	}

	if i >= len(frame) {
		return LineCoding{}, fmt.Errorf("line coding %q: parity: %w", s, pkg.ErrInvalidParameter)
	}
	parity := -1
	for p, c := range parityLetters {
		if frame[i] == c {
			parity = p
		}
	}
	if parity < 0 {
		return LineCoding{}, fmt.Errorf("line coding %q: parity: %w", s, pkg.ErrInvalidParameter)
	}
	lc.ParityType = uint8(parity)

	stop := -1
	for c, name := range stopBitNames {
		if frame[i+1:] == name {
			stop = c
		}
	}
	if stop < 0 {
		return LineCoding{}, fmt.Errorf("line coding %q: stop bits: %w", s, pkg.ErrInvalidParameter)
	}
	lc.CharFormat = uint8(stop)

	return lc, nil
}
