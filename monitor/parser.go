package monitor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/pkg"
)

// Kind classifies a received line.
type Kind uint8

// Line kinds.
const (
	KindUnknown Kind = iota
	KindBanner
	KindTick
	KindTrailer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBanner:
		return "banner"
	case KindTick:
		return "tick"
	case KindTrailer:
		return "trailer"
	default:
		return "unknown"
	}
}

// Observation is one received line, classified and timestamped.
type Observation struct {
	Index   int       // Zero-based line number in the stream
	Line    string    // Line text without terminator
	Kind    Kind
	Counter int64     // Counter value, for KindTick
	At      time.Time // When the line was received
}

// Parser classifies lines of one variant.
type Parser struct {
	variant heartbeat.Variant
}

// NewParser returns a parser for v.
func NewParser(v heartbeat.Variant) *Parser {
	return &Parser{variant: v}
}

// Parse classifies line. A trailing carriage return (terminals that send
// CRLF) is ignored. Lines that are neither banner, trailer nor a tick with
// an in-range decimal counter yield pkg.ErrMalformedLine.
func (p *Parser) Parse(line string) (Observation, error) {
	line = strings.TrimSuffix(line, "\r")
	obs := Observation{Line: line}

	v := p.variant
	switch {
	case slices.Contains(v.Banner, line):
		obs.Kind = KindBanner
		return obs, nil
	case slices.Contains(v.Trailer, line):
		obs.Kind = KindTrailer
		return obs, nil
	}

	digits, ok := strings.CutPrefix(line, v.Prefix)
	if !ok || digits == "" {
		return obs, fmt.Errorf("%q: %w", line, pkg.ErrMalformedLine)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || !v.Width.Contains(n) {
		return obs, fmt.Errorf("%q: counter out of %s range: %w", line, v.Width, pkg.ErrMalformedLine)
	}
	// printf and print never emit a sign on zero, a plus or leading zeros
	if strconv.FormatInt(n, 10) != digits {
		return obs, fmt.Errorf("%q: counter not canonical decimal: %w", line, pkg.ErrMalformedLine)
	}

	obs.Kind = KindTick
	obs.Counter = n
	return obs, nil
}
