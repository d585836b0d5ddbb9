package monitor

import (
	"errors"
	"testing"

	"github.com/ardnew/picobeat/heartbeat"
	"github.com/ardnew/picobeat/pkg"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		variant     heartbeat.Variant
		line        string
		wantKind    Kind
		wantCounter int64
		wantErr     bool
	}{
		{"a tick", heartbeat.VariantA, "L00 Pico SDK smoke test tick 0", KindTick, 0, false},
		{"a tick crlf", heartbeat.VariantA, "L00 Pico SDK smoke test tick 12\r", KindTick, 12, false},
		{"a negative after wrap", heartbeat.VariantA, "L00 Pico SDK smoke test tick -2147483648", KindTick, -2147483648, false},
		{"a out of range", heartbeat.VariantA, "L00 Pico SDK smoke test tick 2147483648", KindUnknown, 0, true},
		{"b banner", heartbeat.VariantB, "L00 Pico SDK hello", KindBanner, 0, false},
		{"b tick", heartbeat.VariantB, "tick: 7", KindTick, 7, false},
		{"b max", heartbeat.VariantB, "tick: 4294967295", KindTick, 4294967295, false},
		{"b negative", heartbeat.VariantB, "tick: -1", KindUnknown, 0, true},
		{"b wrong label", heartbeat.VariantB, "tick 7", KindUnknown, 0, true},
		{"b no counter", heartbeat.VariantB, "tick: ", KindUnknown, 0, true},
		{"b leading zero", heartbeat.VariantB, "tick: 07", KindUnknown, 0, true},
		{"b plus sign", heartbeat.VariantB, "tick: +7", KindUnknown, 0, true},
		{"b trailing junk", heartbeat.VariantB, "tick: 7x", KindUnknown, 0, true},
		{"b negative zero", heartbeat.VariantB, "tick: -0", KindUnknown, 0, true},
		{"a negative zero", heartbeat.VariantA, "L00 Pico SDK smoke test tick -0", KindUnknown, 0, true},
		{"a negative leading zero", heartbeat.VariantA, "L00 Pico SDK smoke test tick -01", KindUnknown, 0, true},
		{"a negative", heartbeat.VariantA, "L00 Pico SDK smoke test tick -1", KindTick, -1, false},
		{"a zero", heartbeat.VariantA, "L00 Pico SDK smoke test tick 0", KindTick, 0, false},
		{"mp negative zero", heartbeat.VariantMicroPythonREPL, "tick -0", KindUnknown, 0, true},
		{"mp leading zero", heartbeat.VariantMicroPythonREPL, "tick 00", KindUnknown, 0, true},
		{"a sign only", heartbeat.VariantA, "L00 Pico SDK smoke test tick -", KindUnknown, 0, true},
		{"a line on b", heartbeat.VariantB, "L00 Pico SDK smoke test tick 0", KindUnknown, 0, true},
		{"mp trailer", heartbeat.VariantMicroPythonHello, "done", KindTrailer, 0, false},
		{"mp second banner", heartbeat.VariantMicroPythonHello, "If you can read this, upload + serial output are working.", KindBanner, 0, false},
		{"mp repl tick", heartbeat.VariantMicroPythonREPL, "tick 3", KindTick, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := NewParser(tt.variant).Parse(tt.line)
			if tt.wantErr {
				if !errors.Is(err, pkg.ErrMalformedLine) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformedLine", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.line, err)
			}
			if obs.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", obs.Kind, tt.wantKind)
			}
			if obs.Counter != tt.wantCounter {
				t.Errorf("Counter = %d, want %d", obs.Counter, tt.wantCounter)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindUnknown: "unknown",
		KindBanner:  "banner",
		KindTick:    "tick",
		KindTrailer: "trailer",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
