package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrAlreadyInitialized,
		ErrNotInitialized,
		ErrAlreadyRunning,
		ErrClosed,
		ErrInvalidParameter,
		ErrUnknownVariant,
		ErrNoBoard,
		ErrMalformedLine,
		ErrCounterGap,
		ErrCounterStart,
		ErrIntervalTooShort,
		ErrWarmUpTooShort,
		ErrBannerMissing,
		ErrBannerRepeated,
		ErrHeartbeatLost,
		ErrTrailerEarly,
		ErrTickLimit,
		ErrTickAfterTrailer,
	}

	seen := make(map[string]bool)
	for _, err := range all {
		if err.Error() == "" {
			t.Errorf("sentinel %#v has empty message", err)
		}
		if seen[err.Error()] {
			t.Errorf("duplicate sentinel message %q", err.Error())
		}
		seen[err.Error()] = true

		for _, other := range all {
			if other != err && errors.Is(err, other) {
				t.Errorf("errors.Is(%v, %v) = true", err, other)
			}
		}
	}
}

func TestSentinelErrorsWrap(t *testing.T) {
	wrapped := fmt.Errorf("line 7: %w", ErrCounterGap)
	if !errors.Is(wrapped, ErrCounterGap) {
		t.Errorf("errors.Is(%v, ErrCounterGap) = false", wrapped)
	}
	if errors.Is(wrapped, ErrIntervalTooShort) {
		t.Errorf("errors.Is(%v, ErrIntervalTooShort) = true", wrapped)
	}
}
