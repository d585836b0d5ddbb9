package pkg

import "errors"

// Lifecycle errors.
var (
	// ErrAlreadyInitialized indicates a one-time setup step ran twice.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrNotInitialized indicates an operation ran before setup.
	ErrNotInitialized = errors.New("not initialized")

	// ErrAlreadyRunning indicates the emitter loop is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrClosed indicates the board or channel has been closed.
	ErrClosed = errors.New("closed")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownVariant indicates a variant name that is not registered.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrNoBoard indicates no board was found on the bus.
	ErrNoBoard = errors.New("no board present")
)

// Line protocol errors reported by the monitor.
var (
	// ErrMalformedLine indicates a line that matches no form of the variant.
	ErrMalformedLine = errors.New("malformed line")

	// ErrCounterGap indicates a counter that is not the previous value plus one.
	ErrCounterGap = errors.New("counter gap")

	// ErrCounterStart indicates the first counter observed was not zero.
	ErrCounterStart = errors.New("counter did not start at zero")

	// ErrIntervalTooShort indicates two ticks closer than the loop interval.
	ErrIntervalTooShort = errors.New("interval too short")

	// ErrWarmUpTooShort indicates the first tick arrived before the warm-up delay elapsed.
	ErrWarmUpTooShort = errors.New("warm-up too short")

	// ErrBannerMissing indicates a tick arrived before the variant's banner.
	ErrBannerMissing = errors.New("banner missing")

	// ErrBannerRepeated indicates the banner was printed more than once.
	ErrBannerRepeated = errors.New("banner repeated")

	// ErrHeartbeatLost indicates no tick arrived within the liveness window.
	ErrHeartbeatLost = errors.New("heartbeat lost")

	// ErrTrailerEarly indicates the trailer arrived before the variant's tick limit.
	ErrTrailerEarly = errors.New("trailer before tick limit")

	// ErrTickLimit indicates a tick beyond the variant's tick limit.
	ErrTickLimit = errors.New("tick beyond limit")

	// ErrTickAfterTrailer indicates a tick after the trailer.
	ErrTickAfterTrailer = errors.New("tick after trailer")
)
