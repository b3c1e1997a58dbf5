package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Millis returns the current time as unix milliseconds, the resolution of
// every entry timestamp.
func Millis() int64 { return NowFunc().UnixMilli() }

// Time converts a millisecond stamp back to time.Time. Zero means "not
// reached" and maps to the zero time.
func Time(millis int64) time.Time {
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}
