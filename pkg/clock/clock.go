package clock

import (
	"time"
)

// Clock is an interface around some of the standard library functions
// that provide time handling. It has been added to aid unit testing of
// code that measures durations or runs periodic jobs.
type Clock interface {
	// Return the current time of day. Equivalent to time.Now().
	Now() time.Time

	// Create a channel that will publish the time of day at a regular
	// interval. Unlike time.NewTicker(), this function returns the
	// channel directly to allow Ticker to be an interface.
	NewTicker(d time.Duration) (Ticker, <-chan time.Time)
}

// Ticker is an interface around time.Ticker. It has been added to aid
// unit testing.
type Ticker interface {
	Stop()
}
