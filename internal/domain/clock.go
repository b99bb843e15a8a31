package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source. It decides the reference year of an
// earthquake sentence without one, the daylight saving label of arrival
// times and drafts, and the broadcast header times.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
