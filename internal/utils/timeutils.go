package utils

import "time"

// AgeInDays returns the elapsed wall-clock age of t relative to now, in
// fractional days. A zero or future t reports zero age, so a preference
// updated for the first time decays by nothing.
func AgeInDays(t, now time.Time) float64 {
	if t.IsZero() || !t.Before(now) {
		return 0
	}
	return now.Sub(t).Hours() / 24
}
