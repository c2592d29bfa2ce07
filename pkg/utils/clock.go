package utils

import "time"

// Clock abstracts wall-clock time so past/future and same-day decisions
// are deterministic under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
