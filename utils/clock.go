package utils

import "time"

// Clock abstracts the time source so temporal logic can be tested
// against a controlled clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
