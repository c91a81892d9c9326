package clock

import "time"

// Clock abstracts wall time so the ledger and the alert engine can be driven
// with a fixed clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func System() Clock {
	return systemClock{}
}
