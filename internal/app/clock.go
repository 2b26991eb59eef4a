package app

import "time"

// Timer is a cancellable deferred callback.
type Timer interface {
	Stop() bool
}

// Clock supplies time and deferred callbacks to the engine. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
