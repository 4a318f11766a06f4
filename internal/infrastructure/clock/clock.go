package clock

import "time"

// System is the wall clock used outside of tests.
type System struct{}

func New() System { return System{} }

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant; test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
