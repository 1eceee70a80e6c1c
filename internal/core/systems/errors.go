package systems

import "errors"

var (
	ErrNilSystem      = errors.New("systems: nil system")
	ErrSystemExists   = errors.New("systems: system already registered")
	ErrWorldStarted   = errors.New("systems: world already started")
	ErrWorldNotActive = errors.New("systems: world not started")
)
