package drift

import "errors"

var (
	ErrMissingLabel     = errors.New("drift: label not attached")
	ErrMissingIndicator = errors.New("drift: indicator not attached")
	ErrInvalidConfig    = errors.New("drift: invalid configuration")
	ErrMissingBody      = errors.New("drift: rigid body source not attached")
)
