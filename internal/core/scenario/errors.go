package scenario

import "errors"

var (
	ErrNoSegments      = errors.New("scenario has no segments")
	ErrInvalidSegment  = errors.New("invalid segment")
	ErrInvalidImpact   = errors.New("invalid impact")
	ErrFramesExhausted = errors.New("scenario frames exhausted")
)
