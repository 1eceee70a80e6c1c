package audio

import "errors"

var (
	ErrInvalidConfig = errors.New("audio: invalid configuration")
	ErrNilClip       = errors.New("audio: nil clip")
	ErrEmptyClip     = errors.New("audio: clip has no samples")
)
