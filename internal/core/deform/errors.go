package deform

import "errors"

var (
	ErrMissingRenderGeometry    = errors.New("deform: render geometry not attached")
	ErrMissingCollisionGeometry = errors.New("deform: collision geometry not attached")
	ErrEmptyMesh                = errors.New("deform: mesh has no vertices")
	ErrInvalidConfig            = errors.New("deform: invalid configuration")
	ErrUnexpectedPayload        = errors.New("deform: unexpected collision payload")
)
