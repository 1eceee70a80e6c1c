package hud

import "errors"

var (
	ErrUnknownColor   = errors.New("hud: unknown colour")
	ErrUnknownLabel   = errors.New("hud: unknown label")
	ErrMirrorClosed   = errors.New("hud: mirror closed")
	ErrScreenRequired = errors.New("hud: screen required")
)
