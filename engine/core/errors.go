package core

import (
	"errors"
)

var (
	// ErrCacheTypeMismatch signals two renderers claiming the same identity with
	// incompatible cache types. It is a programming error.
	ErrCacheTypeMismatch  = errors.New("cache type mismatch, possibly conflicting renderer identity")
	ErrContextUnavailable = errors.New("graphics context unavailable")
	ErrRendererNotFound   = errors.New("renderer not found")
	ErrUnsupportedBackend = errors.New("unsupported renderer backend")
	ErrFrameInProgress    = errors.New("frame already in progress")
	ErrNoFrameInProgress  = errors.New("no frame in progress")
	ErrUnknown            = errors.New("unknown")
)
