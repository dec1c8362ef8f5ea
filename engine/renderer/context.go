package renderer

import "github.com/spaghettifunk/lumen/engine/core"

/**
 * @brief A graphics context a renderer issues its GPU calls against. The
 * windowing layer implements it.
 */
type Context interface {
	MakeCurrent()
	DoneCurrent()
	IsCurrent() bool
	// Valid reports whether the context can still be made current. It turns
	// false once the owning window has been destroyed.
	Valid() bool
}

// ContextProvider reports the context current on the calling thread, nil if none.
type ContextProvider interface {
	Current() Context
}

/**
 * @brief Makes target current for the duration of a GPU operation.
 * The returned restore function puts back whatever context was current
 * before, or detaches target when nothing was. When target is already
 * current restore does nothing.
 * @param provider Reports the context current before the switch. Can be nil.
 * @param target The context to activate.
 * @return A restore function and core.ErrContextUnavailable if target is nil or invalid.
 */
func SwitchContext(provider ContextProvider, target Context) (restore func(), err error) {
	if target == nil || !target.Valid() {
		return func() {}, core.ErrContextUnavailable
	}
	if target.IsCurrent() {
		return func() {}, nil
	}

	var previous Context
	if provider != nil {
		previous = provider.Current()
	}
	target.MakeCurrent()

	return func() {
		if previous != nil && previous.Valid() {
			previous.MakeCurrent()
			return
		}
		target.DoneCurrent()
	}, nil
}
