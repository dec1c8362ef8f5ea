package opengl

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
)

func errorString(code uint32) string {
	switch code {
	case glInvalidEnum:
		return "GL_INVALID_ENUM"
	case glInvalidValue:
		return "GL_INVALID_VALUE"
	case glInvalidOperation:
		return "GL_INVALID_OPERATION"
	case glOutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case glInvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return fmt.Sprintf("0x%04X", code)
}

// maxDrainedErrors bounds the drain loop, a lost context can report errors forever.
const maxDrainedErrors = 16

// drainErrors logs every pending GL error under op and returns how many there were.
func drainErrors(gl Functions, op string) int {
	n := 0
	for ; n < maxDrainedErrors; n++ {
		code := gl.GetError()
		if code == glNoError {
			break
		}
		core.LogError("OpenGL error in %s: %s", op, errorString(code))
	}
	return n
}

// checkErrors drains stale errors and returns a function that logs the ones
// raised until it runs. Use as defer checkErrors(gl, "op")().
func checkErrors(gl Functions, op string) func() {
	if n := drainErrors(gl, op+" (previous)"); n > 0 {
		core.LogDebug("%d stale OpenGL errors before %s", n, op)
	}
	return func() {
		drainErrors(gl, op)
	}
}
