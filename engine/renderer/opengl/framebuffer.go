package opengl

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief Render targets of weighted blended order independent transparency:
 * an RGBA16F accumulation texture, an R16F revealage texture and a depth
 * buffer the opaque depth is copied into.
 */
type oitTargets struct {
	fbo           uint32
	accum         uint32
	reveal        uint32
	depth         uint32
	width, height int32
}

func newTargetTexture(gl Functions, internalFormat int32, format uint32, w, h int32) uint32 {
	t := gl.GenTexture()
	gl.BindTexture(glTexture2D, t)
	gl.TexImage2DFloat(glTexture2D, 0, internalFormat, w, h, format, nil)
	gl.TexParameteri(glTexture2D, glTextureMinFilter, glNearest)
	gl.TexParameteri(glTexture2D, glTextureMagFilter, glNearest)
	gl.TexParameteri(glTexture2D, glTextureWrapS, glClampToEdge)
	gl.TexParameteri(glTexture2D, glTextureWrapT, glClampToEdge)
	gl.BindTexture(glTexture2D, 0)
	return t
}

// ensure (re)creates the targets when the size changed.
func (t *oitTargets) ensure(gl Functions, w, h int32) error {
	if t.fbo != 0 && t.width == w && t.height == h {
		return nil
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid target size %dx%d", w, h)
	}
	defer checkErrors(gl, "oitTargets.ensure")()

	t.destroy(gl)
	core.LogDebug("Creating OIT targets %dx%d", w, h)

	t.fbo = gl.GenFramebuffer()
	gl.BindFramebuffer(glFramebuffer, t.fbo)

	t.accum = newTargetTexture(gl, glRGBA16F, glRGBA, w, h)
	gl.FramebufferTexture2D(glFramebuffer, glColorAttachment0, glTexture2D, t.accum, 0)
	t.reveal = newTargetTexture(gl, glR16F, glRed, w, h)
	gl.FramebufferTexture2D(glFramebuffer, glColorAttachment1, glTexture2D, t.reveal, 0)

	t.depth = gl.GenRenderbuffer()
	gl.BindRenderbuffer(glRenderbuffer, t.depth)
	gl.RenderbufferStorage(glRenderbuffer, glDepth24Stencil8, w, h)
	gl.BindRenderbuffer(glRenderbuffer, 0)
	gl.FramebufferRenderbuffer(glFramebuffer, glDepthStencilAttachment, glRenderbuffer, t.depth)

	gl.DrawBuffers([]uint32{glColorAttachment0, glColorAttachment1})
	status := gl.CheckFramebufferStatus(glFramebuffer)
	gl.BindFramebuffer(glFramebuffer, 0)

	if status != glFramebufferComplete {
		t.destroy(gl)
		return fmt.Errorf("OIT framebuffer incomplete: 0x%04X", status)
	}
	t.width, t.height = w, h
	return nil
}

// begin copies the opaque depth, clears the targets and sets the
// accumulation blend state.
func (t *oitTargets) begin(gl Functions) {
	gl.BindFramebuffer(glReadFramebuffer, 0)
	gl.BindFramebuffer(glDrawFramebuffer, t.fbo)
	gl.BlitFramebuffer(0, 0, t.width, t.height, 0, 0, t.width, t.height, glDepthBufferBit, glNearest)

	gl.BindFramebuffer(glFramebuffer, t.fbo)
	gl.ClearBufferfv(glColor, 0, []float32{0, 0, 0, 0})
	gl.ClearBufferfv(glColor, 1, []float32{1, 1, 1, 1})

	gl.DepthMask(false)
	gl.Enable(glBlend)
	gl.BlendEquation(glFuncAdd)
	gl.BlendFunci(0, glOne, glOne)
	gl.BlendFunci(1, glZero, glOneMinusSrcColor)
}

func (t *oitTargets) end(gl Functions) {
	gl.BindFramebuffer(glFramebuffer, 0)
}

func (t *oitTargets) destroy(gl Functions) {
	if t.fbo != 0 {
		gl.DeleteFramebuffer(t.fbo)
	}
	for _, tex := range []uint32{t.accum, t.reveal} {
		if tex != 0 {
			gl.DeleteTexture(tex)
		}
	}
	if t.depth != 0 {
		gl.DeleteRenderbuffer(t.depth)
	}
	*t = oitTargets{}
}
