// Package glbackend binds the OpenGL backend to the driver through go-gl.
// Importing it registers the backend with the renderer package.
package glbackend

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/opengl"
)

func init() {
	renderer.Register(renderer.OpenGL, opengl.Factory(Load))
}

// Load resolves the GL 3.3 core entry points. A context must be current.
func Load() (opengl.Functions, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	core.LogInfo("GL: %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	return Functions{}, nil
}

var _ opengl.Functions = Functions{}

// Functions forwards every call to the loaded driver.
type Functions struct{}

func ptr[T any](s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(&s[0])
}

func (Functions) GetError() uint32 { return gl.GetError() }

func (Functions) HasExtension(name string) bool {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := uint32(0); i < uint32(n); i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i)) == name {
			return true
		}
	}
	return false
}

func (Functions) Enable(c uint32)                   { gl.Enable(c) }
func (Functions) Disable(c uint32)                  { gl.Disable(c) }
func (Functions) DepthFunc(fn uint32)               { gl.DepthFunc(fn) }
func (Functions) DepthMask(flag bool)               { gl.DepthMask(flag) }
func (Functions) BlendFunc(s, d uint32)             { gl.BlendFunc(s, d) }
func (Functions) BlendFunci(buf, s, d uint32)       { gl.BlendFunciARB(buf, s, d) }
func (Functions) BlendEquation(mode uint32)         { gl.BlendEquation(mode) }
func (Functions) CullFace(mode uint32)              { gl.CullFace(mode) }
func (Functions) Viewport(x, y, w, h int32)         { gl.Viewport(x, y, w, h) }
func (Functions) ClearColor(r, g, b, a float32)     { gl.ClearColor(r, g, b, a) }
func (Functions) Clear(mask uint32)                 { gl.Clear(mask) }
func (Functions) BindVertexArray(vao uint32)        { gl.BindVertexArray(vao) }
func (Functions) BindBuffer(target, buffer uint32)  { gl.BindBuffer(target, buffer) }
func (Functions) BindBufferBase(t, index, b uint32) { gl.BindBufferBase(t, index, b) }

func (Functions) ClearBufferfv(buffer uint32, drawbuffer int32, value []float32) {
	gl.ClearBufferfv(buffer, drawbuffer, &value[0])
}

func (Functions) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Functions) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (Functions) GenBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (Functions) BufferData(target uint32, data []byte, usage uint32) {
	gl.BufferData(target, len(data), ptr(data), usage)
}

func (Functions) DeleteBuffer(buffer uint32)                 { gl.DeleteBuffers(1, &buffer) }
func (Functions) EnableVertexAttribArray(i uint32)           { gl.EnableVertexAttribArray(i) }
func (Functions) DisableVertexAttribArray(i uint32)          { gl.DisableVertexAttribArray(i) }
func (Functions) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (Functions) VertexAttribPointer(i uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(i, size, xtype, normalized, stride, gl.PtrOffset(offset))
}

func (Functions) VertexAttribIPointer(i uint32, size int32, xtype uint32, stride int32, offset int) {
	gl.VertexAttribIPointer(i, size, xtype, stride, gl.PtrOffset(offset))
}

func (Functions) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(offset))
}

func (Functions) CreateShader(xtype uint32) uint32 { return gl.CreateShader(xtype) }

func (Functions) ShaderSource(shader uint32, source string) {
	csrc, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csrc, nil)
}

func (Functions) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Functions) GetShaderiv(shader, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (Functions) GetShaderInfoLog(shader uint32) string {
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n))
	gl.GetShaderInfoLog(shader, n, nil, gl.Str(log))
	return log
}

func (Functions) DeleteShader(shader uint32)      { gl.DeleteShader(shader) }
func (Functions) CreateProgram() uint32           { return gl.CreateProgram() }
func (Functions) AttachShader(program, sh uint32) { gl.AttachShader(program, sh) }
func (Functions) LinkProgram(program uint32)      { gl.LinkProgram(program) }

func (Functions) GetProgramiv(program, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (Functions) GetProgramInfoLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n))
	gl.GetProgramInfoLog(program, n, nil, gl.Str(log))
	return log
}

func (Functions) UseProgram(program uint32)    { gl.UseProgram(program) }
func (Functions) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Functions) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Functions) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (Functions) UniformBlockBinding(program, idx, binding uint32) {
	gl.UniformBlockBinding(program, idx, binding)
}

func (Functions) Uniform1i(loc, v int32)                  { gl.Uniform1i(loc, v) }
func (Functions) Uniform1ui(loc int32, v uint32)          { gl.Uniform1ui(loc, v) }
func (Functions) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (Functions) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (Functions) Uniform3f(loc int32, x, y, z float32)    { gl.Uniform3f(loc, x, y, z) }
func (Functions) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

func (Functions) UniformMatrix4fv(loc int32, m [16]float32) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (Functions) GenTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (Functions) ActiveTexture(unit uint32)            { gl.ActiveTexture(unit) }
func (Functions) BindTexture(target, tex uint32)       { gl.BindTexture(target, tex) }
func (Functions) GenerateMipmap(target uint32)         { gl.GenerateMipmap(target) }
func (Functions) DeleteTexture(tex uint32)             { gl.DeleteTextures(1, &tex) }
func (Functions) TexParameteri(t, p uint32, v int32)   { gl.TexParameteri(t, p, v) }
func (Functions) TexParameterf(t, p uint32, v float32) { gl.TexParameterf(t, p, v) }

func (Functions) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr(pixels))
}

func (Functions) TexImage2DFloat(target uint32, level, internalFormat, width, height int32, format uint32, pixels []float32) {
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, gl.FLOAT, ptr(pixels))
}

func (Functions) GenFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (Functions) BindFramebuffer(target, fb uint32) { gl.BindFramebuffer(target, fb) }

func (Functions) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, textarget, texture, level)
}

func (Functions) FramebufferRenderbuffer(target, attachment, rbtarget, rb uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbtarget, rb)
}

func (Functions) CheckFramebufferStatus(target uint32) uint32 {
	return gl.CheckFramebufferStatus(target)
}

func (Functions) DrawBuffers(buffers []uint32) {
	gl.DrawBuffers(int32(len(buffers)), &buffers[0])
}

func (Functions) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (Functions) DeleteFramebuffer(fb uint32) { gl.DeleteFramebuffers(1, &fb) }

func (Functions) GenRenderbuffer() uint32 {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	return rb
}

func (Functions) BindRenderbuffer(target, rb uint32) { gl.BindRenderbuffer(target, rb) }

func (Functions) RenderbufferStorage(target, internalFormat uint32, w, h int32) {
	gl.RenderbufferStorage(target, internalFormat, w, h)
}

func (Functions) DeleteRenderbuffer(rb uint32) { gl.DeleteRenderbuffers(1, &rb) }
