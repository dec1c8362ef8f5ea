package opengl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/lumen/engine/renderer"
)

// fakeGL records the calls the backend issues and tracks object lifetimes.
type fakeGL struct {
	next  uint32
	calls []string

	failCompile bool
	failLink    bool
	fbStatus    uint32
	errors      []uint32

	// unsupported lists extensions the fake driver does not expose.
	unsupported map[string]bool

	// missing lists uniform and block names programs do not declare.
	missing map[string]bool

	live     map[string]map[uint32]bool
	program  uint32
	uniforms map[string]int32
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		fbStatus:    glFramebufferComplete,
		missing:     map[string]bool{},
		unsupported: map[string]bool{},
		live:        map[string]map[uint32]bool{},
		uniforms:    map[string]int32{},
	}
}

func (f *fakeGL) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeGL) gen(kind string) uint32 {
	f.next++
	if f.live[kind] == nil {
		f.live[kind] = map[uint32]bool{}
	}
	f.live[kind][f.next] = true
	f.record("Gen%s %d", kind, f.next)
	return f.next
}

func (f *fakeGL) del(kind string, id uint32) {
	delete(f.live[kind], id)
	f.record("Delete%s %d", kind, id)
}

// alive returns the number of live objects of kind.
func (f *fakeGL) alive(kind string) int { return len(f.live[kind]) }

func (f *fakeGL) totalAlive() int {
	n := 0
	for _, objs := range f.live {
		n += len(objs)
	}
	return n
}

// count returns the number of calls starting with prefix.
func (f *fakeGL) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// index returns the position of the first call equal to call, -1 if absent.
func (f *fakeGL) index(call string) int {
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

func (f *fakeGL) reset() { f.calls = nil }

func (f *fakeGL) GetError() uint32 {
	if len(f.errors) == 0 {
		return glNoError
	}
	e := f.errors[0]
	f.errors = f.errors[1:]
	return e
}

func (f *fakeGL) HasExtension(name string) bool { return !f.unsupported[name] }

func (f *fakeGL) Enable(c uint32)               { f.record("Enable 0x%04X", c) }
func (f *fakeGL) Disable(c uint32)              { f.record("Disable 0x%04X", c) }
func (f *fakeGL) DepthFunc(fn uint32)           { f.record("DepthFunc 0x%04X", fn) }
func (f *fakeGL) DepthMask(flag bool)           { f.record("DepthMask %t", flag) }
func (f *fakeGL) BlendFunc(s, d uint32)         { f.record("BlendFunc 0x%04X 0x%04X", s, d) }
func (f *fakeGL) BlendFunci(buf, s, d uint32)   { f.record("BlendFunci %d 0x%04X 0x%04X", buf, s, d) }
func (f *fakeGL) BlendEquation(mode uint32)     { f.record("BlendEquation 0x%04X", mode) }
func (f *fakeGL) CullFace(mode uint32)          { f.record("CullFace 0x%04X", mode) }
func (f *fakeGL) Viewport(x, y, w, h int32)     { f.record("Viewport %d %d %d %d", x, y, w, h) }
func (f *fakeGL) ClearColor(r, g, b, a float32) { f.record("ClearColor %g %g %g %g", r, g, b, a) }
func (f *fakeGL) Clear(mask uint32)             { f.record("Clear 0x%X", mask) }
func (f *fakeGL) ClearBufferfv(b uint32, d int32, v []float32) {
	f.record("ClearBufferfv 0x%04X %d %v", b, d, v)
}

func (f *fakeGL) GenVertexArray() uint32       { return f.gen("VertexArray") }
func (f *fakeGL) BindVertexArray(vao uint32)   { f.record("BindVertexArray %d", vao) }
func (f *fakeGL) DeleteVertexArray(vao uint32) { f.del("VertexArray", vao) }
func (f *fakeGL) GenBuffer() uint32            { return f.gen("Buffer") }
func (f *fakeGL) BindBuffer(t, b uint32)       { f.record("BindBuffer 0x%04X %d", t, b) }
func (f *fakeGL) BufferData(t uint32, data []byte, usage uint32) {
	f.record("BufferData 0x%04X %d", t, len(data))
}
func (f *fakeGL) DeleteBuffer(b uint32)             { f.del("Buffer", b) }
func (f *fakeGL) BindBufferBase(t, index, b uint32) { f.record("BindBufferBase 0x%04X %d %d", t, index, b) }
func (f *fakeGL) EnableVertexAttribArray(i uint32)  { f.record("EnableVertexAttribArray %d", i) }
func (f *fakeGL) DisableVertexAttribArray(i uint32) { f.record("DisableVertexAttribArray %d", i) }
func (f *fakeGL) VertexAttribPointer(i uint32, size int32, xtype uint32, norm bool, stride int32, offset int) {
	f.record("VertexAttribPointer %d %d 0x%04X %d %d", i, size, xtype, stride, offset)
}
func (f *fakeGL) VertexAttribIPointer(i uint32, size int32, xtype uint32, stride int32, offset int) {
	f.record("VertexAttribIPointer %d %d 0x%04X %d %d", i, size, xtype, stride, offset)
}
func (f *fakeGL) DrawArrays(mode uint32, first, count int32) {
	f.record("DrawArrays 0x%04X %d %d", mode, first, count)
}
func (f *fakeGL) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	f.record("DrawElements 0x%04X %d", mode, count)
}

func (f *fakeGL) CreateShader(xtype uint32) uint32 { return f.gen("Shader") }
func (f *fakeGL) ShaderSource(uint32, string)      {}
func (f *fakeGL) CompileShader(sh uint32) { f.record("CompileShader %d", sh) }
func (f *fakeGL) GetShaderiv(sh, pname uint32) int32 {
	if pname == glCompileStatus && f.failCompile {
		return glFalse
	}
	return glTrue
}
func (f *fakeGL) GetShaderInfoLog(uint32) string { return "0:1: syntax error\x00" }
func (f *fakeGL) DeleteShader(sh uint32)         { f.del("Shader", sh) }
func (f *fakeGL) CreateProgram() uint32          { return f.gen("Program") }
func (f *fakeGL) AttachShader(p, sh uint32)      { f.record("AttachShader %d %d", p, sh) }
func (f *fakeGL) LinkProgram(p uint32)           { f.record("LinkProgram %d", p) }
func (f *fakeGL) GetProgramiv(p, pname uint32) int32 {
	if pname == glLinkStatus && f.failLink {
		return glFalse
	}
	return glTrue
}
func (f *fakeGL) GetProgramInfoLog(uint32) string { return "link failed" }
func (f *fakeGL) UseProgram(p uint32) {
	f.program = p
	f.record("UseProgram %d", p)
}
func (f *fakeGL) DeleteProgram(p uint32) { f.del("Program", p) }

func (f *fakeGL) GetUniformLocation(p uint32, name string) int32 {
	f.record("GetUniformLocation %d %s", p, name)
	if f.missing[name] {
		return -1
	}
	key := fmt.Sprintf("%d/%s", p, name)
	loc, ok := f.uniforms[key]
	if !ok {
		loc = int32(len(f.uniforms))
		f.uniforms[key] = loc
	}
	return loc
}

// uniformName maps a location of the current program back to its name.
func (f *fakeGL) uniformName(loc int32) string {
	prefix := fmt.Sprintf("%d/", f.program)
	for k, v := range f.uniforms {
		if v == loc && strings.HasPrefix(k, prefix) {
			return strings.TrimPrefix(k, prefix)
		}
	}
	return fmt.Sprint(loc)
}

func (f *fakeGL) GetUniformBlockIndex(p uint32, name string) uint32 {
	if f.missing[name] {
		return glInvalidIndex
	}
	return uint32(len(name))
}
func (f *fakeGL) UniformBlockBinding(p, idx, binding uint32) {
	f.record("UniformBlockBinding %d %d %d", p, idx, binding)
}
func (f *fakeGL) Uniform1i(loc, v int32) { f.record("Uniform %s %v", f.uniformName(loc), v) }
func (f *fakeGL) Uniform1ui(loc int32, v uint32) {
	f.record("Uniform %s %v", f.uniformName(loc), v)
}
func (f *fakeGL) Uniform1f(loc int32, v float32) {
	f.record("Uniform %s %v", f.uniformName(loc), v)
}
func (f *fakeGL) Uniform2f(loc int32, x, y float32) {
	f.record("Uniform %s %v %v", f.uniformName(loc), x, y)
}
func (f *fakeGL) Uniform3f(loc int32, x, y, z float32) {
	f.record("Uniform %s %v %v %v", f.uniformName(loc), x, y, z)
}
func (f *fakeGL) Uniform4f(loc int32, x, y, z, w float32) {
	f.record("Uniform %s %v %v %v %v", f.uniformName(loc), x, y, z, w)
}
func (f *fakeGL) UniformMatrix4fv(loc int32, m [16]float32) {
	f.record("Uniform %s %v", f.uniformName(loc), m)
}

func (f *fakeGL) GenTexture() uint32        { return f.gen("Texture") }
func (f *fakeGL) ActiveTexture(unit uint32) { f.record("ActiveTexture %d", unit-glTexture0) }
func (f *fakeGL) BindTexture(t, tex uint32) { f.record("BindTexture 0x%04X %d", t, tex) }
func (f *fakeGL) TexImage2D(t uint32, level, ifmt, w, h int32, format, xtype uint32, pixels []byte) {
	f.record("TexImage2D 0x%04X 0x%04X %dx%d", t, ifmt, w, h)
}
func (f *fakeGL) TexImage2DFloat(t uint32, level, ifmt, w, h int32, format uint32, pixels []float32) {
	f.record("TexImage2DFloat 0x%04X 0x%04X %dx%d", t, ifmt, w, h)
}
func (f *fakeGL) TexParameteri(t, pname uint32, param int32) {
	f.record("TexParameteri 0x%04X 0x%04X 0x%04X", t, pname, param)
}
func (f *fakeGL) TexParameterf(t, pname uint32, param float32) {
	f.record("TexParameterf 0x%04X 0x%04X %g", t, pname, param)
}
func (f *fakeGL) GenerateMipmap(t uint32)  { f.record("GenerateMipmap 0x%04X", t) }
func (f *fakeGL) DeleteTexture(tex uint32) { f.del("Texture", tex) }
func (f *fakeGL) GenFramebuffer() uint32   { return f.gen("Framebuffer") }
func (f *fakeGL) BindFramebuffer(t, fb uint32) {
	f.record("BindFramebuffer 0x%04X %d", t, fb)
}
func (f *fakeGL) FramebufferTexture2D(t, att, tt, tex uint32, level int32) {
	f.record("FramebufferTexture2D 0x%04X %d", att, tex)
}
func (f *fakeGL) FramebufferRenderbuffer(t, att, rt, rb uint32) {
	f.record("FramebufferRenderbuffer 0x%04X %d", att, rb)
}
func (f *fakeGL) CheckFramebufferStatus(uint32) uint32 { return f.fbStatus }
func (f *fakeGL) DrawBuffers(b []uint32)               { f.record("DrawBuffers %d", len(b)) }
func (f *fakeGL) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	f.record("BlitFramebuffer %dx%d 0x%X", sx1, sy1, mask)
}
func (f *fakeGL) DeleteFramebuffer(fb uint32)   { f.del("Framebuffer", fb) }
func (f *fakeGL) GenRenderbuffer() uint32       { return f.gen("Renderbuffer") }
func (f *fakeGL) BindRenderbuffer(t, rb uint32) { f.record("BindRenderbuffer %d", rb) }
func (f *fakeGL) RenderbufferStorage(t, ifmt uint32, w, h int32) {
	f.record("RenderbufferStorage 0x%04X %dx%d", ifmt, w, h)
}
func (f *fakeGL) DeleteRenderbuffer(rb uint32) { f.del("Renderbuffer", rb) }

// fakeThread tracks the context current on the test goroutine.
type fakeThread struct {
	mu      sync.Mutex
	current *fakeContext
}

func (t *fakeThread) Current() renderer.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	return t.current
}

type fakeContext struct {
	thread    *fakeThread
	destroyed bool
	switches  int
}

func (c *fakeContext) MakeCurrent() {
	c.thread.mu.Lock()
	c.thread.current = c
	c.thread.mu.Unlock()
	c.switches++
}

func (c *fakeContext) DoneCurrent() {
	c.thread.mu.Lock()
	if c.thread.current == c {
		c.thread.current = nil
	}
	c.thread.mu.Unlock()
}

func (c *fakeContext) IsCurrent() bool {
	c.thread.mu.Lock()
	defer c.thread.mu.Unlock()
	return c.thread.current == c
}

func (c *fakeContext) Valid() bool { return !c.destroyed }
