package opengl

/**
 * @brief The OpenGL 3.3 core calls the backend issues. The glbackend
 * package binds them to the driver; tests use a recording fake.
 * Slices are passed whole, implementations take their address.
 */
type Functions interface {
	GetError() uint32
	HasExtension(name string) bool

	Enable(capability uint32)
	Disable(capability uint32)
	DepthFunc(fn uint32)
	DepthMask(flag bool)
	BlendFunc(sfactor, dfactor uint32)
	// BlendFunci needs GL_ARB_draw_buffers_blend on a 3.3 context.
	BlendFunci(buf, sfactor, dfactor uint32)
	BlendEquation(mode uint32)
	CullFace(mode uint32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	ClearBufferfv(buffer uint32, drawbuffer int32, value []float32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []byte, usage uint32)
	DeleteBuffer(buffer uint32)
	BindBufferBase(target, index, buffer uint32)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	VertexAttribIPointer(index uint32, size int32, xtype uint32, stride int32, offset int)
	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset int)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, blockIndex, binding uint32)
	Uniform1i(location, v int32)
	Uniform1ui(location int32, v uint32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	UniformMatrix4fv(location int32, m [16]float32)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)
	TexImage2DFloat(target uint32, level, internalFormat, width, height int32, format uint32, pixels []float32)
	TexParameteri(target, pname uint32, param int32)
	TexParameterf(target, pname uint32, param float32)
	GenerateMipmap(target uint32)
	DeleteTexture(texture uint32)

	GenFramebuffer() uint32
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, renderbuffertarget, renderbuffer uint32)
	CheckFramebufferStatus(target uint32) uint32
	DrawBuffers(buffers []uint32)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32)
	DeleteFramebuffer(framebuffer uint32)
	GenRenderbuffer() uint32
	BindRenderbuffer(target, renderbuffer uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)
	DeleteRenderbuffer(renderbuffer uint32)
}
