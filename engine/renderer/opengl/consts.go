package opengl

// OpenGL enums used by the backend. Values follow the Khronos registry so the
// package does not need cgo to build.
const (
	glFalse = 0
	glTrue  = 1

	glNoError                     = 0
	glInvalidEnum                 = 0x0500
	glInvalidValue                = 0x0501
	glInvalidOperation            = 0x0502
	glOutOfMemory                 = 0x0505
	glInvalidFramebufferOperation = 0x0506

	glDepthTest              = 0x0B71
	glCullFace               = 0x0B44
	glBlend                  = 0x0BE2
	glTextureCubeMapSeamless = 0x884F
	glBack                   = 0x0405

	glLess   = 0x0201
	glLEqual = 0x0203

	glZero             = 0
	glOne              = 1
	glOneMinusSrcColor = 0x0301
	glSrcAlpha         = 0x0302
	glOneMinusSrcAlpha = 0x0303
	glFuncAdd          = 0x8006

	glDepthBufferBit = 0x00000100
	glColorBufferBit = 0x00004000
	glColor          = 0x1800

	glArrayBuffer        = 0x8892
	glElementArrayBuffer = 0x8893
	glUniformBuffer      = 0x8A11
	glStaticDraw         = 0x88E4
	glDynamicDraw        = 0x88E8

	glUnsignedByte = 0x1401
	glUnsignedInt  = 0x1405
	glFloat        = 0x1406
	glHalfFloat    = 0x140B

	glLines         = 0x0001
	glLineStrip     = 0x0003
	glTriangles     = 0x0004
	glTriangleStrip = 0x0005

	glFragmentShader = 0x8B30
	glVertexShader   = 0x8B31
	glGeometryShader = 0x8DD9
	glCompileStatus  = 0x8B81
	glLinkStatus     = 0x8B82
	glInvalidIndex   = 0xFFFFFFFF

	glTexture2D               = 0x0DE1
	glTextureCubeMap          = 0x8513
	glTextureCubeMapPositiveX = 0x8515
	glTextureCubeMapNegativeX = 0x8516
	glTextureCubeMapPositiveY = 0x8517
	glTextureCubeMapNegativeY = 0x8518
	glTextureCubeMapPositiveZ = 0x8519
	glTextureCubeMapNegativeZ = 0x851A
	glTexture0                = 0x84C0

	glTextureMagFilter     = 0x2800
	glTextureMinFilter     = 0x2801
	glTextureWrapS         = 0x2802
	glTextureWrapT         = 0x2803
	glTextureWrapR         = 0x8072
	glTextureLodBias       = 0x8501
	glTextureMaxAnisotropy = 0x84FE

	glRepeat         = 0x2901
	glMirroredRepeat = 0x8370
	glClampToEdge    = 0x812F

	glNearest              = 0x2600
	glLinear               = 0x2601
	glNearestMipmapNearest = 0x2700
	glLinearMipmapNearest  = 0x2701
	glNearestMipmapLinear  = 0x2702
	glLinearMipmapLinear   = 0x2703

	glRed     = 0x1903
	glRGBA    = 0x1908
	glRGBA8   = 0x8058
	glRGBA16F = 0x881A
	glRGBA32F = 0x8814
	glR16F    = 0x822D

	glFramebuffer            = 0x8D40
	glReadFramebuffer        = 0x8CA8
	glDrawFramebuffer        = 0x8CA9
	glRenderbuffer           = 0x8D41
	glColorAttachment0       = 0x8CE0
	glColorAttachment1       = 0x8CE1
	glDepthStencilAttachment = 0x821A
	glDepth24Stencil8        = 0x88F0
	glFramebufferComplete    = 0x8CD5
)
