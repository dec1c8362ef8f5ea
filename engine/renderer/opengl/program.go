package opengl

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/resources"
)

func shaderKind(st resources.ShaderType) uint32 {
	switch st {
	case resources.VertexShader:
		return glVertexShader
	case resources.GeometryShader:
		return glGeometryShader
	default:
		return glFragmentShader
	}
}

func makeShader(gl Functions, st resources.ShaderType, src string) (uint32, error) {
	sh := gl.CreateShader(shaderKind(st))
	gl.ShaderSource(sh, src)
	gl.CompileShader(sh)

	if gl.GetShaderiv(sh, glCompileStatus) == glFalse {
		log := strings.TrimRight(gl.GetShaderInfoLog(sh), "\x00")
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader compile error: %s", st, log)
	}
	return sh, nil
}

/**
 * @brief Compiles and links a program. The vertex and fragment stages are
 * required, the geometry stage is optional.
 * @return The program handle, or an error carrying the driver log.
 */
func makeProgram(gl Functions, vsSrc, gsSrc, fsSrc string) (uint32, error) {
	if vsSrc == "" || fsSrc == "" {
		return 0, fmt.Errorf("material has no vertex or fragment shader")
	}

	stages := []struct {
		st  resources.ShaderType
		src string
	}{
		{resources.VertexShader, vsSrc},
		{resources.GeometryShader, gsSrc},
		{resources.FragmentShader, fsSrc},
	}

	var shaders []uint32
	defer func() {
		for _, sh := range shaders {
			gl.DeleteShader(sh)
		}
	}()
	for _, s := range stages {
		if s.src == "" {
			continue
		}
		sh, err := makeShader(gl, s.st, s.src)
		if err != nil {
			return 0, err
		}
		shaders = append(shaders, sh)
	}

	prog := gl.CreateProgram()
	for _, sh := range shaders {
		gl.AttachShader(prog, sh)
	}
	gl.LinkProgram(prog)

	if gl.GetProgramiv(prog, glLinkStatus) == glFalse {
		log := strings.TrimRight(gl.GetProgramInfoLog(prog), "\x00")
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
