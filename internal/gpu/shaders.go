//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/text_fg.wgsl
var textFgShaderSource string

//go:embed shaders/text_bg.wgsl
var textBgShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

// Shader identifies one of the embedded WGSL programs.
type Shader uint8

const (
	ShaderTextBg Shader = iota
	ShaderTextFg
	ShaderImage
)

// String returns the shader label.
func (s Shader) String() string {
	switch s {
	case ShaderTextBg:
		return "text_bg"
	case ShaderTextFg:
		return "text_fg"
	case ShaderImage:
		return "image"
	default:
		return "unknown"
	}
}

// Source returns the WGSL source of s.
func (s Shader) Source() string {
	switch s {
	case ShaderTextBg:
		return textBgShaderSource
	case ShaderTextFg:
		return textFgShaderSource
	case ShaderImage:
		return imageShaderSource
	default:
		return ""
	}
}

// AllShaders lists every embedded shader in draw order.
var AllShaders = []Shader{ShaderTextBg, ShaderImage, ShaderTextFg}

// ShaderFormat selects how shader modules are handed to the device.
type ShaderFormat uint8

const (
	// ShaderFormatWGSL passes WGSL source to the backend.
	ShaderFormatWGSL ShaderFormat = iota
	// ShaderFormatSPIRV compiles WGSL to SPIR-V with naga first.
	ShaderFormatSPIRV
)

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirv, nil
}

// CompileShaders compiles every embedded shader to SPIR-V.
func CompileShaders() (map[Shader][]uint32, error) {
	out := make(map[Shader][]uint32, len(AllShaders))
	for _, s := range AllShaders {
		code, err := CompileSPIRV(s.Source())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		out[s] = code
	}
	return out, nil
}

func createShaderModule(device hal.Device, s Shader, format ShaderFormat) (hal.ShaderModule, error) {
	src := s.Source()
	if src == "" {
		return nil, fmt.Errorf("%s shader source is empty", s)
	}

	desc := &hal.ShaderModuleDescriptor{Label: s.String() + "_shader"}
	switch format {
	case ShaderFormatSPIRV:
		code, err := CompileSPIRV(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		desc.Source = hal.ShaderSource{SPIRV: code}
	default:
		desc.Source = hal.ShaderSource{WGSL: src}
	}

	module, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", s, err)
	}
	return module, nil
}
