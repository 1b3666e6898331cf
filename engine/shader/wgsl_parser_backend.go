package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

// wgslPrimitiveLayoutMap maps WGSL scalar, vector and matrix type names to their byte size and
// alignment in the uniform and storage address spaces.
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2f":     {8, 8},
	"vec2<f32>": {8, 8},
	"vec3f":     {12, 16},
	"vec3<f32>": {12, 16},
	"vec4f":     {16, 16},
	"vec4<f32>": {16, 16},
	"vec2u":     {8, 8},
	"vec3u":     {12, 16},
	"vec4u":     {16, 16},
	"vec2i":     {8, 8},
	"vec3i":     {12, 16},
	"vec4i":     {16, 16},

	"mat3x3f":     {48, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4f":     {64, 16},
	"mat4x4<f32>": {64, 16},
}

// roundUpAlign rounds value up to the next multiple of alignment, a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously computed struct layouts. A runtime-sized array resolves to one element stride.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "Uniforms", "array<Light>"
//   - knownTypes: already resolved struct layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: true if the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if strings.HasPrefix(typeName, "array<") && strings.HasSuffix(typeName, ">") {
		inner := typeName[6 : len(typeName)-1]
		parts := strings.SplitN(inner, ",", 2)
		elemLayout, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		stride := roundUpAlign(elemLayout.align, elemLayout.size)
		if len(parts) == 2 {
			count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
			if err != nil {
				return wgslTypeLayout{}, false
			}
			return wgslTypeLayout{count * stride, elemLayout.align}, true
		}
		return wgslTypeLayout{stride, elemLayout.align}, true
	}

	return wgslTypeLayout{}, false
}

// computeStructLayout computes the byte size and alignment of a single struct: each field is
// placed at the next aligned offset and the total is rounded up to the largest field alignment.
// Fields carrying @builtin are not part of any buffer and are skipped.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fieldLayout.align, offset)
		offset += fieldLayout.size
		if fieldLayout.align > maxAlign {
			maxAlign = fieldLayout.align
		}
	}

	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves every struct, iterating until structs that embed other structs
// have their dependencies available.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}
	return resolved
}

// classifyResource maps a declaration's address space and type to the binding type a layout
// entry must carry.
//
// Parameters:
//   - addressSpace: the address space qualifier (e.g. "uniform", "storage, read"), empty for handle types
//   - typeName: the WGSL type string (e.g. "Uniforms", "texture_2d<f32>", "sampler")
//
// Returns:
//   - gpu.BindingType: the classified binding type
func classifyResource(addressSpace, typeName string) gpu.BindingType {
	switch {
	case addressSpace == "uniform":
		return gpu.BindingTypeUniformBuffer
	case strings.HasPrefix(addressSpace, "storage"):
		return gpu.BindingTypeReadOnlyStorageBuffer
	}

	base, _ := splitTypeParams(typeName)
	switch {
	case base == "sampler":
		return gpu.BindingTypeSampler
	case base == "sampler_comparison":
		return gpu.BindingTypeComparisonSampler
	case strings.HasPrefix(base, "texture_depth_"):
		return gpu.BindingTypeDepthTexture
	case base == "texture_cube":
		return gpu.BindingTypeCubeTexture
	default:
		return gpu.BindingTypeTexture
	}
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a struct body at commas that are not nested inside angle
// brackets, so array<Light, 4> stays one field.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
