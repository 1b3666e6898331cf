package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// entryRegex matches @vertex and @fragment functions, skipping any further attributes
	// between the stage attribute and fn.
	entryRegex = regexp.MustCompile(`@(vertex|fragment)\s*(?:@\w+(?:\([^)]*\))?\s*)*fn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> uniforms: Uniforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseModule extracts entry points, resource bindings and struct sizes from WGSL source.
func parseModule(name, source string) *Module {
	cleaned := stripComments(source)
	structs := computeStructSizes(parseStructBlocks(cleaned))

	m := &Module{
		Name:        name,
		Source:      source,
		EntryPoints: make(map[string]Stage),
		Structs:     make(map[string]uint64, len(structs)),
	}
	for s, layout := range structs {
		m.Structs[s] = layout.size
	}

	for _, match := range entryRegex.FindAllStringSubmatch(cleaned, -1) {
		stage := StageVertex
		if match[1] == "fragment" {
			stage = StageFragment
		}
		m.EntryPoints[match[2]] = stage
	}

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		typeName := strings.TrimSpace(match[5])

		b := Binding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    strings.TrimSpace(match[4]),
			Type:    classifyResource(strings.TrimSpace(match[3]), typeName),
		}
		if layout, ok := resolveTypeLayout(typeName, structs); ok {
			b.Size = layout.size
		}
		m.Bindings = append(m.Bindings, b)
	}
	sort.Slice(m.Bindings, func(i, j int) bool {
		if m.Bindings[i].Group != m.Bindings[j].Group {
			return m.Bindings[i].Group < m.Bindings[j].Group
		}
		return m.Bindings[i].Binding < m.Bindings[j].Binding
	})
	return m
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			isBuiltin: builtinRegex.MatchString(line),
		})
	}
	return fields
}
