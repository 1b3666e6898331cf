package shader

import (
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibrary_Modules(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)
	assert.Equal(t, []string{"composition", "gbuffer", "shadow", "skybox", "water"}, lib.Modules())
}

func TestDefaultLibrary_Function(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)

	tests := []struct {
		name   string
		module string
		stage  Stage
	}{
		{"vertex_depth", "shadow", StageVertex},
		{"vertex_main", "gbuffer", StageVertex},
		{"fragment_PBR", "gbuffer", StageFragment},
		{"fragment_IBL", "gbuffer", StageFragment},
		{"vertex_skybox", "skybox", StageVertex},
		{"fragment_skybox", "skybox", StageFragment},
		{"vertex_water", "water", StageVertex},
		{"fragment_water", "water", StageFragment},
		{"composition_vert", "composition", StageVertex},
		{"composition_frag", "composition", StageFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, stage, err := lib.Function(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.stage, stage)
			assert.Equal(t, tt.name, fn.EntryPoint)
			assert.Equal(t, tt.module+"."+tt.name, fn.Label)
			assert.Contains(t, fn.Source, "struct Uniforms")
		})
	}
}

func TestLibrary_FunctionNotFound(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)

	_, _, err = lib.Function("fragment_toon")
	assert.ErrorIs(t, err, ErrFunctionNotFound)

	_, err = lib.Module("fragment_toon")
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestDefaultLibrary_StructSizes(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)
	m, err := lib.Module("vertex_main")
	require.NoError(t, err)

	assert.Equal(t, uint64(224), m.Structs["Uniforms"])
	assert.Equal(t, uint64(16), m.Structs["FragmentUniforms"])
	assert.Equal(t, uint64(80), m.Structs["Light"])
	assert.Equal(t, uint64(128), m.Structs["ModelUniforms"])
	assert.Equal(t, uint64(112), m.Structs["Instance"])
	assert.Equal(t, uint64(48), m.Structs["Material"])
}

func TestDefaultLibrary_Bindings(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)
	m, err := lib.Module("vertex_depth")
	require.NoError(t, err)

	require.Len(t, m.Bindings, 3)
	assert.Equal(t, Binding{Group: 0, Binding: 0, Name: "shadowUniforms", Type: gpu.BindingTypeUniformBuffer, Size: 64}, m.Bindings[0])
	assert.Equal(t, gpu.BindingTypeUniformBuffer, m.Bindings[1].Type)
	assert.Equal(t, gpu.BindingTypeReadOnlyStorageBuffer, m.Bindings[2].Type)
	assert.Equal(t, uint64(112), m.Bindings[2].Size)
}

func TestLibrary_Validate(t *testing.T) {
	lib, err := DefaultLibrary()
	require.NoError(t, err)

	shadowFrame := gpu.BindGroupLayoutDescriptor{Entries: []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gpu.ShaderStageVertex, Type: gpu.BindingTypeUniformBuffer},
	}}
	model := gpu.BindGroupLayoutDescriptor{Entries: []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gpu.ShaderStageVertex, Type: gpu.BindingTypeUniformBuffer},
		{Binding: 1, Visibility: gpu.ShaderStageVertex, Type: gpu.BindingTypeReadOnlyStorageBuffer},
	}}

	t.Run("matching layouts", func(t *testing.T) {
		assert.NoError(t, lib.Validate("vertex_depth", []gpu.BindGroupLayoutDescriptor{shadowFrame, model}))
	})

	t.Run("missing group", func(t *testing.T) {
		err := lib.Validate("vertex_depth", []gpu.BindGroupLayoutDescriptor{shadowFrame})
		assert.ErrorIs(t, err, ErrBindingMismatch)
	})

	t.Run("wrong type", func(t *testing.T) {
		bad := gpu.BindGroupLayoutDescriptor{Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer},
			{Binding: 1, Type: gpu.BindingTypeUniformBuffer},
		}}
		err := lib.Validate("vertex_depth", []gpu.BindGroupLayoutDescriptor{shadowFrame, bad})
		assert.ErrorIs(t, err, ErrBindingMismatch)
	})
}

func TestNewLibrary(t *testing.T) {
	t.Run("common is prepended", func(t *testing.T) {
		lib, err := NewLibrary(fstest.MapFS{
			"common.wgsl": {Data: []byte("struct Shared { a: f32, b: vec3f, }\n")},
			"flat.wgsl":   {Data: []byte("@vertex fn flat_vert() -> @builtin(position) vec4f { return vec4f(0.0); }\n")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"flat"}, lib.Modules())
		m, err := lib.Module("flat_vert")
		require.NoError(t, err)
		assert.Equal(t, uint64(32), m.Structs["Shared"])
	})

	t.Run("duplicate entry point", func(t *testing.T) {
		src := []byte("@fragment fn shade() -> @location(0) vec4f { return vec4f(1.0); }\n")
		_, err := NewLibrary(fstest.MapFS{
			"a.wgsl": {Data: src},
			"b.wgsl": {Data: src},
		})
		assert.Error(t, err)
	})

	t.Run("module without entry points", func(t *testing.T) {
		_, err := NewLibrary(fstest.MapFS{"empty.wgsl": {Data: []byte("// nothing here\n")}})
		assert.Error(t, err)
	})

	t.Run("empty filesystem", func(t *testing.T) {
		_, err := NewLibrary(fstest.MapFS{})
		assert.Error(t, err)
	})
}

func TestStripComments(t *testing.T) {
	src := "a /* outer /* inner */ still */ b // tail\nc"
	assert.Equal(t, "a  b \nc\n", stripComments(src))
}
