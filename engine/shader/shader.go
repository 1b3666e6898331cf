// Package shader loads the engine's WGSL modules and resolves entry points by name. Every module
// is parsed once at load so pipelines can be validated against their bind group layouts before
// the device ever sees them.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
)

//go:embed assets/*.wgsl
var assets embed.FS

// commonModule is prepended to every other module in a library.
const commonModule = "common"

var (
	// ErrFunctionNotFound is returned when no module declares the requested entry point.
	ErrFunctionNotFound = errors.New("shader: function not found")

	// ErrBindingMismatch is returned when a module's resource declarations disagree with the
	// bind group layouts a pipeline is built with.
	ErrBindingMismatch = errors.New("shader: binding mismatch")
)

// Stage identifies the pipeline stage of an entry point.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// Binding is one @group/@binding resource declaration.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Type    gpu.BindingType
	Size    uint64
}

// Module is one parsed WGSL file with the shared declarations already prepended.
type Module struct {
	Name        string
	Source      string
	EntryPoints map[string]Stage
	Bindings    []Binding
	Structs     map[string]uint64
}

// Library is an immutable set of modules. Reloading shaders produces a new Library.
type Library interface {
	// Function returns the entry point with the given name, bound to the source of the module
	// that declares it.
	Function(name string) (gpu.ShaderFunction, Stage, error)

	// Module returns the module that declares the given entry point.
	Module(function string) (*Module, error)

	// Modules returns the module names in sorted order.
	Modules() []string

	// Validate checks that every resource declared by the module owning function fits the
	// given bind group layouts, indexed by group.
	Validate(function string, layouts []gpu.BindGroupLayoutDescriptor) error
}

type library struct {
	modules   map[string]*Module
	functions map[string]*Module
}

var _ Library = &library{}

// DefaultLibrary loads the modules compiled into the binary.
//
// Returns:
//   - Library: the embedded shader library
//   - error: error if an embedded module fails to parse
func DefaultLibrary() (Library, error) {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}
	return NewLibrary(sub)
}

// LoadDir loads every .wgsl file in dir. Used by shader hot reload.
//
// Parameters:
//   - dir: directory containing the WGSL sources
//
// Returns:
//   - Library: the loaded library
//   - error: error if the directory cannot be read or a module is invalid
func LoadDir(dir string) (Library, error) {
	return NewLibrary(os.DirFS(dir))
}

// NewLibrary parses every .wgsl file at the root of fsys. A file named common.wgsl holds shared
// declarations and is prepended to the others rather than loaded as a module of its own.
//
// Parameters:
//   - fsys: the filesystem to read from
//
// Returns:
//   - Library: the parsed library
//   - error: error if a file cannot be read or two modules declare the same entry point
func NewLibrary(fsys fs.FS) (Library, error) {
	names, err := fs.Glob(fsys, "*.wgsl")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("shader: no .wgsl files found")
	}

	var common string
	sources := make(map[string]string, len(names))
	for _, file := range names {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("shader: failed to read %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".wgsl")
		if name == commonModule {
			common = string(data)
			continue
		}
		sources[name] = string(data)
	}

	l := &library{
		modules:   make(map[string]*Module, len(sources)),
		functions: make(map[string]*Module),
	}
	for name, src := range sources {
		if common != "" {
			src = common + "\n" + src
		}
		m := parseModule(name, src)
		if len(m.EntryPoints) == 0 {
			return nil, fmt.Errorf("shader: module %s declares no entry points", name)
		}
		for fn := range m.EntryPoints {
			if other, ok := l.functions[fn]; ok {
				return nil, fmt.Errorf("shader: entry point %s declared by both %s and %s", fn, other.Name, name)
			}
			l.functions[fn] = m
		}
		l.modules[name] = m
	}
	return l, nil
}

func (l *library) Function(name string) (gpu.ShaderFunction, Stage, error) {
	m, ok := l.functions[name]
	if !ok {
		return gpu.ShaderFunction{}, 0, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	return gpu.ShaderFunction{
		Label:      m.Name + "." + name,
		Source:     m.Source,
		EntryPoint: name,
	}, m.EntryPoints[name], nil
}

func (l *library) Module(function string) (*Module, error) {
	m, ok := l.functions[function]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, function)
	}
	return m, nil
}

func (l *library) Modules() []string {
	names := make([]string, 0, len(l.modules))
	for name := range l.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *library) Validate(function string, layouts []gpu.BindGroupLayoutDescriptor) error {
	m, err := l.Module(function)
	if err != nil {
		return err
	}
	for _, b := range m.Bindings {
		if int(b.Group) >= len(layouts) {
			return fmt.Errorf("%w: %s declares %s in group %d but the pipeline has %d groups", ErrBindingMismatch, m.Name, b.Name, b.Group, len(layouts))
		}
		entry, ok := findEntry(layouts[b.Group], b.Binding)
		if !ok {
			return fmt.Errorf("%w: %s declares %s at @group(%d) @binding(%d) but the layout has no such entry", ErrBindingMismatch, m.Name, b.Name, b.Group, b.Binding)
		}
		if entry.Type != b.Type {
			return fmt.Errorf("%w: %s at @group(%d) @binding(%d) is %s in the shader but %s in the layout", ErrBindingMismatch, b.Name, b.Group, b.Binding, b.Type, entry.Type)
		}
	}
	return nil
}

func findEntry(layout gpu.BindGroupLayoutDescriptor, binding uint32) (gpu.BindGroupLayoutEntry, bool) {
	for _, e := range layout.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return gpu.BindGroupLayoutEntry{}, false
}
