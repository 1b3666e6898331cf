package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/camera"
	"github.com/Carmen-Shannon/obsidian/engine/light"
	"github.com/Carmen-Shannon/obsidian/engine/model"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/skybox"
	"github.com/Carmen-Shannon/obsidian/engine/water"
	"github.com/google/uuid"
)

// ErrForeignNode is returned when a parent passed to the scene is not part of its graph.
var ErrForeignNode = errors.New("scene: parent is not attached to this scene")

// UpdateFunc is the per-frame user hook. It runs before world transforms and uniforms are
// refreshed, so any transform it changes is visible in the same frame.
type UpdateFunc func(s Scene, deltaTime float32)

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.RWMutex

	name   string
	active atomic.Bool

	root        node.Node
	camera      camera.Camera
	reflection  camera.Camera
	sky         skybox.Skybox
	renderables []render.RenderableNode
	waters      []water.Body
	lights      []light.Light
	shadow      light.ShadowConfig
	update      UpdateFunc

	time      float32
	frameTime float32
	fps       float32

	uniforms render.Uniforms
	fragment render.FragmentUniforms
}

// Scene is the node graph rendered by the renderer together with the camera, lights, skybox
// and water bodies that shape each pass.
//
// Every Renderable is kept in insertion order; removing a subtree removes every Renderable in
// it. Lights are written to the GPU in the order they were added.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active reports whether the scene should be rendered.
	Active() bool

	// SetActive toggles rendering of the scene.
	//
	// Parameters:
	//   - active: true to render
	SetActive(active bool)

	// Root returns the root node of the graph.
	Root() node.Node

	// Camera returns the primary camera.
	Camera() camera.Camera

	// SetCamera replaces the primary camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// ReflectionCamera returns the camera mirrored from the primary camera for reflection passes.
	ReflectionCamera() camera.Camera

	// Skybox returns the skybox, or nil.
	Skybox() skybox.Skybox

	// SetSkybox replaces the skybox. nil removes it.
	//
	// Parameters:
	//   - s: the skybox
	SetSkybox(s skybox.Skybox)

	// AddNode attaches n under parent, or under the root when parent is nil.
	//
	// Parameters:
	//   - n: the node to attach
	//   - parent: the parent, which must be the root or attached to it
	//
	// Returns:
	//   - error: ErrForeignNode or node.ErrCycle
	AddNode(n node.Node, parent node.Node) error

	// AddModel attaches m like AddNode and registers it for drawing.
	//
	// Parameters:
	//   - m: the model
	//   - parent: the parent, or nil for the root
	//
	// Returns:
	//   - error: ErrForeignNode or node.ErrCycle
	AddModel(m model.Model, parent node.Node) error

	// AddRenderable attaches any RenderableNode and registers it for drawing.
	//
	// Parameters:
	//   - r: the renderable node
	//   - parent: the parent, or nil for the root
	//
	// Returns:
	//   - error: ErrForeignNode or node.ErrCycle
	AddRenderable(r render.RenderableNode, parent node.Node) error

	// AddWater attaches b under the root and registers it for a reflection pass.
	//
	// Parameters:
	//   - b: the water body
	//
	// Returns:
	//   - error: error if b is nil or already added
	AddWater(b water.Body) error

	// AddLight appends l to the light list.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// RemoveNode detaches n and its subtree and unregisters every renderable and water body in it.
	//
	// Parameters:
	//   - n: the node to remove
	//
	// Returns:
	//   - bool: true if n was attached to this scene
	RemoveNode(n node.Node) bool

	// Renderables returns the registered renderables still attached to the graph, in insertion order.
	Renderables() []render.RenderableNode

	// Waters returns the water bodies in insertion order.
	Waters() []water.Body

	// Lights returns the lights in insertion order.
	Lights() []light.Light

	// Walk visits the graph depth first from the root.
	//
	// Parameters:
	//   - fn: visitor; returning false skips the subtree
	Walk(fn func(n node.Node, depth int) bool)

	// ShadowConfig returns the shadow projection settings.
	ShadowConfig() light.ShadowConfig

	// SetShadowConfig replaces the shadow projection settings.
	//
	// Parameters:
	//   - cfg: the settings
	SetShadowConfig(cfg light.ShadowConfig)

	// Update runs the user hook, refreshes every world matrix and recomputes the frame uniforms.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Update(deltaTime float32)

	// Uniforms returns the main pass uniforms computed by the last Update.
	Uniforms() render.Uniforms

	// ReflectionUniforms mirrors the primary camera into the reflection camera and returns the
	// uniforms of the reflection pass for a water surface at height.
	//
	// Parameters:
	//   - height: the water surface height
	//
	// Returns:
	//   - render.Uniforms: the reflection pass uniforms
	ReflectionUniforms(height float32) render.Uniforms

	// FragmentUniforms returns the fragment uniforms computed by the last Update.
	FragmentUniforms() render.FragmentUniforms

	// ShadowLight returns the light that casts shadows, or nil.
	ShadowLight() light.Light

	// LightBuffer returns the light storage buffer contents and the number of lights in it.
	// The buffer is never empty.
	LightBuffer() ([]byte, uint32)

	// Time returns the accumulated scene time in seconds.
	Time() float32

	// FrameTime returns the delta time of the last Update.
	FrameTime() float32

	// FPS returns the frame rate implied by the last Update.
	FPS() float32
}

var _ Scene = &scene{}

// NewScene creates an active scene with an empty root, a default camera and no lights.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		name:       "scene",
		root:       node.NewNode(node.WithName("root")),
		camera:     camera.NewCamera(),
		reflection: camera.NewCamera(),
		shadow:     light.DefaultShadowConfig(),
	}
	s.reflection.SetName("reflection camera")
	s.active.Store(true)
	for _, opt := range options {
		opt(s)
	}
	s.refresh()
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	return s.active.Load()
}

func (s *scene) SetActive(active bool) {
	s.active.Store(active)
}

func (s *scene) Root() node.Node {
	return s.root
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) ReflectionCamera() camera.Camera {
	return s.reflection
}

func (s *scene) Skybox() skybox.Skybox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sky
}

func (s *scene) SetSkybox(sky skybox.Skybox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sky = sky
}

// attached reports whether n is the root or below it.
func (s *scene) attached(n node.Node) bool {
	return n == s.root || node.IsAncestor(s.root, n)
}

func (s *scene) AddNode(n node.Node, parent node.Node) error {
	if n == nil {
		return errors.New("scene: nil node")
	}
	if parent == nil {
		parent = s.root
	}
	if !s.attached(parent) {
		return fmt.Errorf("%w: %s", ErrForeignNode, parent.Name())
	}
	return parent.AddChild(n)
}

func (s *scene) AddModel(m model.Model, parent node.Node) error {
	if m == nil {
		return errors.New("scene: nil model")
	}
	return s.AddRenderable(m, parent)
}

func (s *scene) AddRenderable(r render.RenderableNode, parent node.Node) error {
	if err := s.AddNode(r, parent); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.ContainsFunc(s.renderables, func(e render.RenderableNode) bool { return e.ID() == r.ID() }) {
		s.renderables = append(s.renderables, r)
	}
	return nil
}

func (s *scene) AddWater(b water.Body) error {
	if b == nil {
		return errors.New("scene: nil water body")
	}
	s.mu.RLock()
	dup := slices.ContainsFunc(s.waters, func(e water.Body) bool { return e.ID() == b.ID() })
	s.mu.RUnlock()
	if dup {
		return fmt.Errorf("scene: water body %s already added", b.Name())
	}
	if err := s.root.AddChild(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waters = append(s.waters, b)
	return nil
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveNode(n node.Node) bool {
	if n == nil || n == s.root || !node.IsAncestor(s.root, n) {
		return false
	}
	removed := map[uuid.UUID]bool{}
	node.Walk(n, func(child node.Node, _ int) bool {
		removed[child.ID()] = true
		return true
	})
	n.Parent().RemoveChild(n)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderables = slices.DeleteFunc(s.renderables, func(r render.RenderableNode) bool { return removed[r.ID()] })
	s.waters = slices.DeleteFunc(s.waters, func(b water.Body) bool { return removed[b.ID()] })
	return true
}

func (s *scene) Renderables() []render.RenderableNode {
	s.mu.RLock()
	list := slices.Clone(s.renderables)
	s.mu.RUnlock()
	return slices.DeleteFunc(list, func(r render.RenderableNode) bool { return !s.attached(r) })
}

func (s *scene) Waters() []water.Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.waters)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) Walk(fn func(n node.Node, depth int) bool) {
	node.Walk(s.root, fn)
}

func (s *scene) ShadowConfig() light.ShadowConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow
}

func (s *scene) SetShadowConfig(cfg light.ShadowConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadow = cfg
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	hook := s.update
	s.mu.RUnlock()
	if hook != nil {
		hook(s, deltaTime)
	}

	// Resolve every world matrix now so the passes only read cached values.
	node.Walk(s.root, func(n node.Node, _ int) bool {
		n.WorldMatrix()
		return true
	})

	s.mu.Lock()
	s.time += deltaTime
	s.frameTime = deltaTime
	if deltaTime > 0 {
		s.fps = 1 / deltaTime
	}
	s.mu.Unlock()
	s.refresh()
}

// refresh recomputes the cached frame uniforms.
func (s *scene) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cam := s.camera
	_, count := light.MarshalLights(s.lights)
	s.uniforms = render.Uniforms{
		View:           cam.View(),
		Projection:     cam.Projection(),
		Shadow:         s.shadowMatrixLocked(),
		ClipPlane:      render.MainClipPlane,
		CameraPosition: cam.Position(),
		Time:           s.time,
	}
	s.fragment = render.FragmentUniforms{
		CameraPosition: cam.Position(),
		LightCount:     count,
	}
}

func (s *scene) shadowMatrixLocked() common.Mat4 {
	sun := light.FindDirectional(s.lights)
	if sun == nil {
		return common.Identity()
	}
	return light.ShadowMatrix(sun, s.shadow)
}

func (s *scene) Uniforms() render.Uniforms {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uniforms
}

func (s *scene) ReflectionUniforms(height float32) render.Uniforms {
	s.mu.RLock()
	primary := s.camera
	u := s.uniforms
	s.mu.RUnlock()

	s.reflection.ReflectFrom(primary)
	u.View = s.reflection.View()
	u.Projection = s.reflection.Projection()
	u.CameraPosition = s.reflection.Position()
	u.ClipPlane = render.ReflectionClipPlane(height)
	return u
}

func (s *scene) FragmentUniforms() render.FragmentUniforms {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragment
}

func (s *scene) ShadowLight() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return light.FindDirectional(s.lights)
}

func (s *scene) LightBuffer() ([]byte, uint32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return light.MarshalLights(s.lights)
}

func (s *scene) Time() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *scene) FrameTime() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameTime
}

func (s *scene) FPS() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fps
}
