// Package renderer turns a scene into one presented frame: a shadow pass, one reflection pass per
// water body, the G-buffer pass and the composition pass, submitted in that order.
package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/Carmen-Shannon/obsidian/engine/model"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/render"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
	"github.com/Carmen-Shannon/obsidian/engine/water"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	ctx gpu.GraphicsContext
	res resource.Manager

	scene       scene.Scene
	composition bool
	clearColor  gpu.Color

	// workers > 0 encodes passes on the pool instead of the calling goroutine.
	workers int
	pool    worker.DynamicWorkerPool

	bindings frameBindings
	warned   sync.Map
	frames   uint64
}

// Renderer draws the active scene into the surface owned by the graphics context.
//
// Only one frame is in flight at a time. Resize and shader reloads are applied under the same
// lock, so render targets are never rebuilt while a frame is being encoded.
type Renderer interface {
	// Scene returns the scene drawn by RenderFrame, or nil.
	Scene() scene.Scene

	// SetScene replaces the scene drawn by RenderFrame. nil stops rendering.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// RenderFrame updates the scene by deltaTime and draws one frame.
	//
	// With no active scene, a zero-sized surface or no presentable image the frame is skipped
	// and nil is returned. Models whose asset failed to load are skipped and reported once.
	// Any other failure abandons the frame without submitting anything.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - error: the pass failure that abandoned the frame
	RenderFrame(deltaTime float32) error

	// Resize reconfigures the surface and rebuilds every size-dependent render target.
	// A zero size suspends rendering until a non-zero size arrives.
	//
	// Parameters:
	//   - size: the new drawable size in pixels
	//
	// Returns:
	//   - error: error if the surface or a render target could not be rebuilt
	Resize(size gpu.Size) error

	// Resources returns the resource manager the renderer draws with.
	Resources() resource.Manager

	// Frames returns how many frames were presented.
	Frames() uint64

	// Release frees the per-frame buffers and bind groups owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer over a graphics context and the resource manager built on it.
//
// Parameters:
//   - ctx: the graphics context
//   - res: the resource manager
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if ctx or res is missing
func NewRenderer(ctx gpu.GraphicsContext, res resource.Manager, options ...RendererBuilderOption) (Renderer, error) {
	if ctx == nil || res == nil {
		return nil, errors.New("renderer: graphics context and resource manager are required")
	}
	r := &renderer{
		ctx:         ctx,
		res:         res,
		composition: true,
		clearColor:  gpu.Color{R: 0.66, G: 0.9, B: 0.96, A: 1},
	}
	for _, opt := range options {
		opt(r)
	}

	if r.workers > 0 {
		// Workers outlive a frame; the per-frame barrier is a WaitGroup.
		r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	}
	return r, nil
}

func (r *renderer) Scene() scene.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

func (r *renderer) SetScene(s scene.Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scene = s
	if s != nil {
		s.Camera().SetAspect(r.ctx.DrawableSize().Aspect())
		if err := r.syncWaters(s.Waters()); err != nil {
			logging.Warn("water targets not resized", "err", err)
		}
	}
}

// syncWaters brings every reflection target to the size of the render targets. Bodies built
// before a resize or added to a scene that was inactive during one would otherwise keep a
// stale size.
func (r *renderer) syncWaters(waters []water.Body) error {
	size := r.res.Targets().Size()
	if size.IsZero() {
		return nil
	}
	for _, w := range waters {
		if err := w.Resize(size); err != nil {
			return fmt.Errorf("renderer: water %q resize failed: %w", w.Name(), err)
		}
	}
	return nil
}

func (r *renderer) Resources() resource.Manager {
	return r.res
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) RenderFrame(deltaTime float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Shader edits land between frames; a broken edit keeps the previous pipelines.
	if _, err := r.res.ApplyPending(); err != nil {
		logging.Debug("shader reload rejected", "err", err)
	}

	sc := r.scene
	if sc == nil || !sc.Active() {
		return nil
	}
	size := r.ctx.DrawableSize()
	if size.IsZero() || r.res.Targets().Size().IsZero() {
		return nil
	}

	sc.Update(deltaTime)

	drawable, err := r.ctx.Surface().Acquire()
	if err != nil {
		logging.Debug("frame skipped", "reason", err)
		return nil
	}

	buffers, err := r.encodeFrame(sc, drawable.Texture(), deltaTime)
	if err != nil {
		drawable.Discard()
		return err
	}

	err = r.ctx.Device().Submit(buffers...)
	for _, cb := range buffers {
		cb.Release()
	}
	if err != nil {
		drawable.Discard()
		return fmt.Errorf("renderer: submit failed: %w", err)
	}
	if err := drawable.Present(); err != nil {
		return fmt.Errorf("renderer: present failed: %w", err)
	}
	r.frames++
	return nil
}

// encodeFrame records every pass of the frame and returns the command buffers in submission
// order. On error nothing is returned and every partial buffer is released.
func (r *renderer) encodeFrame(sc scene.Scene, drawable gpu.Texture, deltaTime float32) ([]gpu.CommandBuffer, error) {
	waters := sc.Waters()
	if err := r.syncWaters(waters); err != nil {
		return nil, err
	}
	if err := r.prepareBindings(sc, len(waters)); err != nil {
		return nil, err
	}
	for _, w := range waters {
		w.Update(deltaTime)
	}

	jobs, err := r.buildJobs(sc, waters, drawable)
	if err != nil {
		return nil, err
	}

	buffers := make([]gpu.CommandBuffer, len(jobs))
	errs := make([]error, len(jobs))
	if r.pool == nil {
		for i, job := range jobs {
			if buffers[i], errs[i] = r.encode(job); errs[i] != nil {
				break
			}
		}
	} else {
		var wg sync.WaitGroup
		for i, job := range jobs {
			wg.Add(1)
			r.pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					buffers[i], errs[i] = r.encode(job)
					return nil, errs[i]
				},
			})
		}
		wg.Wait()
	}

	if err := errors.Join(errs...); err != nil {
		for _, cb := range buffers {
			if cb != nil {
				cb.Release()
			}
		}
		return nil, err
	}
	return buffers, nil
}

// encode records one pass on its own command encoder.
func (r *renderer) encode(job passJob) (gpu.CommandBuffer, error) {
	enc, err := r.ctx.Device().CreateCommandEncoder(job.label)
	if err != nil {
		return nil, fmt.Errorf("renderer: %s pass: %w", job.label, err)
	}
	pass, err := enc.BeginRenderPass(job.desc)
	if err != nil {
		enc.Release()
		return nil, fmt.Errorf("renderer: %s pass: %w", job.label, err)
	}

	pass.SetBindGroup(0, job.frame.FrameGroup)
	for _, d := range job.drawables {
		if err := d.Render(pass, job.frame); err != nil {
			if errors.Is(err, model.ErrAssetMissing) {
				r.reportOnce(d, err)
				continue
			}
			_ = pass.End()
			enc.Release()
			return nil, fmt.Errorf("renderer: %s pass: %w", job.label, err)
		}
	}

	if err := pass.End(); err != nil {
		enc.Release()
		return nil, fmt.Errorf("renderer: %s pass: %w", job.label, err)
	}
	cb, err := enc.Finish()
	if err != nil {
		enc.Release()
		return nil, fmt.Errorf("renderer: %s pass: %w", job.label, err)
	}
	return cb, nil
}

// reportOnce logs a skipped renderable the first time it fails.
func (r *renderer) reportOnce(d render.Renderable, err error) {
	key := any(d)
	if n, ok := d.(node.Node); ok {
		key = n.ID()
	}
	if _, seen := r.warned.LoadOrStore(key, struct{}{}); seen {
		return
	}
	logging.Warn("renderable skipped", "err", err)
}

func (r *renderer) Resize(size gpu.Size) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ctx.Resize(size); err != nil {
		return err
	}
	if size.IsZero() {
		return nil
	}
	if err := r.res.Resize(size); err != nil {
		return err
	}
	if r.scene == nil {
		return nil
	}
	if err := r.syncWaters(r.scene.Waters()); err != nil {
		return err
	}
	r.scene.Camera().SetAspect(size.Aspect())
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings.release()
}
