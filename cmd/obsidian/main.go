// obsidian - deferred renderer demo
// Renders a lake scene: instanced cubes and a sphere over a reflective water plane under a
// procedural sky, lit by a sun, an ambient term and scattered point lights.
//
// Controls:
//
//	Right/middle drag - Look around
//	Scroll            - Move forward/back
//	W/A/S/D           - Move
//	Q/E               - Move down/up
//	1/2/3             - Mid-day, sunset, morning sky
//	Esc               - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine"
	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/camera"
	"github.com/Carmen-Shannon/obsidian/engine/config"
	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/wgpu_device"
	"github.com/Carmen-Shannon/obsidian/engine/light"
	"github.com/Carmen-Shannon/obsidian/engine/logging"
	"github.com/Carmen-Shannon/obsidian/engine/model"
	"github.com/Carmen-Shannon/obsidian/engine/node"
	"github.com/Carmen-Shannon/obsidian/engine/renderer"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/scene"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
	"github.com/Carmen-Shannon/obsidian/engine/skybox"
	"github.com/Carmen-Shannon/obsidian/engine/water"
	"github.com/Carmen-Shannon/obsidian/engine/window"
)

var (
	configPath  = flag.String("config", "", "Path to a TOML or YAML config file")
	modelID     = flag.String("model", "", "glTF model to place on the shore, relative to the assets dir")
	pointLights = flag.Int("lights", 8, "Number of scattered point lights")
	seed        = flag.Uint64("seed", 1, "Seed for the point light layout")
	software    = flag.Bool("software", false, "Force the software fallback adapter")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "obsidian - deferred renderer demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: obsidian [options]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}
	applyLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal("obsidian stopped", "err", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func applyLogging(cfg *config.Config) {
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		logging.Warn("unknown log level", "level", cfg.Logging.Level)
	}
	logging.SetReportCaller(cfg.Logging.ReportCaller)
}

func run(ctx context.Context, cfg *config.Config) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}

	device, surface, err := wgpu_device.New(win.SurfaceDescriptor(), wgpu_device.WithFallbackAdapter(*software))
	if err != nil {
		return err
	}
	presentMode := gpu.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = gpu.PresentModeUncapped
	}
	gctx, err := gpu.NewGraphicsContext(device, surface, gpu.WithDrawableSize(win.Size()), gpu.WithPresentMode(presentMode))
	if err != nil {
		return err
	}
	defer gctx.Release()
	logging.Info("graphics ready", "adapter", device.Name(), "size", win.Size())

	lib, err := shaderLibrary(cfg)
	if err != nil {
		return err
	}
	res, err := resource.NewManager(gctx,
		resource.WithLibrary(lib),
		resource.WithShadowBias(resource.ShadowBias{
			Constant:   cfg.Shadow.DepthBias,
			SlopeScale: cfg.Shadow.SlopeScale,
			Clamp:      cfg.Shadow.BiasClamp,
		}),
	)
	if err != nil {
		return err
	}
	defer res.Release()

	if cfg.Shaders.HotReload && cfg.Shaders.Dir != "" {
		go func() {
			if err := res.WatchShaders(ctx, cfg.Shaders.Dir); err != nil {
				logging.Warn("shader hot reload disabled", "err", err)
			}
		}()
	}
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config, err error) {
				if err != nil {
					logging.Warn("config reload failed", "err", err)
					return
				}
				applyLogging(next)
			})
			if err != nil {
				logging.Warn("config watch disabled", "err", err)
			}
		}()
	}

	demo, err := buildScene(gctx, res, cfg)
	if err != nil {
		return err
	}
	defer demo.release()
	bindInput(win, demo)

	r, err := renderer.NewRenderer(gctx, res,
		renderer.WithScene(demo.scene),
		renderer.WithComposition(cfg.Renderer.Composition),
		renderer.WithClearColor(cfg.Renderer.ClearColor),
		renderer.WithParallelEncoding(cfg.Renderer.ParallelEncoding),
	)
	if err != nil {
		return err
	}
	defer r.Release()
	r.SetScene(demo.scene)

	e, err := engine.NewEngine(r,
		engine.WithWindow(win),
		engine.WithFrameRate(cfg.Renderer.TargetFrameRate),
		engine.WithProfiling(cfg.Renderer.Profiler),
	)
	if err != nil {
		return err
	}
	return e.Run(ctx)
}

func shaderLibrary(cfg *config.Config) (shader.Library, error) {
	if cfg.Shaders.Dir != "" {
		return shader.LoadDir(cfg.Shaders.Dir)
	}
	return shader.DefaultLibrary()
}

// lakeScene is the demo content and the handles the input callbacks drive.
type lakeScene struct {
	scene      scene.Scene
	controller camera.CameraController
	sky        skybox.Skybox
	lake       water.Body
	cubes      model.Model
	models     []model.Model
}

func buildScene(ctx gpu.GraphicsContext, res resource.Manager, cfg *config.Config) (*lakeScene, error) {
	cam := camera.NewCamera(
		camera.WithFOV(cfg.Camera.FOV),
		camera.WithClip(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithAspect(ctx.DrawableSize().Aspect()),
		camera.WithNode(node.WithPosition(common.Vec3{0, 4, -18})),
	)
	d := &lakeScene{controller: camera.NewCameraController(cam)}

	sky, err := skybox.NewSkybox(ctx, res, skybox.WithSettings(skybox.MidDay))
	if err != nil {
		return nil, err
	}
	d.sky = sky

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	lights := []light.Light{
		light.NewLight(light.LightTypeDirectional, light.WithPosition(0, 200, -150), light.WithIntensity(1.2)),
	}
	lights = append(lights, light.CreatePointLights(*pointLights, common.Vec3{-20, 1, -20}, common.Vec3{20, 4, 20}, rng)...)

	d.scene = scene.NewScene(
		scene.WithName("lake"),
		scene.WithCamera(cam),
		scene.WithSkybox(sky),
		scene.WithAmbient(common.Vec3{0.6, 0.7, 0.8}, 0.15),
		scene.WithLights(lights...),
		scene.WithShadowConfig(light.ShadowConfig{
			HalfExtent: cfg.Shadow.HalfExtent,
			Near:       cfg.Shadow.Near,
			Far:        cfg.Shadow.Far,
			Distance:   cfg.Shadow.Distance,
		}),
		scene.WithUpdateFunc(d.update),
	)

	lake, err := water.NewBody(ctx, res, water.WithNode(node.WithName("lake"), node.WithPosition(common.Vec3{0, -0.5, 0})))
	if err != nil {
		return nil, err
	}
	d.lake = lake
	if err := d.scene.AddWater(lake); err != nil {
		return nil, err
	}

	loader := asset.Chain(asset.NewPrimitiveLoader(), asset.NewGLTFLoader(cfg.Assets.Dir))
	transforms := make([]node.Transform, 0, 16)
	for i := range 16 {
		t := node.NewTransform()
		t.Position = common.Vec3{float32(i%4)*3 - 4.5, 1, float32(i/4)*3 - 4.5}
		transforms = append(transforms, t)
	}
	cubes, err := model.NewModel(ctx, res, loader, model.WithAsset("cube"), model.WithInstanceTransforms(transforms...))
	if err != nil {
		return nil, err
	}
	d.cubes = cubes

	sphere, err := model.NewModel(ctx, res, loader,
		model.WithAsset("sphere"),
		model.WithShadingModel(resource.ShadingIBL),
		model.WithNode(node.WithPosition(common.Vec3{0, 4, 6}), node.WithScale(common.Vec3{3, 3, 3})),
	)
	if err != nil {
		return nil, err
	}
	d.models = append(d.models, cubes, sphere)

	if *modelID != "" {
		shore, err := model.NewModel(ctx, res, loader, model.WithAsset(*modelID), model.WithNode(node.WithPosition(common.Vec3{-8, 0, 8})))
		if err != nil {
			return nil, err
		}
		d.models = append(d.models, shore)
	}

	for _, m := range d.models {
		if err := d.scene.AddModel(m, nil); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// update spins every cube instance and eases the camera toward its goal.
func (d *lakeScene) update(s scene.Scene, dt float32) {
	d.controller.Update(dt)
	angle := s.Time() + dt
	for i := range d.cubes.InstanceCount() {
		t, err := d.cubes.InstanceTransform(i)
		if err != nil {
			return
		}
		t.Rotation = common.Vec3{angle * 0.3, angle + float32(i)*0.2, 0}
		if err = d.cubes.SetInstanceTransform(i, t); err != nil {
			logging.Warn("instance update failed", "index", i, "err", err)
			return
		}
	}
}

func (d *lakeScene) release() {
	for _, m := range d.models {
		m.Release()
	}
	d.lake.Release()
	d.sky.Release()
}

func (d *lakeScene) setSky(settings skybox.Settings) {
	if err := d.sky.SetSettings(settings); err != nil {
		logging.Warn("sky preset rejected", "err", err)
	}
}

func bindInput(win window.Window, d *lakeScene) {
	win.SetDragCallback(d.controller.Pan)
	win.SetScrollCallback(d.controller.Pinch)
	win.SetKeyDownCallback(func(key window.Key) {
		switch key {
		case window.KeyW:
			d.controller.Move(0, 0, 1)
		case window.KeyS:
			d.controller.Move(0, 0, -1)
		case window.KeyA:
			d.controller.Move(-1, 0, 0)
		case window.KeyD:
			d.controller.Move(1, 0, 0)
		case window.KeyQ:
			d.controller.Move(0, -1, 0)
		case window.KeyE:
			d.controller.Move(0, 1, 0)
		case window.Key1:
			d.setSky(skybox.MidDay)
		case window.Key2:
			d.setSky(skybox.Sunset)
		case window.Key3:
			d.setSky(skybox.Morning)
		}
	})
}
