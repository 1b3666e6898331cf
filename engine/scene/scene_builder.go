package scene

import (
	"github.com/Carmen-Shannon/obsidian/common"
	"github.com/Carmen-Shannon/obsidian/engine/camera"
	"github.com/Carmen-Shannon/obsidian/engine/light"
	"github.com/Carmen-Shannon/obsidian/engine/skybox"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active.Store(active)
	}
}

// WithCamera sets the primary camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		if cam != nil {
			s.camera = cam
		}
	}
}

// WithUpdateFunc sets the per-frame user hook.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateFunc(fn UpdateFunc) SceneBuilderOption {
	return func(s *scene) {
		s.update = fn
	}
}

// WithSkybox sets the skybox.
//
// Parameters:
//   - sky: the skybox
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSkybox(sky skybox.Skybox) SceneBuilderOption {
	return func(s *scene) {
		s.sky = sky
	}
}

// WithLights appends lights in order.
//
// Parameters:
//   - lights: the lights
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.lights = append(s.lights, l)
			}
		}
	}
}

// WithAmbient appends an ambient light of the given color and intensity.
//
// Parameters:
//   - color: the ambient color
//   - intensity: the ambient intensity
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbient(color common.Vec3, intensity float32) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, light.NewLight(light.LightTypeAmbient,
			light.WithColor(color[0], color[1], color[2]),
			light.WithIntensity(intensity),
		))
	}
}

// WithShadowConfig sets the shadow projection settings.
//
// Parameters:
//   - cfg: the settings
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowConfig(cfg light.ShadowConfig) SceneBuilderOption {
	return func(s *scene) {
		s.shadow = cfg
	}
}
