package model

import (
	"github.com/Carmen-Shannon/obsidian/engine/asset"
	"github.com/Carmen-Shannon/obsidian/engine/node"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithAsset sets the identifier passed to the asset loader.
//
// Parameters:
//   - id: the asset identifier, e.g. "cube" or "fox.glb"
//
// Returns:
//   - ModelBuilderOption: a function that applies the asset option to a model
func WithAsset(id string) ModelBuilderOption {
	return func(m *model) {
		m.assetID = id
	}
}

// WithData uploads data directly instead of asking the loader.
//
// Parameters:
//   - data: the model data
//
// Returns:
//   - ModelBuilderOption: a function that applies the data option to a model
func WithData(data *asset.ModelData) ModelBuilderOption {
	return func(m *model) {
		m.data = data
		if m.assetID == "" && data != nil {
			m.assetID = data.Name
		}
	}
}

// WithNode applies node options (name, position, rotation, scale) to the model's node.
//
// Parameters:
//   - options: the node options
//
// Returns:
//   - ModelBuilderOption: a function that applies the node options to a model
func WithNode(options ...node.NodeBuilderOption) ModelBuilderOption {
	return func(m *model) {
		m.nodeOptions = append(m.nodeOptions, options...)
	}
}

// WithInstances sets the number of instance slots. Every slot starts at the identity transform.
//
// Parameters:
//   - count: the slot count; values below one are ignored
//
// Returns:
//   - ModelBuilderOption: a function that applies the instance count to a model
func WithInstances(count int) ModelBuilderOption {
	return func(m *model) {
		if count < 1 {
			return
		}
		m.transforms = make([]node.Transform, count)
		for i := range m.transforms {
			m.transforms[i] = node.NewTransform()
		}
	}
}

// WithInstanceTransforms sets one instance slot per transform.
//
// Parameters:
//   - transforms: the initial slot transforms
//
// Returns:
//   - ModelBuilderOption: a function that applies the instance transforms to a model
func WithInstanceTransforms(transforms ...node.Transform) ModelBuilderOption {
	return func(m *model) {
		if len(transforms) > 0 {
			m.transforms = append([]node.Transform(nil), transforms...)
		}
	}
}

// WithShadingModel selects the G-buffer fragment function, "fragment_PBR" or "fragment_IBL".
//
// Parameters:
//   - name: the shading model
//
// Returns:
//   - ModelBuilderOption: a function that applies the shading model to a model
func WithShadingModel(name string) ModelBuilderOption {
	return func(m *model) {
		m.shadingModel = name
	}
}

// WithTiling sets how often textures repeat across the UV range.
//
// Parameters:
//   - tiling: the tiling factor
//
// Returns:
//   - ModelBuilderOption: a function that applies the tiling to a model
func WithTiling(tiling uint32) ModelBuilderOption {
	return func(m *model) {
		m.tiling = max(tiling, 1)
	}
}
