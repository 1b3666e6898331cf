package wgpu_device

type deviceConfig struct {
	label                string
	forceFallbackAdapter bool
}

// DeviceBuilderOption is a functional option for configuring the device during construction.
type DeviceBuilderOption func(*deviceConfig)

// WithLabel sets the debug label of the device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - DeviceBuilderOption: functional option to set the label
func WithLabel(label string) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.label = label
	}
}

// WithFallbackAdapter forces the software fallback adapter, useful on machines without a GPU.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - DeviceBuilderOption: functional option to select the adapter
func WithFallbackAdapter(force bool) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.forceFallbackAdapter = force
	}
}
