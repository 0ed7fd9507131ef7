package renderer

import (
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithDevice sets the WebGPU device used to allocate and write buffers.
//
// Parameters:
//   - device: the device
//
// Returns:
//   - RendererBuilderOption: a function that applies the device option to a renderer
func WithDevice(device *wgpu.Device) RendererBuilderOption {
	return func(r *renderer) {
		r.device = device
	}
}

// WithLogger sets the logger receiving renderer diagnostics.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// withBackend replaces the GPU backend. Used by tests.
func withBackend(backend rendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}
