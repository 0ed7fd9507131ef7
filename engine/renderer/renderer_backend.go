package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU RendererBackendType = iota
)

// rendererBackend is the GPU API surface the Renderer needs to host skinning buffers.
type rendererBackend interface {
	// CreateBuffer allocates a GPU buffer.
	//
	// Parameters:
	//   - descriptor: the buffer label, size and usage
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: error if the device rejects the allocation
	CreateBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error)

	// WriteBuffer queues a write of data into buf at offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into buf
	//   - data: the bytes to write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// ReleaseBuffer frees a buffer created by CreateBuffer.
	//
	// Parameters:
	//   - buf: the buffer to release
	ReleaseBuffer(buf *wgpu.Buffer)
}
