package renderer

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackendImpl implements rendererBackend on a WebGPU device and queue.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ rendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend wraps an existing device. The queue is taken from the device.
func newWGPURendererBackend(device *wgpu.Device) *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{
		mu:     &sync.Mutex{},
		device: device,
		queue:  device.GetQueue(),
	}
}

func (b *wgpuRendererBackendImpl) CreateBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device.CreateBuffer(descriptor)
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) ReleaseBuffer(buf *wgpu.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf.Release()
}
