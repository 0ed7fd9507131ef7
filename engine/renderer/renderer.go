package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/bind_group_provider"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoDevice is returned by NewRenderer when no GPU device was supplied for a WGPU backend.
var ErrNoDevice = errors.New("renderer has no device")

// skinningGlobalsSize is the byte size of the SkinningGlobals uniform.
const skinningGlobalsSize = 16

// minStorageBufferSize keeps empty skeletons from requesting zero-sized buffers.
const minStorageBufferSize = 64

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu      *sync.Mutex
	backend rendererBackend
	logger  *log.Logger
	device  *wgpu.Device

	// sizes holds the allocated byte size of every buffer this renderer created.
	sizes map[*wgpu.Buffer]uint64
}

// Renderer is the GPU sink for skinning data. It allocates the bone storage buffer and the
// skinning globals uniform of an animator's output provider, and uploads staged BufferWrites.
// When the animator grows, call ResizeBoneBuffers before WriteBuffers.
type Renderer interface {
	// InitBoneBuffers creates the bone matrix storage buffer and the skinning globals uniform
	// and stores them on provider at the given bindings.
	// Buffers this renderer previously created at those bindings are released.
	//
	// Parameters:
	//   - provider: the animator output provider
	//   - boneBinding: the binding index for the bone matrix buffer
	//   - globalsBinding: the binding index for the SkinningGlobals uniform
	//   - boneBufferSize: the byte size of the bone buffer, usually Animator.BoneBufferSize()
	//
	// Returns:
	//   - error: error if a buffer could not be created
	InitBoneBuffers(provider bind_group_provider.BindGroupProvider, boneBinding, globalsBinding int, boneBufferSize uint64) error

	// ResizeBoneBuffers recreates the bone buffers of an animator whose capacity grew since they
	// were sized, then clears its rebuild flag. It does nothing when no rebuild is pending.
	//
	// Parameters:
	//   - a: the animator owning the output provider
	//   - boneBinding: the binding index for the bone matrix buffer
	//   - globalsBinding: the binding index for the SkinningGlobals uniform
	//
	// Returns:
	//   - bool: true if the buffers were recreated
	//   - error: error if a buffer could not be created
	ResizeBoneBuffers(a animator.Animator, boneBinding, globalsBinding int) (bool, error)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Writes whose binding has no buffer, or that run past the end of the buffer, are skipped.
	//
	// Parameters:
	//   - writes: the staged writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given backend type.
//
// Parameters:
//   - backendType: the GPU backend
//   - options: a variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrNoDevice if the WGPU backend was selected without WithDevice
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:     &sync.Mutex{},
		logger: common.NopLogger(),
		sizes:  make(map[*wgpu.Buffer]uint64),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			if r.device == nil {
				return nil, ErrNoDevice
			}
			r.backend = newWGPURendererBackend(r.device)
		default:
			return nil, fmt.Errorf("unsupported renderer backend %d", backendType)
		}
	}
	return r, nil
}

func (r *renderer) InitBoneBuffers(provider bind_group_provider.BindGroupProvider, boneBinding, globalsBinding int, boneBufferSize uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initBoneBuffers(provider, boneBinding, globalsBinding, boneBufferSize)
}

// initBoneBuffers allocates both buffers before replacing either. Callers must hold mu.
func (r *renderer) initBoneBuffers(provider bind_group_provider.BindGroupProvider, boneBinding, globalsBinding int, boneBufferSize uint64) error {
	bones, err := r.createBuffer(NewBoneBufferDescriptor(provider.Label(), boneBufferSize))
	if err != nil {
		return fmt.Errorf("failed to create bone buffer: %w", err)
	}
	globals, err := r.createBuffer(&wgpu.BufferDescriptor{
		Label:            provider.Label() + " Skinning Globals",
		Size:             skinningGlobalsSize,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		r.releaseBuffer(bones)
		return fmt.Errorf("failed to create skinning globals buffer: %w", err)
	}

	r.releaseBuffer(provider.Buffer(boneBinding))
	r.releaseBuffer(provider.Buffer(globalsBinding))
	provider.SetBuffer(boneBinding, bones)
	provider.SetBuffer(globalsBinding, globals)
	r.logger.Debug("bone buffers created", "provider", provider.Label(), "bytes", boneBufferSize)
	return nil
}

func (r *renderer) ResizeBoneBuffers(a animator.Animator, boneBinding, globalsBinding int) (bool, error) {
	if !a.NeedsRebuild() {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initBoneBuffers(a.OutputBindGroupProvider(), boneBinding, globalsBinding, a.BoneBufferSize()); err != nil {
		return false, err
	}
	a.ClearNeedsRebuild()
	r.logger.Debug("bone buffers resized", "provider", a.OutputBindGroupProvider().Label(), "instances", a.MaxInstances())
	return true, nil
}

func (r *renderer) createBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	buf, err := r.backend.CreateBuffer(descriptor)
	if err != nil {
		return nil, err
	}
	r.sizes[buf] = descriptor.Size
	return buf, nil
}

// releaseBuffer frees buf if this renderer created it. Buffers supplied by the caller are left alone.
func (r *renderer) releaseBuffer(buf *wgpu.Buffer) {
	if buf == nil {
		return
	}
	if _, ok := r.sizes[buf]; !ok {
		return
	}
	delete(r.sizes, buf)
	r.backend.ReleaseBuffer(buf)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			r.logger.Debug("skipping write to unbound buffer", "provider", w.Provider.Label(), "binding", w.Binding)
			continue
		}
		if size, ok := r.sizes[buf]; ok && w.End() > size {
			r.logger.Warn("skipping write past end of buffer", "provider", w.Provider.Label(),
				"binding", w.Binding, "size", size, "end", w.End())
			continue
		}
		r.backend.WriteBuffer(buf, w.Offset, w.Data)
	}
}

// NewBoneBufferDescriptor describes a storage buffer for skinning matrices.
//
// Parameters:
//   - label: the debug label prefix
//   - size: the requested size in bytes
//
// Returns:
//   - *wgpu.BufferDescriptor: the descriptor
func NewBoneBufferDescriptor(label string, size uint64) *wgpu.BufferDescriptor {
	return &wgpu.BufferDescriptor{
		Label:            label + " Bone Matrices",
		Size:             max(size, minStorageBufferSize),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}
