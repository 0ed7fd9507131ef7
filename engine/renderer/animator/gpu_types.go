package animator

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUBoneMatrixSource is the canonical WGSL definition of the BoneMatrix struct.
// Matches GPUBoneMatrix layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/bone_matrix.wgsl
var GPUBoneMatrixSource string

// GPUBoneMatrix is the GPU-aligned representation of one skinning matrix.
// Size: 64 bytes (mat4x4<f32>, column-major).
type GPUBoneMatrix struct {
	Matrix [16]float32 // offset 0, size 64 (mat4x4<f32>)
}

// NewGPUBoneMatrix wraps a skinning matrix for upload.
//
// Parameters:
//   - m: the column-major matrix
//
// Returns:
//   - GPUBoneMatrix: the GPU representation
func NewGPUBoneMatrix(m mgl32.Mat4) GPUBoneMatrix {
	return GPUBoneMatrix{Matrix: m}
}

// Size returns the size of the GPUBoneMatrix struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUBoneMatrix) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBoneMatrix struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUBoneMatrix) Marshal() []byte {
	buf := make([]byte, 64)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Matrix[i]))
	}
	return buf
}

// GPUSkinningGlobalsSource is the canonical WGSL definition of the SkinningGlobals struct.
// Matches GPUSkinningGlobals layout exactly (16 bytes).
//
//go:embed assets/skinning_globals.wgsl
var GPUSkinningGlobalsSource string

// GPUSkinningGlobals describes how the bone buffer of an Animator is partitioned per instance.
// Size: 16 bytes (uniform aligned).
type GPUSkinningGlobals struct {
	BoneCount     uint32 // offset 0: bones per instance
	InstanceCount uint32 // offset 4: live instances
	_pad0         uint32 // offset 8
	_pad1         uint32 // offset 12
}

// Size returns the size of the GPUSkinningGlobals struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUSkinningGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkinningGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUSkinningGlobals) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], g.BoneCount)
	binary.LittleEndian.PutUint32(buf[4:8], g.InstanceCount)
	return buf
}
