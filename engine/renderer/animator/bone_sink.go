package animator

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// BoneSink receives the finished skinning matrices of one instance after every Animator update.
// Implementations must copy bones if they retain them; the slice is reused by the player.
type BoneSink interface {
	// WriteBones stores the bone matrices of an instance.
	//
	// Parameters:
	//   - instance: the instance index within the Animator
	//   - bones: the skinning matrices indexed by bone
	WriteBones(instance int, bones []mgl32.Mat4)
}

// StagingSink is a BoneSink that mirrors the GPU bone buffer layout in CPU memory.
// Instance i occupies matrices [i*boneCount, (i+1)*boneCount).
type StagingSink struct {
	mu        sync.RWMutex
	boneCount int
	matrices  []mgl32.Mat4
}

var _ BoneSink = &StagingSink{}

// NewStagingSink creates a StagingSink for instances of boneCount bones.
//
// Parameters:
//   - boneCount: the number of bones per instance
//
// Returns:
//   - *StagingSink: the sink
func NewStagingSink(boneCount int) *StagingSink {
	return &StagingSink{boneCount: boneCount}
}

func (s *StagingSink) WriteBones(instance int, bones []mgl32.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := (instance + 1) * s.boneCount
	if end > len(s.matrices) {
		grown := make([]mgl32.Mat4, end)
		copy(grown, s.matrices)
		s.matrices = grown
	}
	copy(s.matrices[instance*s.boneCount:end], bones)
}

// Bones returns a copy of the matrices stored for an instance, or nil if none were written.
//
// Parameters:
//   - instance: the instance index
//
// Returns:
//   - []mgl32.Mat4: the bone matrices
func (s *StagingSink) Bones(instance int) []mgl32.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := instance*s.boneCount, (instance+1)*s.boneCount
	if instance < 0 || end > len(s.matrices) {
		return nil
	}
	out := make([]mgl32.Mat4, s.boneCount)
	copy(out, s.matrices[start:end])
	return out
}

// Bytes returns a copy of the whole staging area in GPU upload layout.
//
// Returns:
//   - []byte: the little-endian matrix bytes
func (s *StagingSink) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw := common.SliceToBytes(s.matrices)
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}
