package animator

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	boneBinding    = 1
	globalsBinding = 0
)

func TestAnimatorWithoutModel(t *testing.T) {
	a := NewAnimator()
	_, err := a.AddInstance()
	assert.ErrorIs(t, err, ErrNoModel)
	assert.Equal(t, 0, a.InstanceCount())
}

func TestAnimatorAddInstanceGrows(t *testing.T) {
	a := NewAnimator(WithModel(twoBoneModel(t)), WithMaxInstances(2))
	assert.Equal(t, 2, a.MaxInstances())
	assert.Equal(t, uint64(2*2*64), a.BoneBufferSize())

	for want := range 2 {
		idx, err := a.AddInstance()
		require.NoError(t, err)
		assert.Equal(t, want, idx)
	}
	assert.False(t, a.NeedsRebuild())

	for want := 2; want < 3; want++ {
		idx, err := a.AddInstance()
		require.NoError(t, err)
		assert.Equal(t, want, idx)
	}
	assert.Equal(t, 3, a.InstanceCount())
	assert.Equal(t, 8, a.MaxInstances())
	assert.Equal(t, uint64(8*2*64), a.BoneBufferSize())
	assert.NotNil(t, a.Player(2))
	assert.Nil(t, a.Player(3))
	assert.True(t, a.NeedsRebuild())
}

func TestAnimatorClearNeedsRebuildRestagesAll(t *testing.T) {
	a := NewAnimator(WithModel(twoBoneModel(t)), WithMaxInstances(1))
	for range 3 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	require.True(t, a.NeedsRebuild())
	a.Flush(boneBinding, globalsBinding)
	a.StagedWriteData()

	a.ClearNeedsRebuild()
	assert.False(t, a.NeedsRebuild())
	assert.Equal(t, 3, a.Flush(boneBinding, globalsBinding))

	writes := a.StagedWriteData()
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Len(t, writes[0].Data, 3*2*64)
}

func TestAnimatorUpdateFeedsSink(t *testing.T) {
	m := twoBoneModel(t)
	sink := NewStagingSink(m.Skeleton().BoneCount())
	a := NewAnimator(WithModel(m), WithSink(sink))

	for range 2 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	require.True(t, a.PlayAnimation(1, "Wave"))
	assert.False(t, a.PlayAnimation(0, "Missing"))
	assert.False(t, a.PlayAnimation(5, "Wave"))

	a.Update(0.5)

	assert.Equal(t, a.Player(0).BoneMatrices(), sink.Bones(0))
	assert.Equal(t, a.Player(1).BoneMatrices(), sink.Bones(1))
	assert.NotEqual(t, sink.Bones(0), sink.Bones(1))
	assert.Nil(t, sink.Bones(2))
	assert.Len(t, sink.Bytes(), 2*2*64)
}

func TestAnimatorParallelMatchesSerial(t *testing.T) {
	m := twoBoneModel(t)
	serial := NewAnimator(WithModel(m))
	parallel := NewAnimator(WithModel(m), WithWorkers(4))

	const instances = 23
	for i := range instances {
		for _, a := range []Animator{serial, parallel} {
			idx, err := a.AddInstance()
			require.NoError(t, err)
			clip := "Wave"
			if i%3 == 0 {
				clip = "Spin"
			}
			require.True(t, a.PlayAnimation(idx, clip))
			a.SetAnimationSpeed(idx, 1+float64(i)/10)
		}
	}

	for range 5 {
		serial.Update(1.0 / 60)
		parallel.Update(1.0 / 60)
	}

	for i := range instances {
		assert.Equal(t, serial.Player(i).CurrentTick(), parallel.Player(i).CurrentTick(), "instance %d", i)
		assert.Equal(t, serial.Player(i).BoneMatrices(), parallel.Player(i).BoneMatrices(), "instance %d", i)
	}
}

func TestAnimatorFlushStagesDirtyRange(t *testing.T) {
	provider := bind_group_provider.NewBindGroupProvider("bones")
	a := NewAnimator(WithModel(twoBoneModel(t)), WithOutputBindGroupProvider(provider))
	for range 3 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	require.True(t, a.PlayAnimation(2, "Wave"))
	a.Update(0.25)

	assert.Equal(t, 3, a.Flush(boneBinding, globalsBinding))
	writes := a.StagedWriteData()
	require.Len(t, writes, 2)

	bones := writes[0]
	assert.Same(t, provider, bones.Provider)
	assert.Equal(t, boneBinding, bones.Binding)
	assert.Equal(t, uint64(0), bones.Offset)
	require.Len(t, bones.Data, 3*2*64)
	want := common.SliceToBytes(a.Player(2).BoneMatrices())
	assert.Equal(t, want, bones.Data[2*2*64:])

	globals := writes[1]
	assert.Equal(t, globalsBinding, globals.Binding)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(globals.Data[0:4]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(globals.Data[4:8]))

	// Nothing changed since the last flush.
	assert.Equal(t, 0, a.Flush(boneBinding, globalsBinding))
	assert.Empty(t, a.StagedWriteData())

	// Seeking one instance stages only its slot.
	a.SetAnimationTime(1, 0.1)
	assert.Equal(t, 1, a.Flush(boneBinding, globalsBinding))
	writes = a.StagedWriteData()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(1*2*64), writes[0].Offset)
	assert.Len(t, writes[0].Data, 2*64)
}

func TestAnimatorRemoveInstanceSwaps(t *testing.T) {
	a := NewAnimator(WithModel(twoBoneModel(t)))
	for range 3 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	last := a.Player(2)
	a.Flush(boneBinding, globalsBinding)
	a.StagedWriteData()

	moved, swapped := a.RemoveInstance(0)
	assert.True(t, swapped)
	assert.Equal(t, 2, moved)
	assert.Equal(t, 2, a.InstanceCount())
	assert.Same(t, last, a.Player(0))

	assert.Equal(t, 1, a.Flush(boneBinding, globalsBinding))
	writes := a.StagedWriteData()
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(writes[1].Data[4:8]))

	_, swapped = a.RemoveInstance(1)
	assert.False(t, swapped)
	_, swapped = a.RemoveInstance(7)
	assert.False(t, swapped)
	assert.Equal(t, 1, a.InstanceCount())
}

func TestAnimatorRemoveTrimsDirtyRange(t *testing.T) {
	a := NewAnimator(WithModel(twoBoneModel(t)))
	for range 2 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	a.Flush(boneBinding, globalsBinding)
	a.StagedWriteData()

	a.SetAnimationTime(1, 0.2)
	a.RemoveInstance(1)
	assert.Equal(t, 0, a.Flush(boneBinding, globalsBinding))
}
