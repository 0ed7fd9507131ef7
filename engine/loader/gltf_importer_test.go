package loader

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-5

func importHumanoid(t *testing.T, sceneRoots []int) model.Model {
	t.Helper()
	data, _ := humanoid(t, sceneRoots, true)
	m, err := newGLTFImporter().ImportReader("fallback", bytes.NewReader(data), false)
	require.NoError(t, err)
	return m
}

func TestImportSkeleton(t *testing.T) {
	m := importHumanoid(t, []int{0})
	skel := m.Skeleton()

	assert.Equal(t, "Hero", m.Name())
	assert.Equal(t, 4, skel.NodeCount())
	assert.Equal(t, []string{"Hips", "Spine", "node_3"}, skel.BoneNames())

	hips, ok := skel.NodeIndex("Hips")
	require.True(t, ok)
	spine, ok := skel.NodeIndex("Spine")
	require.True(t, ok)
	assert.Equal(t, model.NoIndex, skel.Nodes[0].Parent)
	assert.Equal(t, hips, skel.Nodes[spine].Parent)
	assert.True(t, skel.Nodes[hips].Rest.ApproxEqualThreshold(mgl32.Translate3D(0, 1, 0), epsilon))
	assert.False(t, skel.Nodes[0].IsBone())

	spineBone, ok := skel.BoneIndex("Spine")
	require.True(t, ok)
	assert.True(t, skel.BoneOffsets[spineBone].ApproxEqualThreshold(mgl32.Translate3D(0, -1.5, 0), epsilon))

	// The unnamed joint carries a 90 degree turn about z in its rest pose.
	node3, ok := skel.NodeIndex("node_3")
	require.True(t, ok)
	x := skel.Nodes[node3].Rest.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, 0, x.X(), epsilon)
	assert.InDelta(t, 1, x.Y(), epsilon)
}

func TestImportMultipleRootsAddsSyntheticRoot(t *testing.T) {
	m := importHumanoid(t, []int{0, 4})
	skel := m.Skeleton()

	assert.Equal(t, 6, skel.NodeCount())
	assert.Equal(t, syntheticRootName, skel.Nodes[0].Name)
	assert.Len(t, skel.Nodes[0].Children, 2)
	_, ok := skel.NodeIndex("Body")
	assert.True(t, ok)
}

func TestImportSkinOutsideSceneJoinsHierarchy(t *testing.T) {
	m := importHumanoid(t, nil)

	assert.Equal(t, "Armature", m.Skeleton().Nodes[0].Name)
	assert.Equal(t, 3, m.Skeleton().BoneCount())
}

func TestImportAnimations(t *testing.T) {
	m := importHumanoid(t, []int{0})

	assert.Equal(t, []string{"Walk", "animation_1", "Walk_2"}, m.AnimationNames())

	walk, binding := m.Animation(m.GetAnimationIndex("Walk"))
	require.NotNil(t, walk)
	assert.Equal(t, 2.0, walk.DurationTicks)
	assert.Equal(t, 1.0, walk.TicksPerSecond)
	assert.Empty(t, binding.Unbound())

	hips, ok := walk.Channel("Hips")
	require.True(t, ok)
	require.Len(t, hips.PositionKeys, 3)
	assert.Equal(t, 1.0, hips.PositionKeys[1].Time)
	assert.InDelta(t, 1.5, hips.PositionKeys[1].Value.Y(), epsilon)
	assert.Empty(t, hips.RotationKeys)

	spine, ok := walk.Channel("Spine")
	require.True(t, ok)
	require.Len(t, spine.RotationKeys, 2)
	assert.InDelta(t, 1, spine.RotationKeys[0].Value.W, epsilon)
	assert.InDelta(t, 1, spine.RotationKeys[1].Value.Len(), epsilon)

	// STEP holds the first scale until the second key.
	stepped, ok := walk.Channel("node_3")
	require.True(t, ok)
	require.Len(t, stepped.ScaleKeys, 3)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, stepped.ScaleKeys[1].Value)
	assert.Equal(t, 1.0, stepped.ScaleKeys[1].Time)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, stepped.ScaleKeys[2].Value)

	cubic, _ := m.Animation(m.GetAnimationIndex("animation_1"))
	require.NotNil(t, cubic)
	spineMove, ok := cubic.Channel("Spine")
	require.True(t, ok)
	require.Len(t, spineMove.PositionKeys, 2)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, spineMove.PositionKeys[0].Value)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, spineMove.PositionKeys[1].Value)

	weightsOnly, _ := m.Animation(m.GetAnimationIndex("Walk_2"))
	require.NotNil(t, weightsOnly)
	assert.Empty(t, weightsOnly.Channels)
	assert.Equal(t, 0.0, weightsOnly.DurationTicks)
}

func TestImportGLB(t *testing.T) {
	data, b := humanoid(t, []int{0}, false)

	m, err := newGLTFImporter().ImportReader("hero", bytes.NewReader(glb(data, b.bin)), true)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Skeleton().BoneCount())
	assert.Equal(t, 3, m.AnimationCount())
}

func TestImportRejectsMultipleParents(t *testing.T) {
	b := &gltfBuilder{}
	data := b.encode(t, map[string]any{
		"nodes": []any{
			map[string]any{"name": "a", "children": []int{2}},
			map[string]any{"name": "b", "children": []int{2}},
			map[string]any{"name": "c"},
		},
	}, true)

	_, err := newGLTFImporter().ImportReader("bad", bytes.NewReader(data), false)
	assert.ErrorIs(t, err, model.ErrInvalidSkeleton)
}

func TestImportRejectsUnsortedKeys(t *testing.T) {
	b := &gltfBuilder{}
	times := b.accessor(gltfAccessorTypeScalar, 1, 0)
	values := b.accessor(gltfAccessorTypeVec3, 0, 0, 0, 1, 1, 1)
	data := b.encode(t, map[string]any{
		"nodes": []any{map[string]any{"name": "root"}},
		"animations": []any{map[string]any{
			"samplers": []any{map[string]any{"input": times, "output": values}},
			"channels": []any{map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}}},
		}},
	}, true)

	_, err := newGLTFImporter().ImportReader("bad", bytes.NewReader(data), false)
	assert.ErrorIs(t, err, model.ErrInvalidClip)
}

func TestGLTFKeyframes(t *testing.T) {
	times := []float32{0, 1, 3}
	values := []int{10, 20, 30}

	keyTimes, picked, err := gltfKeyframes(times, values, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 3}, keyTimes)
	assert.Equal(t, values, picked)

	keyTimes, picked, err = gltfKeyframes(times, values, gltfAnimInterpolationStep)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 3, 3}, keyTimes)
	assert.Equal(t, []int{10, 10, 20, 20, 30}, picked)

	_, _, err = gltfKeyframes(times, values, "BEZIER")
	assert.Error(t, err)

	_, _, err = gltfKeyframes(times, values[:2], gltfAnimInterpolationLinear)
	assert.ErrorIs(t, err, errSamplerValueCount)

	_, _, err = gltfKeyframes(times, []int{1, 2, 3, 4, 5, 6, 7, 8}, gltfAnimInterpolationCubicSpline)
	assert.ErrorIs(t, err, errSamplerValueCount)
}

func TestImportRejectsShortSamplerOutput(t *testing.T) {
	b := &gltfBuilder{}
	times := b.accessor(gltfAccessorTypeScalar, 0, 1, 2)
	values := b.accessor(gltfAccessorTypeVec3, 0, 0, 0, 1, 1, 1)
	data := b.encode(t, map[string]any{
		"nodes": []any{map[string]any{"name": "root"}},
		"animations": []any{map[string]any{
			"samplers": []any{map[string]any{"input": times, "output": values}},
			"channels": []any{map[string]any{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}}},
		}},
	}, true)

	_, err := newGLTFImporter().ImportReader("short", bytes.NewReader(data), false)
	assert.ErrorIs(t, err, errSamplerValueCount)
	assert.ErrorContains(t, err, "root translation")
}
