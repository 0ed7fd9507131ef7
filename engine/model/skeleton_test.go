package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// humanoid returns a small hierarchy with a non-bone helper node between the root and the hips.
func humanoid() NodeSpec {
	return NodeSpec{
		Name: "Armature",
		Rest: mgl32.Ident4(),
		Children: []NodeSpec{{
			Name: "Hips",
			Rest: mgl32.Translate3D(0, 1, 0),
			Children: []NodeSpec{
				{Name: "Spine", Rest: mgl32.Translate3D(0, 0.5, 0), Children: []NodeSpec{
					{Name: "Head", Rest: mgl32.Translate3D(0, 0.4, 0)},
				}},
				{Name: "LeftLeg", Rest: mgl32.Translate3D(0.2, -0.5, 0)},
			},
		}},
	}
}

func TestNewSkeletonArena(t *testing.T) {
	s, err := NewSkeleton(humanoid(), []BoneSpec{
		{Name: "Spine", Offset: mgl32.Translate3D(0, -1.5, 0)},
		{Name: "Hips", Offset: mgl32.Translate3D(0, -1, 0)},
		{Name: "Head", Offset: mgl32.Translate3D(0, -1.9, 0)},
		{Name: "LeftLeg", Offset: mgl32.Translate3D(-0.2, -0.5, 0)},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, s.NodeCount())
	assert.Equal(t, 4, s.BoneCount())
	assert.Equal(t, []string{"Spine", "Hips", "Head", "LeftLeg"}, s.BoneNames())
	assert.Len(t, s.BoneOffsets, s.BoneCount())

	// Pre-order with the root first.
	names := make([]string, 0, s.NodeCount())
	for _, n := range s.Nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Armature", "Hips", "Spine", "Head", "LeftLeg"}, names)

	root := s.Nodes[0]
	assert.Equal(t, NoIndex, root.Parent)
	assert.False(t, root.IsBone())
	assert.Equal(t, []int{1}, root.Children)

	hips := s.Nodes[1]
	assert.Equal(t, 0, hips.Parent)
	assert.Equal(t, 1, hips.Bone)
	assert.Equal(t, []int{2, 4}, hips.Children)

	for i, n := range s.Nodes {
		if n.Parent != NoIndex {
			assert.Less(t, n.Parent, i, "parent of %s must precede it", n.Name)
		}
	}

	bone, ok := s.BoneIndex("Head")
	assert.True(t, ok)
	assert.Equal(t, 2, bone)

	_, ok = s.BoneIndex("Armature")
	assert.False(t, ok)

	node, ok := s.NodeIndex("LeftLeg")
	assert.True(t, ok)
	assert.Equal(t, 4, node)
}

func TestNewSkeletonKeepsFirstOffset(t *testing.T) {
	s, err := NewSkeleton(humanoid(), []BoneSpec{
		{Name: "Hips", Offset: mgl32.Translate3D(0, -1, 0)},
		{Name: "Hips", Offset: mgl32.Translate3D(9, 9, 9)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.BoneCount())
	assert.Equal(t, mgl32.Translate3D(0, -1, 0), s.BoneOffsets[0])
}

func TestNewSkeletonRestPose(t *testing.T) {
	s, err := NewSkeleton(humanoid(), nil)
	require.NoError(t, err)
	hips := s.Nodes[1]
	assert.InDeltaSlice(t, []float32{0, 1, 0}, hips.RestPose.Translation[:], 1e-6)
	assert.InDeltaSlice(t, []float32{1, 1, 1}, hips.RestPose.Scale[:], 1e-6)
}

func TestNewSkeletonErrors(t *testing.T) {
	cases := []struct {
		name  string
		root  NodeSpec
		bones []BoneSpec
	}{
		{
			name:  "bone missing from hierarchy",
			root:  humanoid(),
			bones: []BoneSpec{{Name: "Tail", Offset: mgl32.Ident4()}},
		},
		{
			name: "duplicate node name",
			root: NodeSpec{Name: "Root", Rest: mgl32.Ident4(), Children: []NodeSpec{
				{Name: "A", Rest: mgl32.Ident4()},
				{Name: "A", Rest: mgl32.Ident4()},
			}},
		},
		{
			name:  "empty bone name",
			root:  humanoid(),
			bones: []BoneSpec{{Offset: mgl32.Ident4()}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSkeleton(tc.root, tc.bones)
			assert.ErrorIs(t, err, ErrInvalidSkeleton)
		})
	}
}
