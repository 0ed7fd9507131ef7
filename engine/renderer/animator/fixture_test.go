package animator

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

var (
	restA   = mgl32.Translate3D(1, 0, 0).Mul4(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1}).Mat4())
	restB   = mgl32.Translate3D(0, 2, 0)
	offsetA = mgl32.Translate3D(-1, 0, 0)
	offsetB = mgl32.Translate3D(0, -2, 0).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))
)

// twoBoneSkeleton returns root bone A with child bone B.
func twoBoneSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	s, err := model.NewSkeleton(
		model.NodeSpec{Name: "A", Rest: restA, Children: []model.NodeSpec{{Name: "B", Rest: restB}}},
		[]model.BoneSpec{{Name: "A", Offset: offsetA}, {Name: "B", Offset: offsetB}},
	)
	require.NoError(t, err)
	return s
}

// waveClip moves B along x from 0 to 10 over 10 ticks at 10 ticks per second.
func waveClip(t *testing.T) *model.AnimationClip {
	t.Helper()
	c, err := model.NewAnimationClip("Wave", 10, 10, []model.Channel{{
		NodeName: "B",
		PositionKeys: []model.VectorKey{
			{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
			{Time: 10, Value: mgl32.Vec3{10, 0, 0}},
		},
	}})
	require.NoError(t, err)
	return c
}

// spinClip rotates A about z by up to a quarter turn over 4 ticks at the default tick rate.
func spinClip(t *testing.T) *model.AnimationClip {
	t.Helper()
	c, err := model.NewAnimationClip("Spin", 4, 0, []model.Channel{{
		NodeName: "A",
		RotationKeys: []model.QuatKey{
			{Time: 0, Value: mgl32.QuatIdent()},
			{Time: 4, Value: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})},
		},
	}})
	require.NoError(t, err)
	return c
}

func twoBoneModel(t *testing.T) model.Model {
	t.Helper()
	return model.NewModel(
		model.WithName("two_bone"),
		model.WithSkeleton(twoBoneSkeleton(t)),
		model.WithAnimations(waveClip(t), spinClip(t)),
	)
}
