package animator

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func assertQuatNear(t *testing.T, want, got mgl32.Quat, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, tolerance, msgAndArgs...)
	assert.InDeltaSlice(t, want.V[:], got.V[:], tolerance, msgAndArgs...)
}

func assertMatNear(t *testing.T, want, got mgl32.Mat4, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], tolerance, msgAndArgs...)
}

func TestInterpolateSingleKey(t *testing.T) {
	pos := []model.VectorKey{{Time: 3, Value: mgl32.Vec3{1, 2, 3}}}
	rot := []model.QuatKey{{Time: 3, Value: mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0})}}

	for _, tick := range []float64{0, -5, 3, 2.5, 1000} {
		assert.Equal(t, pos[0].Value, InterpolateVector(pos, tick, mgl32.Vec3{}), "tick %v", tick)
		assert.Equal(t, rot[0].Value, InterpolateRotation(rot, tick, mgl32.QuatIdent()), "tick %v", tick)
	}
}

func TestInterpolateEmptyUsesFallback(t *testing.T) {
	fallback := mgl32.Vec3{4, 5, 6}
	assert.Equal(t, fallback, InterpolateVector(nil, 2, fallback))

	q := mgl32.QuatRotate(0.3, mgl32.Vec3{1, 0, 0})
	assert.Equal(t, q, InterpolateRotation(nil, 2, q))
}

func TestInterpolateVectorMidpoint(t *testing.T) {
	v0, v1 := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, -4, 2}
	keys := []model.VectorKey{{Time: 0, Value: v0}, {Time: 10, Value: v1}}

	assert.Equal(t, v0.Add(v1).Mul(0.5), InterpolateVector(keys, 5, mgl32.Vec3{}))
	assert.Equal(t, v0, InterpolateVector(keys, 0, mgl32.Vec3{}))
}

func TestInterpolateBoundaryClamp(t *testing.T) {
	keys := []model.VectorKey{
		{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
		{Time: 10, Value: mgl32.Vec3{1, 1, 1}},
		{Time: 20, Value: mgl32.Vec3{5, 6, 7}},
	}
	for _, tick := range []float64{20, 25} {
		assert.Equal(t, keys[2].Value, InterpolateVector(keys, tick, mgl32.Vec3{}), "tick %v", tick)
	}

	rot := []model.QuatKey{
		{Time: 0, Value: mgl32.QuatIdent()},
		{Time: 10, Value: mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1})},
		{Time: 20, Value: mgl32.QuatRotate(1, mgl32.Vec3{0, 0, 1})},
	}
	for _, tick := range []float64{20, 25} {
		assert.Equal(t, rot[2].Value, InterpolateRotation(rot, tick, mgl32.QuatIdent()), "tick %v", tick)
	}

	// Just inside the final segment still interpolates.
	got := InterpolateVector(keys, 15, mgl32.Vec3{})
	assert.InDeltaSlice(t, []float32{3, 3.5, 4}, got[:], tolerance)
}

func TestInterpolateBeforeFirstKeyExtrapolates(t *testing.T) {
	keys := []model.VectorKey{
		{Time: 10, Value: mgl32.Vec3{10, 0, 0}},
		{Time: 20, Value: mgl32.Vec3{20, 0, 0}},
	}
	got := InterpolateVector(keys, 5, mgl32.Vec3{})
	assert.InDelta(t, 5, got[0], tolerance)
}

func TestInterpolateZeroLengthSegment(t *testing.T) {
	keys := []model.VectorKey{
		{Time: 0, Value: mgl32.Vec3{1, 0, 0}},
		{Time: 0, Value: mgl32.Vec3{2, 0, 0}},
		{Time: 10, Value: mgl32.Vec3{3, 0, 0}},
	}
	// The first successor strictly after -1 is key 1, which has the same time as key 0.
	assert.Equal(t, keys[1].Value, InterpolateVector(keys, -1, mgl32.Vec3{}))
	assert.Equal(t, mgl32.Vec3{2.5, 0, 0}, InterpolateVector(keys, 5, mgl32.Vec3{}))
}

func TestInterpolateRotationEndpoints(t *testing.T) {
	q0 := mgl32.QuatRotate(0.2, mgl32.Vec3{1, 0, 0})
	q1 := mgl32.QuatRotate(1.4, mgl32.Vec3{0, 1, 0})
	keys := []model.QuatKey{{Time: 0, Value: q0}, {Time: 1, Value: q1}, {Time: 2, Value: q0}}

	assertQuatNear(t, q0, InterpolateRotation(keys, 0, mgl32.QuatIdent()))
	// Delta 1 of the first segment is delta 0 of the second.
	assertQuatNear(t, q1, InterpolateRotation(keys, 1, mgl32.QuatIdent()))
	assertQuatNear(t, q1, InterpolateRotation(keys[:2], 1-1e-9, mgl32.QuatIdent()))
}

func TestInterpolateRotationShortestPath(t *testing.T) {
	axis := mgl32.Vec3{0, 1, 0}
	q0 := mgl32.QuatIdent()
	q1 := mgl32.QuatRotate(math.Pi/2, axis).Scale(-1)
	keys := []model.QuatKey{{Time: 0, Value: q0}, {Time: 10, Value: q1}}

	got := InterpolateRotation(keys, 5, mgl32.QuatIdent())
	want := mgl32.QuatRotate(math.Pi/4, axis)
	assertQuatNear(t, want, got)
	assert.InDelta(t, 1, got.Len(), tolerance)
}

func TestSegment(t *testing.T) {
	times := []float64{0, 10, 20}
	at := func(i int) float64 { return times[i] }

	cases := []struct {
		tick    float64
		index   int
		clamped bool
	}{
		{tick: -1, index: 0},
		{tick: 0, index: 0},
		{tick: 9.99, index: 0},
		{tick: 10, index: 1},
		{tick: 19.99, index: 1},
		{tick: 20, index: 1, clamped: true},
		{tick: 30, index: 1, clamped: true},
	}
	for _, tc := range cases {
		i, clamped := segment(len(times), at, tc.tick)
		assert.Equal(t, tc.index, i, "tick %v", tc.tick)
		assert.Equal(t, tc.clamped, clamped, "tick %v", tc.tick)
	}
}
