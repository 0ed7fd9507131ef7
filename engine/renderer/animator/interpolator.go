package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// segment locates the keyframe pair bracketing tick t.
// It returns the smallest i with keys[i+1] strictly after t. When every successor is at or before t,
// the final segment is returned with clamped set, so callers never index past the list.
// count must be at least 2.
func segment(count int, timeAt func(int) float64, t float64) (i int, clamped bool) {
	for i = 0; i < count-1; i++ {
		if timeAt(i+1) > t {
			return i, false
		}
	}
	return count - 2, true
}

// segmentFactor returns the normalized position of t between the times of keys i and i+1.
// The factor is not clamped; a zero-length segment yields 1.
func segmentFactor(t0, t1, t float64) float32 {
	span := t1 - t0
	if span <= 0 {
		return 1
	}
	return float32((t - t0) / span)
}

// InterpolateVector samples a position or scale track at tick t with linear interpolation.
// A single key is returned as is for any t. At or beyond the last key the last value is held.
//
// Parameters:
//   - keys: the ordered keyframes
//   - t: the query tick
//   - fallback: the value returned when keys is empty
//
// Returns:
//   - mgl32.Vec3: the sampled value
func InterpolateVector(keys []model.VectorKey, t float64, fallback mgl32.Vec3) mgl32.Vec3 {
	switch len(keys) {
	case 0:
		return fallback
	case 1:
		return keys[0].Value
	}

	i, clamped := segment(len(keys), func(k int) float64 { return keys[k].Time }, t)
	if clamped {
		return keys[len(keys)-1].Value
	}
	lo, hi := keys[i], keys[i+1]
	return common.LerpVec3(lo.Value, hi.Value, segmentFactor(lo.Time, hi.Time, t))
}

// InterpolateRotation samples a rotation track at tick t with shortest-path spherical interpolation.
// A single key is returned as is for any t. At or beyond the last key the last value is held.
//
// Parameters:
//   - keys: the ordered keyframes
//   - t: the query tick
//   - fallback: the value returned when keys is empty
//
// Returns:
//   - mgl32.Quat: the sampled rotation
func InterpolateRotation(keys []model.QuatKey, t float64, fallback mgl32.Quat) mgl32.Quat {
	switch len(keys) {
	case 0:
		return fallback
	case 1:
		return keys[0].Value
	}

	i, clamped := segment(len(keys), func(k int) float64 { return keys[k].Time }, t)
	if clamped {
		return keys[len(keys)-1].Value
	}
	lo, hi := keys[i], keys[i+1]
	return common.SlerpShortest(lo.Value, hi.Value, segmentFactor(lo.Time, hi.Time, t))
}
