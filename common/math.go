package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// scaleEpsilon is the smallest axis scale treated as non-degenerate when decomposing a matrix.
const scaleEpsilon = 0.0001

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// LerpVec3 linearly interpolates between a and b componentwise.
// The factor is not clamped, so values outside [0, 1] extrapolate.
//
// Parameters:
//   - a: the value at factor 0
//   - b: the value at factor 1
//   - factor: the interpolation factor
//
// Returns:
//   - mgl32.Vec3: a + (b - a) * factor
func LerpVec3(a, b mgl32.Vec3, factor float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(factor))
}

// SlerpShortest spherically interpolates between two rotations along the shorter arc.
// If the quaternions lie in opposite hemispheres, b is negated before interpolating.
// The result is normalized.
//
// Parameters:
//   - a: the rotation at factor 0
//   - b: the rotation at factor 1
//   - factor: the interpolation factor
//
// Returns:
//   - mgl32.Quat: the interpolated unit quaternion
func SlerpShortest(a, b mgl32.Quat, factor float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, factor).Normalize()
}

// ComposeTSR builds a local transform matrix as T(translation) * S(scale) * R(rotation).
// The matrix is column-major, matching mgl32 and WGSL mat4x4<f32>.
//
// Parameters:
//   - translation: the translation vector
//   - rotation: the rotation quaternion
//   - scale: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTSR(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation[0], translation[1], translation[2])
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(s).Mul4(rotation.Normalize().Mat4())
}

// Decompose splits an affine column-major matrix into translation, rotation and scale so that
// ComposeTSR(t.Translation, t.Rotation, t.Scale) rebuilds it. The upper 3x3 block is read as S * R,
// so each scale factor is the length of a basis row. Shear is not supported.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - Transform: the decomposed translation, rotation and scale
func Decompose(m mgl32.Mat4) Transform {
	var t Transform
	t.Translation = mgl32.Vec3{m[12], m[13], m[14]}

	sx := math32.Sqrt(m[0]*m[0] + m[4]*m[4] + m[8]*m[8])
	sy := math32.Sqrt(m[1]*m[1] + m[5]*m[5] + m[9]*m[9])
	sz := math32.Sqrt(m[2]*m[2] + m[6]*m[6] + m[10]*m[10])
	t.Scale = mgl32.Vec3{sx, sy, sz}

	if sx < scaleEpsilon {
		sx = 1
	}
	if sy < scaleEpsilon {
		sy = 1
	}
	if sz < scaleEpsilon {
		sz = 1
	}

	// rAB is row A, column B of the pure rotation matrix.
	r00, r01, r02 := m[0]/sx, m[4]/sx, m[8]/sx
	r10, r11, r12 := m[1]/sy, m[5]/sy, m[9]/sy
	r20, r21, r22 := m[2]/sz, m[6]/sz, m[10]/sz

	var x, y, z, w float32
	trace := r00 + r11 + r22
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		w = 0.25 * s
		x = (r21 - r12) / s
		y = (r02 - r20) / s
		z = (r10 - r01) / s
	case r00 > r11 && r00 > r22:
		s := math32.Sqrt(1+r00-r11-r22) * 2
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	case r11 > r22:
		s := math32.Sqrt(1+r11-r00-r22) * 2
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	default:
		s := math32.Sqrt(1+r22-r00-r11) * 2
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}

	t.Rotation = mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}.Normalize()
	return t
}
