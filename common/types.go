// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs, just plain structs
// and functions that express commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Transform is a decomposed local transform.
type Transform struct {
	// Translation is the offset from the parent origin.
	Translation mgl32.Vec3
	// Rotation is the orientation relative to the parent, as a unit quaternion.
	Rotation mgl32.Quat
	// Scale is the per-axis scale.
	Scale mgl32.Vec3
}

// IdentityTransform returns a Transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform as T * S * R.
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func (t Transform) Matrix() mgl32.Mat4 {
	return ComposeTSR(t.Translation, t.Rotation, t.Scale)
}
