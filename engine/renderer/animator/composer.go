package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Composer accumulates node transforms down a skeleton hierarchy and produces skinning matrices.
// It owns a scratch buffer of global transforms sized to the skeleton, so repeated calls do not allocate.
// A Composer must not be shared between goroutines.
type Composer struct {
	skeleton *model.Skeleton
	globals  []mgl32.Mat4
}

// NewComposer creates a Composer for the given skeleton.
//
// Parameters:
//   - skeleton: the hierarchy to compose
//
// Returns:
//   - *Composer: the composer
func NewComposer(skeleton *model.Skeleton) *Composer {
	return &Composer{
		skeleton: skeleton,
		globals:  make([]mgl32.Mat4, skeleton.NodeCount()),
	}
}

// Compose evaluates the pose of clip at tick and writes one skinning matrix per bone into out.
// Nodes animated by the clip use T * S * R built from their sampled tracks, all other nodes use their
// rest transform. Each bone receives global * offset. A nil clip or binding produces the rest pose.
//
// Parameters:
//   - clip: the clip being sampled, or nil
//   - binding: the binding of clip against the composer skeleton, or nil
//   - tick: the clip-local tick
//   - out: destination skinning matrices indexed by bone; must hold at least BoneCount entries
func (c *Composer) Compose(clip *model.AnimationClip, binding *model.ClipBinding, tick float64, out []mgl32.Mat4) {
	nodes := c.skeleton.Nodes
	offsets := c.skeleton.BoneOffsets
	animated := clip != nil && binding != nil

	// Pre-order storage guarantees the parent global is ready before its children are visited.
	for i := range nodes {
		n := &nodes[i]

		local := n.Rest
		if animated {
			if ch := binding.ChannelFor(i); ch != model.NoIndex {
				local = sampleLocal(&clip.Channels[ch], n, tick)
			}
		}

		if n.Parent == model.NoIndex {
			c.globals[i] = local
		} else {
			c.globals[i] = c.globals[n.Parent].Mul4(local)
		}

		if n.Bone != model.NoIndex {
			out[n.Bone] = c.globals[i].Mul4(offsets[n.Bone])
		}
	}
}

// Global returns the accumulated transform of a node from the most recent Compose call.
//
// Parameters:
//   - node: the node arena index
//
// Returns:
//   - mgl32.Mat4: the node transform in model space
func (c *Composer) Global(node int) mgl32.Mat4 {
	return c.globals[node]
}

// sampleLocal builds the local transform of an animated node.
// A channel without rotation and scale keys keeps the rest basis and only moves the translation column.
func sampleLocal(ch *model.Channel, n *model.Node, tick float64) mgl32.Mat4 {
	rest := n.RestPose
	position := InterpolateVector(ch.PositionKeys, tick, rest.Translation)
	if len(ch.RotationKeys) == 0 && len(ch.ScaleKeys) == 0 {
		local := n.Rest
		local[12], local[13], local[14] = position[0], position[1], position[2]
		return local
	}
	rotation := InterpolateRotation(ch.RotationKeys, tick, rest.Rotation)
	scale := InterpolateVector(ch.ScaleKeys, tick, rest.Scale)
	return common.ComposeTSR(position, rotation, scale)
}
