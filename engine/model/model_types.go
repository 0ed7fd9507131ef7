package model

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTicksPerSecond is substituted for a clip whose source reports a tick rate of zero.
const DefaultTicksPerSecond = 25.0

// NoIndex marks an absent parent, bone or channel reference.
const NoIndex = -1

var (
	// ErrInvalidSkeleton is returned when a skeleton description violates a structural invariant.
	ErrInvalidSkeleton = errors.New("invalid skeleton")
	// ErrInvalidClip is returned when an animation clip has malformed keyframes or timing.
	ErrInvalidClip = errors.New("invalid animation clip")
)

// NodeSpec describes one node of a hierarchy before it is flattened into a Skeleton.
type NodeSpec struct {
	// Name identifies the node. It must be unique within the hierarchy.
	Name string
	// Rest is the local-space rest transform relative to the parent.
	Rest mgl32.Mat4
	// Children are the nodes attached below this one.
	Children []NodeSpec
}

// BoneSpec names a bone and its bind-pose inverse offset.
type BoneSpec struct {
	Name   string
	Offset mgl32.Mat4
}

// Node is one entry of the flattened hierarchy arena.
// Nodes are immutable once the owning Skeleton is built.
type Node struct {
	// Name identifies the node.
	Name string
	// Rest is the local-space rest transform.
	Rest mgl32.Mat4
	// RestPose is Rest decomposed into translation, rotation and scale.
	// Animated nodes fall back to these components for tracks their channel does not carry.
	RestPose common.Transform
	// Parent is the arena index of the parent node, or NoIndex for the root.
	Parent int
	// Children are the arena indices of the child nodes, in source order.
	Children []int
	// Bone is the bone index of this node, or NoIndex if the node is a pure transform helper.
	Bone int
}

// IsBone reports whether the node drives a skinning matrix.
//
// Returns:
//   - bool: true if the node has a bone index
func (n *Node) IsBone() bool {
	return n.Bone != NoIndex
}

// Skeleton is the shared, read-only bone hierarchy of a loaded asset.
// Nodes are stored in pre-order: a parent always precedes its descendants, and the root is index 0.
type Skeleton struct {
	// Nodes is the hierarchy arena.
	Nodes []Node
	// BoneOffsets holds the bind-pose inverse offset per bone index.
	BoneOffsets []mgl32.Mat4

	boneNames       []string
	boneNameToIndex map[string]int
	nodeNameToIndex map[string]int
}

// VectorKey is a timed position or scale sample.
type VectorKey struct {
	Time  float64
	Value mgl32.Vec3
}

// QuatKey is a timed rotation sample.
type QuatKey struct {
	Time  float64
	Value mgl32.Quat
}

// Channel is the set of keyframe tracks animating a single node.
// Each track is independently timed and any of them may be empty.
type Channel struct {
	// NodeName is the name of the animated node.
	NodeName string
	// PositionKeys animate the node translation.
	PositionKeys []VectorKey
	// RotationKeys animate the node orientation.
	RotationKeys []QuatKey
	// ScaleKeys animate the node scale.
	ScaleKeys []VectorKey
}

// AnimationClip is a named, immutable set of channels sharing one timeline.
type AnimationClip struct {
	// Name identifies the clip within its asset.
	Name string
	// DurationTicks is the clip length in ticks.
	DurationTicks float64
	// TicksPerSecond converts seconds to ticks.
	TicksPerSecond float64
	// Channels holds one entry per animated node.
	Channels []Channel

	channelByNode map[string]int
}
