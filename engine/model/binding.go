package model

// ClipBinding maps each node of a skeleton to the channel of one clip that animates it.
// It is resolved once per (skeleton, clip) pair so that per-frame composition does no name lookups.
type ClipBinding struct {
	channelByNode []int
	unbound       []string
}

// NewClipBinding resolves the channels of clip against the nodes of skeleton.
// Channels naming a node that does not exist are skipped and reported by Unbound.
//
// Parameters:
//   - skeleton: the hierarchy to bind against
//   - clip: the clip whose channels are resolved
//
// Returns:
//   - *ClipBinding: the resolved binding
func NewClipBinding(skeleton *Skeleton, clip *AnimationClip) *ClipBinding {
	b := &ClipBinding{channelByNode: make([]int, skeleton.NodeCount())}
	for i := range b.channelByNode {
		b.channelByNode[i] = NoIndex
	}

	for i := range clip.Channels {
		name := clip.Channels[i].NodeName
		node, ok := skeleton.NodeIndex(name)
		if !ok {
			b.unbound = append(b.unbound, name)
			continue
		}
		b.channelByNode[node] = i
	}
	return b
}

// ChannelFor returns the index into the clip's Channels animating the given node, or NoIndex.
//
// Parameters:
//   - node: the node arena index
//
// Returns:
//   - int: the channel index, or NoIndex if the node keeps its rest transform
func (b *ClipBinding) ChannelFor(node int) int {
	if node < 0 || node >= len(b.channelByNode) {
		return NoIndex
	}
	return b.channelByNode[node]
}

// Unbound returns the channel node names that matched no node in the skeleton.
//
// Returns:
//   - []string: the unmatched names
func (b *ClipBinding) Unbound() []string {
	return b.unbound
}
