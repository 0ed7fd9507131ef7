package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// NewSkeleton flattens a node tree into an index-addressed arena and resolves bone bindings.
// Bones are indexed in the order they appear in bones; a repeated name keeps its first offset.
//
// Parameters:
//   - root: the single root of the hierarchy
//   - bones: the bone names and bind-pose inverse offsets, in first-encountered order
//
// Returns:
//   - *Skeleton: the built skeleton
//   - error: an error wrapping ErrInvalidSkeleton if names collide or a bone has no node
func NewSkeleton(root NodeSpec, bones []BoneSpec) (*Skeleton, error) {
	s := &Skeleton{
		boneNameToIndex: make(map[string]int, len(bones)),
		nodeNameToIndex: make(map[string]int),
	}

	for _, b := range bones {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: bone with empty name", ErrInvalidSkeleton)
		}
		if _, ok := s.boneNameToIndex[b.Name]; ok {
			continue
		}
		s.boneNameToIndex[b.Name] = len(s.boneNames)
		s.boneNames = append(s.boneNames, b.Name)
		s.BoneOffsets = append(s.BoneOffsets, b.Offset)
	}

	if err := s.flatten(root, NoIndex); err != nil {
		return nil, err
	}

	for _, name := range s.boneNames {
		if _, ok := s.nodeNameToIndex[name]; !ok {
			return nil, fmt.Errorf("%w: bone %q has no node in the hierarchy", ErrInvalidSkeleton, name)
		}
	}

	return s, nil
}

// flatten appends spec and its descendants to the arena in pre-order.
func (s *Skeleton) flatten(spec NodeSpec, parent int) error {
	if _, ok := s.nodeNameToIndex[spec.Name]; ok {
		return fmt.Errorf("%w: duplicate node name %q", ErrInvalidSkeleton, spec.Name)
	}

	index := len(s.Nodes)
	bone := NoIndex
	if b, ok := s.boneNameToIndex[spec.Name]; ok {
		bone = b
	}
	s.Nodes = append(s.Nodes, Node{
		Name:     spec.Name,
		Rest:     spec.Rest,
		RestPose: common.Decompose(spec.Rest),
		Parent:   parent,
		Bone:     bone,
	})
	s.nodeNameToIndex[spec.Name] = index
	if parent != NoIndex {
		s.Nodes[parent].Children = append(s.Nodes[parent].Children, index)
	}

	for _, child := range spec.Children {
		if err := s.flatten(child, index); err != nil {
			return err
		}
	}
	return nil
}

// BoneCount returns the number of distinct bones.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) BoneCount() int {
	return len(s.boneNames)
}

// BoneNames returns the bone names ordered by bone index.
//
// Returns:
//   - []string: a copy of the bone names
func (s *Skeleton) BoneNames() []string {
	names := make([]string, len(s.boneNames))
	copy(names, s.boneNames)
	return names
}

// BoneIndex looks up a bone index by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int: the bone index, or NoIndex
//   - bool: true if the name is a bone
func (s *Skeleton) BoneIndex(name string) (int, bool) {
	i, ok := s.boneNameToIndex[name]
	if !ok {
		return NoIndex, false
	}
	return i, true
}

// NodeIndex looks up a node arena index by name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - int: the arena index, or NoIndex
//   - bool: true if the node exists
func (s *Skeleton) NodeIndex(name string) (int, bool) {
	i, ok := s.nodeNameToIndex[name]
	if !ok {
		return NoIndex, false
	}
	return i, true
}

// NodeCount returns the number of nodes in the hierarchy.
//
// Returns:
//   - int: the node count
func (s *Skeleton) NodeCount() int {
	return len(s.Nodes)
}
