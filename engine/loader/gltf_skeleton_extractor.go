package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// syntheticRootName names the node inserted above several scene roots.
const syntheticRootName = "__root__"

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor turns a parsed document's node tree and skins into a model.Skeleton.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton builds the skeleton from the default scene.
	// Every joint of every skin becomes a bone, in skin then joint order.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton
	//   - []string: the unique node name assigned to each glTF node index
	//   - error: error if the node graph is not a forest or a skin is malformed
	ExtractSkeleton() (*model.Skeleton, []string, error)
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skeleton extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSkeletonExtractor: the skeleton extractor
func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton() (*model.Skeleton, []string, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}

	names := gltfNodeNames(doc.Nodes)

	parents, err := gltfNodeParents(doc.Nodes)
	if err != nil {
		return nil, nil, err
	}

	roots, err := gltfSceneRoots(doc, parents)
	if err != nil {
		return nil, nil, err
	}

	visited := make([]bool, len(doc.Nodes))
	specs := make([]model.NodeSpec, 0, len(roots))
	for _, r := range roots {
		spec, err := gltfBuildNode(doc.Nodes, names, r, visited)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, spec)
	}

	var root model.NodeSpec
	if len(specs) == 1 {
		root = specs[0]
	} else {
		root = model.NodeSpec{
			Name:     uniqueName(syntheticRootName, names),
			Rest:     mgl32.Ident4(),
			Children: specs,
		}
	}

	bones, err := e.extractBones(doc, names)
	if err != nil {
		return nil, nil, err
	}

	skeleton, err := model.NewSkeleton(root, bones)
	if err != nil {
		return nil, nil, err
	}
	return skeleton, names, nil
}

// extractBones lists the joints of every skin with their inverse bind matrices.
func (e *gltfSkeletonExtractorImpl) extractBones(doc *gltfDocument, names []string) ([]model.BoneSpec, error) {
	var bones []model.BoneSpec
	for s := range doc.Skins {
		skin := &doc.Skins[s]

		var inverseBind [][16]float32
		if skin.InverseBindMatrices != nil {
			m, err := e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
			if err != nil {
				return nil, fmt.Errorf("skin %d: failed to read inverse bind matrices: %w", s, err)
			}
			inverseBind = m
		}

		for j, joint := range skin.Joints {
			if joint < 0 || joint >= len(doc.Nodes) {
				return nil, fmt.Errorf("%w: skin %d joint %d references node %d", model.ErrInvalidSkeleton, s, j, joint)
			}
			offset := mgl32.Ident4()
			if j < len(inverseBind) {
				offset = mgl32.Mat4(inverseBind[j])
			}
			bones = append(bones, model.BoneSpec{Name: names[joint], Offset: offset})
		}
	}
	return bones, nil
}

// gltfNodeNames assigns each node a unique name. Unnamed nodes become node_<index>.
func gltfNodeNames(nodes []gltfNode) []string {
	names := make([]string, len(nodes))
	taken := make(map[string]bool, len(nodes))
	for i := range nodes {
		name := nodes[i].Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		for taken[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// uniqueName returns base, suffixed until it collides with none of names.
func uniqueName(base string, names []string) string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	name := base
	for i := 1; taken[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}

// gltfNodeParents inverts the children lists. A node claimed by two parents is rejected.
func gltfNodeParents(nodes []gltfNode) ([]int, error) {
	parents := make([]int, len(nodes))
	for i := range parents {
		parents[i] = model.NoIndex
	}
	for i := range nodes {
		for _, c := range nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d has child %d out of range", model.ErrInvalidSkeleton, i, c)
			}
			if parents[c] != model.NoIndex || c == i {
				return nil, fmt.Errorf("%w: node %d has more than one parent", model.ErrInvalidSkeleton, c)
			}
			parents[c] = i
		}
	}
	return parents, nil
}

// gltfSceneRoots returns the root nodes of the default scene, followed by the roots of any
// skin joints the scene does not reach. Without scenes, every parentless node is a root.
func gltfSceneRoots(doc *gltfDocument, parents []int) ([]int, error) {
	var roots []int
	if len(doc.Scenes) == 0 {
		for i, p := range parents {
			if p == model.NoIndex {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene < 0 || scene >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", scene)
	}

	seen := make(map[int]bool)
	for _, r := range doc.Scenes[scene].Nodes {
		if r < 0 || r >= len(parents) {
			return nil, fmt.Errorf("%w: scene root %d out of range", model.ErrInvalidSkeleton, r)
		}
		if !seen[r] {
			seen[r] = true
			roots = append(roots, r)
		}
	}

	for _, skin := range doc.Skins {
		for _, joint := range skin.Joints {
			if joint < 0 || joint >= len(parents) {
				continue
			}
			top := joint
			for steps := 0; parents[top] != model.NoIndex && steps < len(parents); steps++ {
				top = parents[top]
			}
			if !seen[top] {
				seen[top] = true
				roots = append(roots, top)
			}
		}
	}
	return roots, nil
}

// gltfBuildNode converts the subtree at index into a NodeSpec, failing on cycles.
func gltfBuildNode(nodes []gltfNode, names []string, index int, visited []bool) (model.NodeSpec, error) {
	if visited[index] {
		return model.NodeSpec{}, fmt.Errorf("%w: node %d is reachable twice", model.ErrInvalidSkeleton, index)
	}
	visited[index] = true

	node := &nodes[index]
	spec := model.NodeSpec{
		Name: names[index],
		Rest: gltfNodeMatrix(node),
	}
	for _, c := range node.Children {
		child, err := gltfBuildNode(nodes, names, c, visited)
		if err != nil {
			return model.NodeSpec{}, err
		}
		spec.Children = append(spec.Children, child)
	}
	return spec, nil
}

// gltfNodeMatrix returns the node's local matrix, composing T * R * S when no matrix is given.
func gltfNodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}

	m := mgl32.Ident4()
	if t := node.Translation; t != nil {
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if r := node.Rotation; r != nil {
		m = m.Mul4(gltfQuat(*r).Mat4())
	}
	if s := node.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

// gltfQuat converts glTF x, y, z, w order into a normalized mgl32.Quat.
func gltfQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
}
