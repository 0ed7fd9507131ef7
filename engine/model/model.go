package model

// model is the implementation of the Model interface.
type model struct {
	name       string
	sourcePath string
	skeleton   *Skeleton
	animations []*AnimationClip
	bindings   []*ClipBinding
}

// Model defines the interface for a loaded skeletal asset.
// A Model bundles the shared bone hierarchy with its animation clips and the per-clip
// channel bindings resolved against that hierarchy. It is produced by the Loader and is
// read-only after construction, so a single Model may be shared by any number of players.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// SourcePath retrieves the file the model was loaded from, or an empty string for in-memory models.
	//
	// Returns:
	//   - string: the source path
	SourcePath() string

	// Skeleton retrieves the bone hierarchy for this model.
	//
	// Returns:
	//   - *Skeleton: the skeleton
	Skeleton() *Skeleton

	// Animations retrieves all animation clips bundled with this model, in source order.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int

	// Animation returns the clip at index i together with its channel binding.
	// Both are nil when i is out of range.
	//
	// Parameters:
	//   - i: the animation index
	//
	// Returns:
	//   - *AnimationClip: the clip
	//   - *ClipBinding: the binding of the clip against this model's skeleton
	Animation(i int) (*AnimationClip, *ClipBinding)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// Channel bindings for every clip are resolved against the skeleton here, once.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	if m.skeleton == nil {
		m.skeleton = &Skeleton{}
	}

	m.bindings = make([]*ClipBinding, len(m.animations))
	for i, clip := range m.animations {
		m.bindings[i] = NewClipBinding(m.skeleton, clip)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) SourcePath() string {
	return m.sourcePath
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) Animation(i int) (*AnimationClip, *ClipBinding) {
	if i < 0 || i >= len(m.animations) {
		return nil, nil
	}
	return m.animations[i], m.bindings[i]
}
