package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// errSamplerValueCount is returned when a sampler's output does not hold one value (or one
// tangent-value-tangent triplet) per key time.
var errSamplerValueCount = errors.New("sampler output count does not match its key times")

// gltfTicksPerSecond is the tick rate of glTF clips, whose key times are in seconds.
const gltfTicksPerSecond = 1.0

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor converts glTF animations into clips whose channels are keyed by node name.
type gltfAnimationExtractor interface {
	// ExtractAnimations extracts every animation in document order.
	// Clip names are made unique; unnamed clips become animation_<index>.
	//
	// Parameters:
	//   - nodeNames: the node name assigned to each glTF node index by the skeleton extractor
	//
	// Returns:
	//   - []*model.AnimationClip: the clips
	//   - error: error if a sampler is malformed or its keys are out of order
	ExtractAnimations(nodeNames []string) ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimations(nodeNames []string) ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	clips := make([]*model.AnimationClip, 0, len(doc.Animations))
	used := make(map[string]bool, len(doc.Animations))
	for i := range doc.Animations {
		name := doc.Animations[i].Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}
		for used[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		used[name] = true

		clip, err := e.extractAnimation(&doc.Animations[i], name, nodeNames)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (e *gltfAnimationExtractorImpl) extractAnimation(anim *gltfAnimation, name string, nodeNames []string) (*model.AnimationClip, error) {
	var channels []model.Channel
	channelOf := make(map[int]int)
	var duration float64

	for i := range anim.Channels {
		ch := &anim.Channels[i]

		// Morph weights and node-less targets have no transform to drive.
		if ch.Target.Node == nil || ch.Target.Path == gltfAnimPathWeights {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(nodeNames) {
			return nil, fmt.Errorf("channel %d targets node %d out of range", i, node)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("channel %d has invalid sampler index %d", i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("channel %d: failed to read key times: %w", i, err)
		}
		if len(times) > 0 {
			duration = max(duration, float64(times[len(times)-1]))
		}

		idx, ok := channelOf[node]
		if !ok {
			idx = len(channels)
			channelOf[node] = idx
			channels = append(channels, model.Channel{NodeName: nodeNames[node]})
		}
		target := &channels[idx]

		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			raw, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("channel %d: failed to read %s values: %w", i, ch.Target.Path, err)
			}
			keyTimes, values, err := gltfKeyframes(times, raw, sampler.Interpolation)
			if err != nil {
				return nil, fmt.Errorf("channel %d (%s %s): %w", i, nodeNames[node], ch.Target.Path, err)
			}
			keys := make([]model.VectorKey, len(keyTimes))
			for j := range keys {
				keys[j] = model.VectorKey{Time: keyTimes[j], Value: mgl32.Vec3(values[j])}
			}
			if ch.Target.Path == gltfAnimPathTranslation {
				target.PositionKeys = keys
			} else {
				target.ScaleKeys = keys
			}

		case gltfAnimPathRotation:
			raw, err := e.parser.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("channel %d: failed to read rotation values: %w", i, err)
			}
			keyTimes, values, err := gltfKeyframes(times, raw, sampler.Interpolation)
			if err != nil {
				return nil, fmt.Errorf("channel %d (%s %s): %w", i, nodeNames[node], ch.Target.Path, err)
			}
			keys := make([]model.QuatKey, len(keyTimes))
			for j := range keys {
				keys[j] = model.QuatKey{Time: keyTimes[j], Value: gltfQuat(values[j])}
			}
			target.RotationKeys = keys
		}
	}

	return model.NewAnimationClip(name, duration, gltfTicksPerSecond, channels)
}

// gltfKeyframes pairs key times with values for a sampler's interpolation mode.
// CUBICSPLINE keeps the value of each in-tangent, value, out-tangent triplet.
// STEP is expressed as linear keys by holding each value until the next key time.
func gltfKeyframes[V any](times []float32, values []V, interpolation string) ([]float64, []V, error) {
	var picked []V
	switch interpolation {
	case "", gltfAnimInterpolationLinear, gltfAnimInterpolationStep:
		if len(values) != len(times) {
			return nil, nil, fmt.Errorf("%w: %d values for %d times", errSamplerValueCount, len(values), len(times))
		}
		picked = values
	case gltfAnimInterpolationCubicSpline:
		if len(values) != 3*len(times) {
			return nil, nil, fmt.Errorf("%w: %d values for %d cubic spline times", errSamplerValueCount, len(values), len(times))
		}
		picked = make([]V, len(times))
		for j := range picked {
			picked[j] = values[3*j+1]
		}
	default:
		return nil, nil, fmt.Errorf("unsupported interpolation %q", interpolation)
	}

	if interpolation != gltfAnimInterpolationStep {
		keyTimes := make([]float64, len(picked))
		for j := range picked {
			keyTimes[j] = float64(times[j])
		}
		return keyTimes, picked, nil
	}

	keyTimes := make([]float64, 0, 2*len(picked))
	held := make([]V, 0, 2*len(picked))
	for j := range picked {
		if j > 0 {
			keyTimes = append(keyTimes, float64(times[j]))
			held = append(held, picked[j-1])
		}
		keyTimes = append(keyTimes, float64(times[j]))
		held = append(held, picked[j])
	}
	return keyTimes, held, nil
}
