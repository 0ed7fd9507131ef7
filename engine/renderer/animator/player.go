package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// PlayerState is the playback state of a Player.
type PlayerState int

const (
	// PlayerStateIdle means no clip is assigned. Ticks only advance the elapsed time counter.
	PlayerStateIdle PlayerState = iota

	// PlayerStatePlaying means a clip is assigned and every tick recomposes the pose.
	PlayerStatePlaying
)

func (s PlayerState) String() string {
	switch s {
	case PlayerStateIdle:
		return "idle"
	case PlayerStatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// player is the implementation of the Player interface.
type player struct {
	id       uuid.UUID
	model    model.Model
	logger   *log.Logger
	composer *Composer

	clip    *model.AnimationClip
	binding *model.ClipBinding

	elapsedSeconds float64
	currentTick    float64
	speed          float64

	boneMatrices []mgl32.Mat4
}

// Player samples one animation instance of a Model.
// It owns its elapsed time and bone matrix output; the Model it reads is shared and never mutated.
// A Player is not safe for concurrent use.
type Player interface {
	// ID returns the unique identifier of this instance, used in diagnostics.
	//
	// Returns:
	//   - uuid.UUID: the instance identifier
	ID() uuid.UUID

	// Model returns the asset this player samples.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// State reports whether a clip is assigned.
	//
	// Returns:
	//   - PlayerState: the current state
	State() PlayerState

	// Clip returns the assigned clip, or nil when idle.
	//
	// Returns:
	//   - *model.AnimationClip: the current clip
	Clip() *model.AnimationClip

	// SetClip assigns the named clip and restarts its timeline at zero.
	// An unknown name leaves the player untouched and logs a warning.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: true if the clip was found and assigned
	SetClip(name string) bool

	// Stop unassigns the clip and resets the bone matrices to the rest pose.
	// The elapsed time counter keeps its value.
	Stop()

	// Tick advances the elapsed time by deltaSeconds scaled by the playback speed.
	// When a clip is assigned the current tick wraps to the clip duration and the pose is recomposed.
	//
	// Parameters:
	//   - deltaSeconds: the simulation step in seconds
	Tick(deltaSeconds float64)

	// SetTime seeks to an absolute elapsed time and recomposes the pose if a clip is assigned.
	//
	// Parameters:
	//   - seconds: the elapsed time in seconds
	SetTime(seconds float64)

	// SetSpeed sets the playback speed multiplier applied to every tick.
	//
	// Parameters:
	//   - speed: the multiplier; 1 is normal speed
	SetSpeed(speed float64)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float64: the multiplier
	Speed() float64

	// ElapsedSeconds returns the accumulated playback time.
	//
	// Returns:
	//   - float64: the elapsed time in seconds
	ElapsedSeconds() float64

	// CurrentTick returns the clip-local tick computed by the last evaluation.
	//
	// Returns:
	//   - float64: the tick, in [0, duration)
	CurrentTick() float64

	// BoneMatrices returns the skinning matrices indexed by bone.
	// The slice is owned by the player and overwritten on every tick.
	//
	// Returns:
	//   - []mgl32.Mat4: the skinning matrices
	BoneMatrices() []mgl32.Mat4
}

var _ Player = &player{}

// NewPlayer creates an idle Player for the given model with its bones in the rest pose.
//
// Parameters:
//   - m: the model to sample
//   - options: a variadic list of PlayerBuilderOption functions to configure the player
//
// Returns:
//   - Player: the new player
func NewPlayer(m model.Model, options ...PlayerBuilderOption) Player {
	skeleton := m.Skeleton()
	p := &player{
		id:           uuid.New(),
		model:        m,
		logger:       common.NopLogger(),
		composer:     NewComposer(skeleton),
		speed:        1,
		boneMatrices: make([]mgl32.Mat4, skeleton.BoneCount()),
	}
	for _, opt := range options {
		opt(p)
	}
	p.composer.Compose(nil, nil, 0, p.boneMatrices)
	return p
}

func (p *player) ID() uuid.UUID {
	return p.id
}

func (p *player) Model() model.Model {
	return p.model
}

func (p *player) State() PlayerState {
	if p.clip == nil {
		return PlayerStateIdle
	}
	return PlayerStatePlaying
}

func (p *player) Clip() *model.AnimationClip {
	return p.clip
}

func (p *player) SetClip(name string) bool {
	index := p.model.GetAnimationIndex(name)
	if index < 0 {
		p.logger.Warn("animation clip not found",
			"clip", name,
			"model", p.model.Name(),
			"instance", p.id,
			"state", p.State(),
		)
		return false
	}

	p.clip, p.binding = p.model.Animation(index)
	p.elapsedSeconds = 0
	p.currentTick = 0
	p.logger.Debug("animation clip set", "clip", name, "instance", p.id)
	return true
}

func (p *player) Stop() {
	p.clip = nil
	p.binding = nil
	p.currentTick = 0
	p.composer.Compose(nil, nil, 0, p.boneMatrices)
}

func (p *player) Tick(deltaSeconds float64) {
	p.elapsedSeconds += deltaSeconds * p.speed
	p.evaluate()
}

func (p *player) SetTime(seconds float64) {
	p.elapsedSeconds = seconds
	p.evaluate()
}

func (p *player) SetSpeed(speed float64) {
	p.speed = speed
}

func (p *player) Speed() float64 {
	return p.speed
}

func (p *player) ElapsedSeconds() float64 {
	return p.elapsedSeconds
}

func (p *player) CurrentTick() float64 {
	return p.currentTick
}

func (p *player) BoneMatrices() []mgl32.Mat4 {
	return p.boneMatrices
}

// evaluate recomputes the current tick and pose when a clip is assigned.
func (p *player) evaluate() {
	if p.clip == nil {
		return
	}
	p.currentTick = loopTick(p.elapsedSeconds, p.clip.TicksPerSecond, p.clip.DurationTicks)
	p.composer.Compose(p.clip, p.binding, p.currentTick, p.boneMatrices)
}

// loopTick converts elapsed seconds to a tick wrapped into [0, duration).
func loopTick(elapsedSeconds, ticksPerSecond, durationTicks float64) float64 {
	if durationTicks <= 0 {
		return 0
	}
	tick := math.Mod(elapsedSeconds*ticksPerSecond, durationTicks)
	if tick < 0 {
		tick += durationTicks
	}
	return tick
}
