package animator

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/bind_group_provider"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoModel is returned when an instance is added to an Animator that has no Model.
var ErrNoModel = errors.New("animator has no model")

// defaultMaxInstances is the initial instance capacity when WithMaxInstances is not given.
const defaultMaxInstances = 8

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	model   model.Model
	logger  *log.Logger
	players []Player
	sinks   []BoneSink

	maxInstances int
	boneCount    int

	// needsRebuild is set by grow; the bone buffer sized for the old capacity is too small.
	needsRebuild bool

	workers int
	pool    worker.DynamicWorkerPool

	outputProvider bind_group_provider.BindGroupProvider

	// dirty tracks the contiguous instance range whose bone matrices changed since the last Flush.
	dirty, globalsDirty  bool
	dirtyStart, dirtyEnd int

	stagingBones    []mgl32.Mat4
	stagedWriteData []bind_group_provider.BufferWrite
}

// Animator drives a set of animation instances that share one Model.
// Each instance is a Player; Update ticks all of them and Flush stages their skinning matrices
// as GPU buffer writes. Instance i owns bones [i*BoneCount, (i+1)*BoneCount) on the output buffer.
// All methods are safe for concurrent use.
type Animator interface {
	// Model returns the asset shared by every instance.
	//
	// Returns:
	//   - model.Model: the model, or nil if none was configured
	Model() model.Model

	// OutputBindGroupProvider returns the provider whose bone binding receives staged writes.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the output provider
	OutputBindGroupProvider() bind_group_provider.BindGroupProvider

	// AddInstance creates an idle Player and returns its index.
	// Capacity doubles (minimum 8) when full.
	//
	// Returns:
	//   - int: the new instance index
	//   - error: ErrNoModel if the animator was built without a model
	AddInstance() (int, error)

	// RemoveInstance removes an instance using a swap-remove strategy.
	// When the removed index was not the last, the last instance moves into its slot and the
	// caller must update any stored index that referred to it.
	//
	// Parameters:
	//   - index: the instance index to remove
	//
	// Returns:
	//   - int: the old last index that was swapped into the removed slot (only meaningful when bool is true)
	//   - bool: true if the last instance was swapped into the removed slot
	RemoveInstance(index int) (int, bool)

	// InstanceCount returns the number of live instances.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	// MaxInstances returns the current instance capacity.
	//
	// Returns:
	//   - int: the capacity
	MaxInstances() int

	// BoneCount returns the number of bones per instance.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Player returns the Player at an instance index, or nil if out of range.
	//
	// Parameters:
	//   - index: the instance index
	//
	// Returns:
	//   - Player: the player
	Player(index int) Player

	// PlayAnimation assigns a clip to an instance by name.
	//
	// Parameters:
	//   - index: the instance index
	//   - clip: the clip name
	//
	// Returns:
	//   - bool: true if the instance exists and the clip was found
	PlayAnimation(index int, clip string) bool

	// SetAnimationTime seeks an instance to an absolute elapsed time.
	//
	// Parameters:
	//   - index: the instance index
	//   - seconds: the elapsed time in seconds
	SetAnimationTime(index int, seconds float64)

	// SetAnimationSpeed sets the playback speed multiplier of an instance.
	//
	// Parameters:
	//   - index: the instance index
	//   - speed: the multiplier
	SetAnimationSpeed(index int, speed float64)

	// Update ticks every instance by deltaSeconds and hands the resulting bones to the configured sinks.
	// With more than one worker configured, instances are ticked in parallel.
	//
	// Parameters:
	//   - deltaSeconds: the simulation step in seconds
	Update(deltaSeconds float64)

	// Flush stages GPU writes for every instance whose bones changed since the last Flush.
	// The staged writes are retrieved with StagedWriteData.
	//
	// Parameters:
	//   - boneBinding: the binding index of the bone matrix buffer
	//   - globalsBinding: the binding index of the SkinningGlobals uniform
	//
	// Returns:
	//   - int: the number of instances staged
	Flush(boneBinding, globalsBinding int) int

	// StagedWriteData drains the writes staged by Flush.
	// The data slices remain valid until the next Flush.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: the staged writes
	StagedWriteData() []bind_group_provider.BufferWrite

	// NeedsRebuild reports whether the capacity grew since the bone buffer was last sized.
	// While set, the GPU bone buffer must be recreated with BoneBufferSize before writes are uploaded.
	//
	// Returns:
	//   - bool: true if the bone buffer must be recreated
	NeedsRebuild() bool

	// ClearNeedsRebuild resets the rebuild flag and marks every instance dirty so the next Flush
	// refills the recreated buffer.
	ClearNeedsRebuild()

	// BoneBufferSize returns the byte size of a bone buffer able to hold MaxInstances instances.
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	BoneBufferSize() uint64

	// Release releases the GPU resources of the output provider.
	Release()
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator with the provided options.
//
// Parameters:
//   - options: a variadic list of AnimatorBuilderOption functions to configure the animator
//
// Returns:
//   - Animator: the new animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:           &sync.Mutex{},
		logger:       common.NopLogger(),
		maxInstances: defaultMaxInstances,
		workers:      1,
	}
	for _, opt := range options {
		opt(a)
	}

	if a.outputProvider == nil {
		a.outputProvider = bind_group_provider.NewBindGroupProvider("skeletal_animator_output")
	}
	if a.model != nil {
		a.boneCount = a.model.Skeleton().BoneCount()
	}
	a.players = make([]Player, 0, a.maxInstances)
	a.stagingBones = make([]mgl32.Mat4, a.maxInstances*a.boneCount)
	a.stagedWriteData = make([]bind_group_provider.BufferWrite, 0, 2)

	// Initialize the pool after options so WithWorkers can override the default.
	if a.workers > 1 {
		a.pool = worker.NewDynamicWorkerPool(a.workers, 256, 1*time.Second)
	}
	return a
}

func (a *animator) Model() model.Model {
	return a.model
}

func (a *animator) OutputBindGroupProvider() bind_group_provider.BindGroupProvider {
	return a.outputProvider
}

func (a *animator) AddInstance() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model == nil {
		return 0, ErrNoModel
	}

	if len(a.players) >= a.maxInstances {
		a.grow(max(a.maxInstances*2, 8))
	}

	p := NewPlayer(a.model, WithPlayerLogger(a.logger))
	idx := len(a.players)
	a.players = append(a.players, p)
	a.markDirty(idx)
	a.globalsDirty = true
	a.logger.Debug("animator instance added", "model", a.model.Name(), "index", idx, "instance", p.ID())
	return idx, nil
}

// grow resizes the instance capacity. Callers must hold mu.
func (a *animator) grow(newMax int) {
	a.logger.Debug("animator capacity grown", "from", a.maxInstances, "to", newMax)
	a.maxInstances = newMax
	a.needsRebuild = true
	grown := make([]mgl32.Mat4, newMax*a.boneCount)
	copy(grown, a.stagingBones)
	a.stagingBones = grown
}

func (a *animator) RemoveInstance(index int) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.players) {
		return 0, false
	}

	last := len(a.players) - 1
	swapped := index != last
	if swapped {
		a.players[index] = a.players[last]
		a.markDirty(index)
	}
	a.players[last] = nil
	a.players = a.players[:last]
	if a.dirty && a.dirtyEnd > len(a.players) {
		a.dirtyEnd = len(a.players)
		if a.dirtyStart >= a.dirtyEnd {
			a.dirty = false
			a.dirtyStart, a.dirtyEnd = 0, 0
		}
	}
	a.globalsDirty = true
	return last, swapped
}

// markDirty extends the dirty range to cover index. Callers must hold mu.
func (a *animator) markDirty(index int) {
	if !a.dirty {
		a.dirtyStart = index
		a.dirtyEnd = index + 1
		a.dirty = true
		return
	}
	if index < a.dirtyStart {
		a.dirtyStart = index
	}
	if index+1 > a.dirtyEnd {
		a.dirtyEnd = index + 1
	}
}

func (a *animator) InstanceCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.players)
}

func (a *animator) MaxInstances() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxInstances
}

func (a *animator) BoneCount() int {
	return a.boneCount
}

func (a *animator) Player(index int) Player {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.players) {
		return nil
	}
	return a.players[index]
}

func (a *animator) PlayAnimation(index int, clip string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.players) {
		return false
	}
	return a.players[index].SetClip(clip)
}

func (a *animator) SetAnimationTime(index int, seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.players) {
		return
	}
	a.players[index].SetTime(seconds)
	a.markDirty(index)
}

func (a *animator) SetAnimationSpeed(index int, speed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.players) {
		return
	}
	a.players[index].SetSpeed(speed)
}

func (a *animator) Update(deltaSeconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.players)
	if n == 0 {
		return
	}

	if a.pool == nil || n == 1 {
		for _, p := range a.players {
			p.Tick(deltaSeconds)
		}
	} else {
		a.tickParallel(deltaSeconds)
	}

	for i, p := range a.players {
		for _, sink := range a.sinks {
			sink.WriteBones(i, p.BoneMatrices())
		}
	}
	a.markDirty(0)
	a.markDirty(n - 1)
}

// tickParallel splits the players into one contiguous chunk per worker and ticks the chunks on the pool.
// Players are disjoint and only read the shared model, so chunks need no further synchronization.
// A WaitGroup provides the per-update barrier. Callers must hold mu.
func (a *animator) tickParallel(deltaSeconds float64) {
	n := len(a.players)
	chunks := min(a.workers, n)
	size := (n + chunks - 1) / chunks

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += size {
		chunk := a.players[start:min(start+size, n)]
		wg.Add(1)
		id := taskID
		taskID++
		a.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, p := range chunk {
					p.Tick(deltaSeconds)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (a *animator) Flush(boneBinding, globalsBinding int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	var count int
	if a.dirty && a.boneCount > 0 {
		count = a.dirtyEnd - a.dirtyStart
		for i := a.dirtyStart; i < a.dirtyEnd; i++ {
			copy(a.stagingBones[i*a.boneCount:(i+1)*a.boneCount], a.players[i].BoneMatrices())
		}

		dirty := a.stagingBones[a.dirtyStart*a.boneCount : a.dirtyEnd*a.boneCount]
		a.stagedWriteData = append(a.stagedWriteData, bind_group_provider.BufferWrite{
			Provider: a.outputProvider,
			Binding:  boneBinding,
			Offset:   uint64(a.dirtyStart*a.boneCount) * uint64((&GPUBoneMatrix{}).Size()),
			Data:     common.SliceToBytes(dirty),
		})
	}
	a.dirty = false
	a.dirtyStart, a.dirtyEnd = 0, 0

	if a.globalsDirty {
		globals := GPUSkinningGlobals{
			BoneCount:     uint32(a.boneCount),
			InstanceCount: uint32(len(a.players)),
		}
		a.stagedWriteData = append(a.stagedWriteData, bind_group_provider.BufferWrite{
			Provider: a.outputProvider,
			Binding:  globalsBinding,
			Offset:   0,
			Data:     globals.Marshal(),
		})
		a.globalsDirty = false
	}

	return count
}

func (a *animator) StagedWriteData() []bind_group_provider.BufferWrite {
	a.mu.Lock()
	defer a.mu.Unlock()
	w := a.stagedWriteData
	a.stagedWriteData = make([]bind_group_provider.BufferWrite, 0, 2)
	return w
}

func (a *animator) NeedsRebuild() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.needsRebuild
}

func (a *animator) ClearNeedsRebuild() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.needsRebuild = false
	if n := len(a.players); n > 0 {
		a.markDirty(0)
		a.markDirty(n - 1)
	}
	a.globalsDirty = true
}

func (a *animator) BoneBufferSize() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uint64(a.maxInstances*a.boneCount) * uint64((&GPUBoneMatrix{}).Size())
}

func (a *animator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outputProvider.Release()
}
