package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/animator"
	"github.com/charmbracelet/log"
)

// defaultTickRate is the update frequency used when none, or a non-positive one, is given.
const defaultTickRate = 60.0

type engine struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration

	running     bool
	quitChannel chan struct{}
	quitOnce    sync.Once

	logger *log.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaSeconds float64)

	animators map[int]animator.Animator
}

// Engine drives registered animators at a fixed tick rate.
// Animators are updated in ascending key order on every tick, followed by the tick callback,
// which is the place to flush bone buffers to a renderer.
type Engine interface {
	// EnableProfiler turns on per-tick update timing.
	EnableProfiler()

	// DisableProfiler turns off per-tick update timing.
	DisableProfiler()

	// SetTickRate sets the update frequency. It takes effect on a running engine at the next tick.
	//
	// Parameters:
	//   - hz: ticks per second; values <= 0 select 60
	SetTickRate(hz float64)

	// SetTickCallback sets a function called after the animators have been updated each tick.
	//
	// Parameters:
	//   - callback: receives the tick's delta time in seconds
	SetTickCallback(callback func(deltaSeconds float64))

	// AddAnimator registers an animator under key, replacing any previous one.
	AddAnimator(key int, a animator.Animator)

	// RemoveAnimator unregisters the animator under key.
	RemoveAnimator(key int)

	// Animator returns the animator under key, or nil.
	Animator(key int) animator.Animator

	// Animators returns a copy of the registered animators.
	Animators() map[int]animator.Animator

	// Step advances every animator by deltaSeconds and runs the tick callback.
	// Run calls Step from its ticker; callers driving their own clock may call it directly.
	//
	// Parameters:
	//   - deltaSeconds: the time since the previous step
	Step(deltaSeconds float64)

	// Run ticks until ctx is done or Quit is called.
	//
	// Parameters:
	//   - ctx: cancels the loop
	Run(ctx context.Context)

	// Quit stops a running loop. It is safe to call more than once.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an engine ticking at 60Hz with profiling disabled.
//
// Parameters:
//   - options: a variadic list of EngineBuilderOption functions to configure the engine
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		logger:          common.NopLogger(),
		engineTickRate:  tickInterval(defaultTickRate),
		animators:       make(map[int]animator.Animator),
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

// tickInterval converts a frequency to a ticker period.
func tickInterval(hz float64) time.Duration {
	if hz <= 0 {
		hz = defaultTickRate
	}
	return time.Duration(float64(time.Second) / hz)
}

func (e *engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	interval := e.engineTickRate
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Debug("engine started", "interval", interval)
	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quitChannel:
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

func (e *engine) Step(deltaSeconds float64) {
	e.mu.RLock()
	keys := make([]int, 0, len(e.animators))
	for k := range e.animators {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	active := make([]animator.Animator, len(keys))
	for i, k := range keys {
		active[i] = e.animators[k]
	}
	profiling := e.profilingEnabled
	callback := e.tickCallback
	e.mu.RUnlock()

	update := func() {
		for _, a := range active {
			a.Update(deltaSeconds)
		}
	}
	if profiling {
		e.profiler.Time(update)
	} else {
		update()
	}

	if callback != nil {
		callback(deltaSeconds)
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(hz float64) {
	newRate := tickInterval(hz)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		e.engineTickRate = newRate
		return
	}

	// Keep only the latest pending rate.
	select {
	case <-e.tickRateChannel:
	default:
	}
	e.tickRateChannel <- newRate
}

func (e *engine) SetTickCallback(callback func(deltaSeconds float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddAnimator(key int, a animator.Animator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.animators[key] = a
}

func (e *engine) RemoveAnimator(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.animators, key)
}

func (e *engine) Animator(key int) animator.Animator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.animators[key]
}

func (e *engine) Animators() map[int]animator.Animator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]animator.Animator, len(e.animators))
	for k, v := range e.animators {
		cp[k] = v
	}
	return cp
}
