package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/animator"
	"github.com/spf13/cobra"
)

const (
	reloadMinDelay = 250 * time.Millisecond
	reloadMaxDelay = 8 * time.Second
)

// reloadBackoff spaces out reload attempts of an evicted asset that keeps failing to import,
// for example while an editor is still writing it.
type reloadBackoff struct {
	failures int
	retryAt  time.Time
}

// ready reports whether a reload may be attempted at now.
func (b *reloadBackoff) ready(now time.Time) bool {
	return !now.Before(b.retryAt)
}

// fail records a failed attempt at now and returns the delay before the next one.
// The delay doubles per consecutive failure, from reloadMinDelay up to reloadMaxDelay.
func (b *reloadBackoff) fail(now time.Time) time.Duration {
	delay := reloadMaxDelay
	if b.failures < 16 {
		delay = min(reloadMinDelay<<b.failures, reloadMaxDelay)
	}
	b.failures++
	b.retryAt = now.Add(delay)
	return delay
}

func (b *reloadBackoff) reset() {
	b.failures = 0
	b.retryAt = time.Time{}
}

type playOptions struct {
	clip      string
	duration  time.Duration
	rate      float64
	instances int
}

func newPlayCommand(a *app) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Run instances of a clip in real time and log update timings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.instances < 1 {
				return fmt.Errorf("--instances must be at least 1, got %d", opts.instances)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.duration)
			defer cancel()
			return a.play(ctx, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.clip, "clip", "", "clip to play (default: the first clip)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 5*time.Second, "how long to run")
	cmd.Flags().Float64Var(&opts.rate, "rate", 60, "ticks per second")
	cmd.Flags().IntVar(&opts.instances, "instances", 64, "number of instances to animate")
	return cmd
}

// play drives the animator on the engine loop. With loader.watch set, a changed asset is
// re-imported and a fresh animator replaces the old one on the next tick.
func (a *app) play(ctx context.Context, path string, opts *playOptions) error {
	l, m, err := a.loadModel(path)
	if err != nil {
		return err
	}
	defer l.Close()

	clip := opts.clip
	if clip == "" && m.AnimationCount() > 0 {
		clip = m.AnimationNames()[0]
	}

	anim, err := a.newAnimator(m, opts.instances, clip)
	if err != nil {
		return err
	}

	if a.cfg.Loader.Watch {
		go func() {
			if err := l.Watch(ctx); err != nil {
				a.logger.Error("asset watch stopped", "err", err)
			}
		}()
	}

	key := filepath.Clean(path)
	backoff := &reloadBackoff{}
	var e engine.Engine
	e = engine.NewEngine(
		engine.WithLogger(a.logger),
		engine.WithTickRate(opts.rate),
		engine.WithProfiling(true),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(a.logger))),
		engine.WithAnimator(0, anim),
		engine.WithTickCallback(func(float64) {
			if l.Get(key) != nil {
				return
			}
			now := time.Now()
			if !backoff.ready(now) {
				return
			}
			reloaded, err := l.Load(key)
			if err == nil {
				var next animator.Animator
				if next, err = a.newAnimator(reloaded, opts.instances, clip); err == nil {
					backoff.reset()
					old := e.Animator(0)
					e.AddAnimator(0, next)
					if old != nil {
						old.Release()
					}
					a.logger.Info("asset reloaded", "path", key, "clips", reloaded.AnimationCount())
					return
				}
				l.Evict(key)
			}
			first := backoff.failures == 0
			delay := backoff.fail(now)
			if first {
				a.logger.Warn("asset reload failed", "path", key, "err", err, "retry", delay)
			} else {
				a.logger.Debug("asset reload failed", "path", key, "err", err, "retry", delay, "attempt", backoff.failures)
			}
		}),
	)

	a.logger.Info("playing", "model", m.Name(), "clip", clip, "instances", opts.instances, "rate", opts.rate)
	e.Run(ctx)

	if current := e.Animator(0); current != nil {
		p := current.Player(0)
		a.logger.Info("stopped", "elapsed", p.ElapsedSeconds(), "tick", p.CurrentTick())
		current.Release()
	}
	return nil
}
