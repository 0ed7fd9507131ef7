package model

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// NewAnimationClip validates and indexes an animation clip.
// A ticksPerSecond of zero is replaced with DefaultTicksPerSecond.
//
// Parameters:
//   - name: the clip name
//   - durationTicks: the clip length in ticks
//   - ticksPerSecond: the tick rate reported by the source
//   - channels: the per-node tracks
//
// Returns:
//   - *AnimationClip: the built clip
//   - error: an error wrapping ErrInvalidClip if the timing or keyframe order is malformed
func NewAnimationClip(name string, durationTicks, ticksPerSecond float64, channels []Channel) (*AnimationClip, error) {
	if durationTicks < 0 || math.IsNaN(durationTicks) || math.IsInf(durationTicks, 0) {
		return nil, fmt.Errorf("%w: %q has duration %v", ErrInvalidClip, name, durationTicks)
	}
	if ticksPerSecond < 0 || math.IsNaN(ticksPerSecond) || math.IsInf(ticksPerSecond, 0) {
		return nil, fmt.Errorf("%w: %q has tick rate %v", ErrInvalidClip, name, ticksPerSecond)
	}

	c := &AnimationClip{
		Name:           name,
		DurationTicks:  durationTicks,
		TicksPerSecond: common.Coalesce(ticksPerSecond, DefaultTicksPerSecond),
		Channels:       channels,
		channelByNode:  make(map[string]int, len(channels)),
	}

	for i := range channels {
		ch := &channels[i]
		if _, ok := c.channelByNode[ch.NodeName]; ok {
			return nil, fmt.Errorf("%w: %q animates node %q twice", ErrInvalidClip, name, ch.NodeName)
		}
		if err := checkOrdered(ch.PositionKeys, func(k VectorKey) float64 { return k.Time }); err != nil {
			return nil, fmt.Errorf("%w: %q position keys of %q: %w", ErrInvalidClip, name, ch.NodeName, err)
		}
		if err := checkOrdered(ch.RotationKeys, func(k QuatKey) float64 { return k.Time }); err != nil {
			return nil, fmt.Errorf("%w: %q rotation keys of %q: %w", ErrInvalidClip, name, ch.NodeName, err)
		}
		if err := checkOrdered(ch.ScaleKeys, func(k VectorKey) float64 { return k.Time }); err != nil {
			return nil, fmt.Errorf("%w: %q scale keys of %q: %w", ErrInvalidClip, name, ch.NodeName, err)
		}
		c.channelByNode[ch.NodeName] = i
	}

	return c, nil
}

// checkOrdered verifies key times are finite and non-decreasing.
func checkOrdered[K any](keys []K, timeOf func(K) float64) error {
	prev := math.Inf(-1)
	for i, k := range keys {
		t := timeOf(k)
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("key %d has time %v", i, t)
		}
		if t < prev {
			return fmt.Errorf("key %d at %v precedes key %d at %v", i, t, i-1, prev)
		}
		prev = t
	}
	return nil
}

// Channel returns the channel animating a node.
//
// Parameters:
//   - nodeName: the node name
//
// Returns:
//   - *Channel: the channel, or nil
//   - bool: true if the node is animated by this clip
func (c *AnimationClip) Channel(nodeName string) (*Channel, bool) {
	i, ok := c.channelByNode[nodeName]
	if !ok {
		return nil, false
	}
	return &c.Channels[i], true
}

// DurationSeconds returns the clip length in seconds.
//
// Returns:
//   - float64: DurationTicks / TicksPerSecond
func (c *AnimationClip) DurationSeconds() float64 {
	return c.DurationTicks / c.TicksPerSecond
}
