package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/bind_group_provider"
	"github.com/charmbracelet/log"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithMaxInstances is an option builder that sets the initial instance capacity of the Animator.
// The capacity still grows on demand; this only sizes the first allocation and the bone buffer.
//
// Parameters:
//   - maxInstances: the number of instances to reserve
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the max instances option to an animator
func WithMaxInstances(maxInstances int) AnimatorBuilderOption {
	return func(a *animator) {
		if maxInstances > 0 {
			a.maxInstances = maxInstances
		}
	}
}

// WithModel is an option builder that assigns the shared Model of every instance.
//
// Parameters:
//   - m: the Model to associate with this animator
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the model option to an animator
func WithModel(m model.Model) AnimatorBuilderOption {
	return func(a *animator) {
		a.model = m
	}
}

// WithWorkers is an option builder that sets how many goroutines tick instances in parallel.
// Values of 1 or less tick instances serially on the caller goroutine.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the workers option to an animator
func WithWorkers(workers int) AnimatorBuilderOption {
	return func(a *animator) {
		a.workers = workers
	}
}

// WithLogger is an option builder that sets the logger used by the Animator and its players.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(logger *log.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithOutputBindGroupProvider is an option builder that sets the provider receiving staged bone writes.
//
// Parameters:
//   - provider: the output provider
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the provider option to an animator
func WithOutputBindGroupProvider(provider bind_group_provider.BindGroupProvider) AnimatorBuilderOption {
	return func(a *animator) {
		a.outputProvider = provider
	}
}

// WithSink is an option builder that adds a BoneSink notified with every instance's bones after Update.
//
// Parameters:
//   - sink: the sink to add
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the sink option to an animator
func WithSink(sink BoneSink) AnimatorBuilderOption {
	return func(a *animator) {
		a.sinks = append(a.sinks, sink)
	}
}
