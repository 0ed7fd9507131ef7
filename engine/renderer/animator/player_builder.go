package animator

import "github.com/charmbracelet/log"

// PlayerBuilderOption is a functional option for configuring a Player during construction.
type PlayerBuilderOption func(*player)

// WithPlayerLogger is an option builder that sets the logger receiving player diagnostics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - PlayerBuilderOption: a function that applies the logger option to a player
func WithPlayerLogger(logger *log.Logger) PlayerBuilderOption {
	return func(p *player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPlayerSpeed is an option builder that sets the initial playback speed multiplier.
//
// Parameters:
//   - speed: the multiplier
//
// Returns:
//   - PlayerBuilderOption: a function that applies the speed option to a player
func WithPlayerSpeed(speed float64) PlayerBuilderOption {
	return func(p *player) {
		p.speed = speed
	}
}
