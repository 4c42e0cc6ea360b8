// Package liveness turns per-frame face detections into a debounced capture decision.
//
// A face must be frontal and confident, and inside the region of interest when one is
// configured, for RequiredConsecutiveFrames frames in a row. Any disqualifying frame resets
// the streak to zero. Acceptance is terminal for the lifetime of a State.
package liveness

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidConfig = errors.New("invalid liveness config")
	ErrRegionBounds  = errors.New("region of interest exceeds the frame")
)

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if roi := c.RegionOfInterest; roi != nil {
		if roi.X+roi.Width > 1 || roi.Y+roi.Height > 1 {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrRegionBounds)
		}
	}

	return nil
}

// Evaluate applies one frame to state. A nil obs means no face was detected.
// Once state has succeeded every call returns StatusAlreadyAccepted without mutating it.
func Evaluate(obs *Observation, cfg Config, state *State) Decision {
	if state.Phase == PhaseSucceeded {
		return Decision{Status: StatusAlreadyAccepted, Progress: 100}
	}

	if obs == nil {
		state.ConsecutiveFrames = 0
		return Decision{Status: StatusNoFace}
	}

	if cfg.RegionOfInterest != nil && !InRegion(obs, *cfg.RegionOfInterest, cfg.Containment, cfg.Mirrored) {
		state.ConsecutiveFrames = 0
		return Decision{Status: StatusOutOfRegion}
	}

	var reason Reason
	if !IsFacingForward(obs.Keypoints, cfg.FrontalRatioThreshold) {
		reason |= ReasonNotFrontal
	}
	if !(obs.Confidence > cfg.MinConfidence) {
		reason |= ReasonLowConfidence
	}

	if reason != 0 {
		state.ConsecutiveFrames = 0
		return Decision{Status: StatusInvalid, Reason: reason}
	}

	state.ConsecutiveFrames++
	if state.ConsecutiveFrames >= cfg.RequiredConsecutiveFrames {
		state.Phase = PhaseSucceeded
		return Decision{Status: StatusAccepted, Progress: 100}
	}

	return Decision{
		Status:   StatusValidating,
		Progress: progress(state.ConsecutiveFrames, cfg.RequiredConsecutiveFrames),
	}
}

// progress stays below 100 until the streak is complete.
func progress(frames, required int) int {
	p := int(math.Round(100 * float64(frames) / float64(required)))
	if p > 99 {
		return 99
	}
	return p
}

// Validator owns one capture session's state.
type Validator struct {
	cfg   Config
	state State
}

func New(cfg Config) (*Validator, error) {
	if cfg.Containment == "" {
		cfg.Containment = ContainmentCenter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Validator{cfg: cfg}, nil
}

func (v *Validator) Evaluate(obs *Observation) Decision {
	return Evaluate(obs, v.cfg, &v.state)
}

func (v *Validator) Config() Config {
	return v.cfg
}

func (v *Validator) State() State {
	return v.state
}

func (v *Validator) Done() bool {
	return v.state.Phase == PhaseSucceeded
}
