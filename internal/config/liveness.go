package config

import (
	"FaceLiveness/pkg/liveness"
	"fmt"
	"os"
	"strconv"
	"time"
)

type LivenessConfig struct {
	Validation liveness.Config
	SessionTTL time.Duration
}

func defaultLivenessConfig() LivenessConfig {
	return LivenessConfig{
		Validation: liveness.Config{
			MinConfidence:             0.9,
			RequiredConsecutiveFrames: 90,
			FrontalRatioThreshold:     0.7,
			RegionOfInterest: &liveness.Region{
				X:      0.2,
				Y:      0.15,
				Width:  0.6,
				Height: 0.7,
			},
			Containment: liveness.ContainmentCenter,
			Mirrored:    true,
		},
		SessionTTL: 10 * time.Minute,
	}
}

// LoadLivenessConfig reads LIVENESS_* variables over the defaults.
// LIVENESS_ROI=off disables the region check.
func LoadLivenessConfig() (LivenessConfig, error) {
	cfg := defaultLivenessConfig()
	v := &cfg.Validation

	var err error
	if v.MinConfidence, err = envFloat("LIVENESS_MIN_CONFIDENCE", v.MinConfidence); err != nil {
		return LivenessConfig{}, err
	}
	if v.RequiredConsecutiveFrames, err = envInt("LIVENESS_REQUIRED_FRAMES", v.RequiredConsecutiveFrames); err != nil {
		return LivenessConfig{}, err
	}
	if v.FrontalRatioThreshold, err = envFloat("LIVENESS_FRONTAL_RATIO", v.FrontalRatioThreshold); err != nil {
		return LivenessConfig{}, err
	}
	if v.Mirrored, err = envBool("LIVENESS_MIRRORED", v.Mirrored); err != nil {
		return LivenessConfig{}, err
	}
	if containment := os.Getenv("LIVENESS_CONTAINMENT"); containment != "" {
		v.Containment = liveness.Containment(containment)
	}

	if os.Getenv("LIVENESS_ROI") == "off" {
		v.RegionOfInterest = nil
	} else {
		roi := v.RegionOfInterest
		if roi.X, err = envFloat("LIVENESS_ROI_X", roi.X); err != nil {
			return LivenessConfig{}, err
		}
		if roi.Y, err = envFloat("LIVENESS_ROI_Y", roi.Y); err != nil {
			return LivenessConfig{}, err
		}
		if roi.Width, err = envFloat("LIVENESS_ROI_WIDTH", roi.Width); err != nil {
			return LivenessConfig{}, err
		}
		if roi.Height, err = envFloat("LIVENESS_ROI_HEIGHT", roi.Height); err != nil {
			return LivenessConfig{}, err
		}
	}

	if raw := os.Getenv("LIVENESS_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return LivenessConfig{}, fmt.Errorf("invalid LIVENESS_SESSION_TTL %q", raw)
		}
		cfg.SessionTTL = ttl
	}

	if err := v.Validate(); err != nil {
		return LivenessConfig{}, err
	}

	return cfg, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return val, nil
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return val, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return val, nil
}
