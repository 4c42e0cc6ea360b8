package config

import (
	"FaceLiveness/pkg/liveness"
	"errors"
	"testing"
	"time"
)

func TestLoadLivenessConfigDefaults(t *testing.T) {
	cfg, err := LoadLivenessConfig()
	if err != nil {
		t.Fatalf("LoadLivenessConfig: %v", err)
	}

	v := cfg.Validation
	if v.MinConfidence != 0.9 || v.RequiredConsecutiveFrames != 90 || v.FrontalRatioThreshold != 0.7 {
		t.Errorf("unexpected thresholds %+v", v)
	}
	if v.RegionOfInterest == nil || *v.RegionOfInterest != (liveness.Region{X: 0.2, Y: 0.15, Width: 0.6, Height: 0.7}) {
		t.Errorf("unexpected region %+v", v.RegionOfInterest)
	}
	if v.Containment != liveness.ContainmentCenter || !v.Mirrored {
		t.Errorf("unexpected containment %q mirrored %v", v.Containment, v.Mirrored)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadLivenessConfigOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg LivenessConfig)
		wantErr error
	}{
		{
			name: "thresholds",
			env: map[string]string{
				"LIVENESS_MIN_CONFIDENCE":  "0.8",
				"LIVENESS_REQUIRED_FRAMES": "30",
				"LIVENESS_CONTAINMENT":     "full",
				"LIVENESS_MIRRORED":        "false",
				"LIVENESS_SESSION_TTL":     "2m",
			},
			check: func(t *testing.T, cfg LivenessConfig) {
				v := cfg.Validation
				if v.MinConfidence != 0.8 || v.RequiredConsecutiveFrames != 30 || v.Containment != liveness.ContainmentFull || v.Mirrored {
					t.Errorf("overrides not applied: %+v", v)
				}
				if cfg.SessionTTL != 2*time.Minute {
					t.Errorf("unexpected ttl %v", cfg.SessionTTL)
				}
			},
		},
		{
			name: "region disabled",
			env:  map[string]string{"LIVENESS_ROI": "off"},
			check: func(t *testing.T, cfg LivenessConfig) {
				if cfg.Validation.RegionOfInterest != nil {
					t.Errorf("expected no region, got %+v", cfg.Validation.RegionOfInterest)
				}
			},
		},
		{
			name:    "region outside the frame",
			env:     map[string]string{"LIVENESS_ROI_X": "0.5", "LIVENESS_ROI_WIDTH": "0.6"},
			wantErr: liveness.ErrRegionBounds,
		},
		{
			name:    "zero frames",
			env:     map[string]string{"LIVENESS_REQUIRED_FRAMES": "0"},
			wantErr: liveness.ErrInvalidConfig,
		},
		{
			name:    "unknown containment",
			env:     map[string]string{"LIVENESS_CONTAINMENT": "partial"},
			wantErr: liveness.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadLivenessConfig()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadLivenessConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadLivenessConfigParseErrors(t *testing.T) {
	for _, key := range []string{"LIVENESS_MIN_CONFIDENCE", "LIVENESS_REQUIRED_FRAMES", "LIVENESS_MIRRORED", "LIVENESS_SESSION_TTL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "not-a-value")
			if _, err := LoadLivenessConfig(); err == nil {
				t.Errorf("expected parse error for %s", key)
			}
		})
	}
}
