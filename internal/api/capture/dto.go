package capture

import (
	"FaceLiveness/pkg/liveness"
	"time"
)

type CreateSessionResponse struct {
	ID        string          `json:"id"`
	Phase     liveness.Phase  `json:"phase"`
	ExpiresAt time.Time       `json:"expires_at"`
	Config    liveness.Config `json:"config"`
}

type SessionResponse struct {
	ID             string         `json:"id"`
	Phase          liveness.Phase `json:"phase"`
	RequiredFrames int            `json:"required_frames"`
	Captured       bool           `json:"captured"`
	CreatedAt      time.Time      `json:"created_at"`
	AcceptedAt     *time.Time     `json:"accepted_at,omitempty"`
}

// FrameMessage is one text message on the liveness socket. A nil Face means the
// client-side detector found no face in the frame.
type FrameMessage struct {
	Timestamp float64               `json:"timestamp" validate:"gte=0"`
	Face      *liveness.Observation `json:"face" validate:"omitempty"`
}

type FrameResponse struct {
	liveness.Decision
	Timestamp float64 `json:"timestamp"`
	Skipped   bool    `json:"skipped,omitempty"`
}

type CaptureResponse struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ImageURL   string    `json:"image_url"`
	AcceptedAt time.Time `json:"accepted_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type ErrorMessage struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
