package entity

import (
	"time"

	"FaceLiveness/pkg/liveness"
)

type LivenessSession struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Phase          liveness.Phase `json:"phase"`
	RequiredFrames int            `json:"required_frames"`
	Captured       bool           `json:"captured"`
	CreatedAt      time.Time      `json:"created_at"`
	AcceptedAt     *time.Time     `json:"accepted_at,omitempty"`
}

func (s LivenessSession) Accepted() bool {
	return s.Phase == liveness.PhaseSucceeded
}

type LivenessCapture struct {
	ID             string    `db:"id"`
	SessionID      string    `db:"session_id"`
	UserID         string    `db:"user_id"`
	ImageURL       string    `db:"image_url"`
	ContentType    string    `db:"content_type"`
	SizeBytes      int64     `db:"size_bytes"`
	RequiredFrames int       `db:"required_frames"`
	AcceptedAt     time.Time `db:"accepted_at"`
	CreatedAt      time.Time `db:"created_at"`
}
