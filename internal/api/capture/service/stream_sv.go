package captureService

import (
	"FaceLiveness/internal/api/capture"
	"FaceLiveness/internal/entity"
	contextPkg "FaceLiveness/pkg/context"
	"FaceLiveness/pkg/liveness"
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
)

type stream struct {
	svc       *captureService
	session   entity.LivenessSession
	validator *liveness.Validator
	gate      liveness.FrameGate
	last      liveness.Decision
	// err is set once an accepted decision could not be persisted.
	err error
}

func (s *captureService) OpenStream(ctx context.Context, sessionID string) (IStream, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Accepted() {
		return nil, capture.ErrSessionAlreadyAccepted
	}

	validator, err := liveness.New(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &stream{
		svc:       s,
		session:   session,
		validator: validator,
		last:      liveness.Decision{Status: liveness.StatusNoFace},
	}, nil
}

func (st *stream) SessionID() string {
	return st.session.ID
}

func (st *stream) Done() bool {
	return st.err == nil && st.validator.Done()
}

func (st *stream) Err() error {
	return st.err
}

func (st *stream) EvaluateFrame(ctx context.Context, msg capture.FrameMessage) (capture.FrameResponse, error) {
	return st.evaluate(ctx, msg.Timestamp, func() (*liveness.Observation, error) {
		return msg.Face, nil
	})
}

// EvaluateImage runs the raw frame through the face AI service before evaluating it.
// The detector is only called for frames that pass the timestamp gate.
func (st *stream) EvaluateImage(ctx context.Context, timestamp float64, frame []byte) (capture.FrameResponse, error) {
	return st.evaluate(ctx, timestamp, func() (*liveness.Observation, error) {
		if st.svc.faceClient == nil {
			return nil, capture.ErrDetectorUnavailable
		}

		result, err := st.svc.faceClient.ProcessFaceFrame(frame)
		if err != nil {
			st.svc.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": st.session.ID,
				"error":      err.Error(),
			}).Error("Face detection failed")
			return nil, fmt.Errorf("%w: %w", capture.ErrDetectorUnavailable, err)
		}

		return result.Observation(), nil
	})
}

func (st *stream) evaluate(ctx context.Context, timestamp float64, observe func() (*liveness.Observation, error)) (capture.FrameResponse, error) {
	if st.err != nil {
		return capture.FrameResponse{}, st.err
	}

	gate := st.gate
	if !st.validator.Done() && !st.gate.Admit(timestamp) {
		return capture.FrameResponse{Decision: st.last, Timestamp: timestamp, Skipped: true}, nil
	}

	var obs *liveness.Observation
	if !st.validator.Done() {
		var err error
		if obs, err = observe(); err != nil {
			// the frame was never evaluated, so a retry with the same timestamp is allowed
			st.gate = gate
			return capture.FrameResponse{}, err
		}
	}

	decision := st.validator.Evaluate(obs)
	st.last = decision

	if decision.Status == liveness.StatusAccepted {
		if err := st.svc.markAccepted(ctx, &st.session); err != nil {
			st.svc.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": st.session.ID,
				"error":      err.Error(),
			}).Error("Failed to persist accepted liveness session")
			st.err = err
			return capture.FrameResponse{}, err
		}
	}

	return capture.FrameResponse{Decision: decision, Timestamp: timestamp}, nil
}
