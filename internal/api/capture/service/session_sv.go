package captureService

import (
	"FaceLiveness/internal/api/capture"
	"FaceLiveness/internal/entity"
	contextPkg "FaceLiveness/pkg/context"
	"FaceLiveness/pkg/liveness"
	"FaceLiveness/pkg/redis"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
)

func (s *captureService) CreateSession(ctx context.Context, userID string) (capture.CreateSessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	now := s.now()

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session ID")
		return capture.CreateSessionResponse{}, err
	}

	session := entity.LivenessSession{
		ID:             id,
		UserID:         userID,
		Phase:          liveness.PhaseDetecting,
		RequiredFrames: s.cfg.RequiredConsecutiveFrames,
		CreatedAt:      now,
	}

	if err := s.redis.SetSession(ctx, session, s.sessionTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store liveness session")
		return capture.CreateSessionResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": id,
		"user_id":    userID,
	}).Info("Liveness session created")

	return capture.CreateSessionResponse{
		ID:        id,
		Phase:     session.Phase,
		ExpiresAt: now.Add(s.sessionTTL),
		Config:    s.cfg,
	}, nil
}

func (s *captureService) GetSession(ctx context.Context, userID string, sessionID string) (capture.SessionResponse, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return capture.SessionResponse{}, err
	}

	return capture.SessionResponse{
		ID:             session.ID,
		Phase:          session.Phase,
		RequiredFrames: session.RequiredFrames,
		Captured:       session.Captured,
		CreatedAt:      session.CreatedAt,
		AcceptedAt:     session.AcceptedAt,
	}, nil
}

func (s *captureService) loadSession(ctx context.Context, sessionID string) (entity.LivenessSession, error) {
	session, err := s.redis.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.LivenessSession{}, capture.ErrSessionNotFound
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to load liveness session")
		return entity.LivenessSession{}, err
	}

	return session, nil
}

func (s *captureService) ownedSession(ctx context.Context, userID string, sessionID string) (entity.LivenessSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return entity.LivenessSession{}, err
	}

	if session.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"user_id":    userID,
		}).Warn("Liveness session requested by another user")
		return entity.LivenessSession{}, capture.ErrSessionForbidden
	}

	return session, nil
}

func (s *captureService) markAccepted(ctx context.Context, session *entity.LivenessSession) error {
	acceptedAt := s.now()
	session.Phase = liveness.PhaseSucceeded
	session.AcceptedAt = &acceptedAt

	if err := s.redis.UpdateSession(ctx, *session); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return capture.ErrSessionNotFound
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": session.ID,
		"user_id":    session.UserID,
	}).Info("Liveness session accepted")

	return nil
}
