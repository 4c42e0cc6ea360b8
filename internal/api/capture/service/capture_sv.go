package captureService

import (
	"FaceLiveness/internal/api/capture"
	"FaceLiveness/internal/entity"
	contextPkg "FaceLiveness/pkg/context"
	"FaceLiveness/pkg/utils"
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"mime/multipart"
)

const maxListLimit = 50

func (s *captureService) SubmitCapture(ctx context.Context, userID string, sessionID string, file *multipart.FileHeader) (capture.CaptureResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return capture.CaptureResponse{}, err
	}

	if !session.Accepted() || session.AcceptedAt == nil {
		return capture.CaptureResponse{}, capture.ErrSessionNotAccepted
	}
	if session.Captured {
		return capture.CaptureResponse{}, capture.ErrCaptureAlreadyExists
	}

	if err := s.utils.ValidateImageFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Rejected capture upload")
		if errors.Is(err, utils.ErrFileTooLarge) {
			return capture.CaptureResponse{}, capture.ErrFileTooLarge
		}
		return capture.CaptureResponse{}, capture.ErrInvalidFileType
	}

	claimed, err := s.redis.ClaimCapture(ctx, sessionID, s.captureTTL)
	if err != nil {
		return capture.CaptureResponse{}, err
	}
	if !claimed {
		return capture.CaptureResponse{}, capture.ErrCaptureAlreadyExists
	}

	record, err := s.storeCapture(ctx, session, file)
	if err != nil {
		if releaseErr := s.redis.ReleaseCapture(ctx, sessionID); releaseErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      releaseErr.Error(),
			}).Error("Failed to release capture lock")
		}
		return capture.CaptureResponse{}, err
	}

	session.Captured = true
	if err := s.redis.UpdateSession(ctx, session); err != nil {
		// row is committed; the session_id unique key still blocks a second capture
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Failed to flag liveness session as captured")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"capture_id": record.ID,
	}).Info("Liveness capture stored")

	return s.captureResponse(record)
}

func (s *captureService) storeCapture(ctx context.Context, session entity.LivenessSession, file *multipart.FileHeader) (entity.LivenessCapture, error) {
	requestID := contextPkg.GetRequestID(ctx)

	location, err := s.s3Client.UploadCapture(ctx, session.ID, file)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to upload capture")
		return entity.LivenessCapture{}, capture.ErrFailedToUploadCapture
	}

	record := entity.LivenessCapture{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		UserID:         session.UserID,
		ImageURL:       location,
		ContentType:    file.Header.Get("Content-Type"),
		SizeBytes:      file.Size,
		RequiredFrames: session.RequiredFrames,
		AcceptedAt:     *session.AcceptedAt,
		CreatedAt:      s.now(),
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.LivenessCapture{}, err
	}

	if err := repo.Captures.CreateCapture(ctx, record); err != nil {
		if rbErr := repo.Rollback(); rbErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      rbErr.Error(),
			}).Error("Failed to rollback capture insert")
		}
		s.discardUpload(requestID, location)
		return entity.LivenessCapture{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit capture insert")
		s.discardUpload(requestID, location)
		return entity.LivenessCapture{}, err
	}

	return record, nil
}

// discardUpload removes an object that never got a capture row.
func (s *captureService) discardUpload(requestID string, location string) {
	if err := s.s3Client.DeleteFile(location); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"location":   location,
			"error":      err.Error(),
		}).Warn("Failed to delete orphaned capture upload")
	}
}

func (s *captureService) GetCapture(ctx context.Context, userID string, sessionID string) (capture.CaptureResponse, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return capture.CaptureResponse{}, err
	}

	record, err := repo.Captures.GetBySessionID(ctx, sessionID)
	if err != nil {
		return capture.CaptureResponse{}, err
	}

	if record.UserID != userID {
		return capture.CaptureResponse{}, capture.ErrSessionForbidden
	}

	return s.captureResponse(record)
}

func (s *captureService) ListCaptures(ctx context.Context, userID string, limit int) ([]capture.CaptureResponse, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	records, err := repo.Captures.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	res := make([]capture.CaptureResponse, 0, len(records))
	for _, record := range records {
		item, err := s.captureResponse(record)
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}

	return res, nil
}

func (s *captureService) captureResponse(record entity.LivenessCapture) (capture.CaptureResponse, error) {
	url, err := s.s3Client.PresignUrl(record.ImageURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"capture_id": record.ID,
			"error":      err.Error(),
		}).Error("Failed to presign capture URL")
		return capture.CaptureResponse{}, err
	}

	return capture.CaptureResponse{
		ID:         record.ID,
		SessionID:  record.SessionID,
		ImageURL:   url,
		AcceptedAt: record.AcceptedAt,
		CreatedAt:  record.CreatedAt,
	}, nil
}
