package captureRepository

import (
	"FaceLiveness/internal/api/capture"
	"FaceLiveness/internal/entity"
	contextPkg "FaceLiveness/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

func (r *captureRepository) CreateCapture(c context.Context, record entity.LivenessCapture) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryCreateCapture, record)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateCapture")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation &&
			pqErr.Constraint == "liveness_captures_session_id_key" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": record.SessionID,
			}).Warn("Capture already exists for session")
			return capture.ErrCaptureAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to insert capture")
		return err
	}

	return nil
}

func (r *captureRepository) GetBySessionID(c context.Context, sessionID string) (entity.LivenessCapture, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryGetBySessionID, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for GetBySessionID")
		return entity.LivenessCapture{}, err
	}
	query = r.q.Rebind(query)

	var record entity.LivenessCapture
	if err := sqlx.GetContext(c, r.q, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.LivenessCapture{}, capture.ErrCaptureNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get capture by session ID")
		return entity.LivenessCapture{}, err
	}

	return record, nil
}

func (r *captureRepository) ListByUserID(c context.Context, userID string, limit int) ([]entity.LivenessCapture, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryListByUserID, map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for ListByUserID")
		return nil, err
	}
	query = r.q.Rebind(query)

	records := []entity.LivenessCapture{}
	if err := sqlx.SelectContext(c, r.q, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to list captures by user ID")
		return nil, err
	}

	return records, nil
}
