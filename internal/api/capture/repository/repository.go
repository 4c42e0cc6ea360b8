package captureRepository

import (
	"FaceLiveness/internal/entity"
	"context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Captures: &captureRepository{q: db, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Captures interface {
		CreateCapture(ctx context.Context, capture entity.LivenessCapture) error
		GetBySessionID(ctx context.Context, sessionID string) (entity.LivenessCapture, error)
		ListByUserID(ctx context.Context, userID string, limit int) ([]entity.LivenessCapture, error)
	}

	Commit   func() error
	Rollback func() error
}

type captureRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
