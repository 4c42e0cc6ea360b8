package redis

import (
	"FaceLiveness/internal/entity"
	"context"
	"errors"
	"fmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("key not found")

const (
	sessionKeyPrefix = "liveness:session:"
	captureKeyPrefix = "liveness:capture-lock:"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IRedis interface {
	SetSession(ctx context.Context, session entity.LivenessSession, expiration time.Duration) error
	GetSession(ctx context.Context, id string) (entity.LivenessSession, error)
	UpdateSession(ctx context.Context, session entity.LivenessSession) error
	ClaimCapture(ctx context.Context, sessionID string, expiration time.Duration) (bool, error)
	ReleaseCapture(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) SetSession(ctx context.Context, session entity.LivenessSession, expiration time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	logrus.Debug(fmt.Sprintf("Setting session %s with expiration %v", session.ID, expiration))
	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting session %s: %v", session.ID, err))
		return err
	}

	return nil
}

func (r *redisClient) GetSession(ctx context.Context, id string) (entity.LivenessSession, error) {
	logrus.Debug(fmt.Sprintf("Getting session %s", id))
	val, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Session %s not found", id))
		return entity.LivenessSession{}, ErrNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting session %s: %v", id, err))
		return entity.LivenessSession{}, err
	}

	var session entity.LivenessSession
	if err := json.Unmarshal(val, &session); err != nil {
		return entity.LivenessSession{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return session, nil
}

// UpdateSession overwrites an existing session and keeps its remaining TTL.
func (r *redisClient) UpdateSession(ctx context.Context, session entity.LivenessSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	ok, err := r.client.SetXX(ctx, sessionKeyPrefix+session.ID, payload, redis.KeepTTL).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error updating session %s: %v", session.ID, err))
		return err
	}
	if !ok {
		logrus.Debug(fmt.Sprintf("Session %s expired before update", session.ID))
		return ErrNotFound
	}

	logrus.Debug(fmt.Sprintf("Successfully updated session %s", session.ID))
	return nil
}

// ClaimCapture returns false when another request already holds the capture slot.
func (r *redisClient) ClaimCapture(ctx context.Context, sessionID string, expiration time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, captureKeyPrefix+sessionID, time.Now().Unix(), expiration).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error claiming capture for session %s: %v", sessionID, err))
		return false, err
	}
	return ok, nil
}

func (r *redisClient) ReleaseCapture(ctx context.Context, sessionID string) error {
	result, err := r.client.Del(ctx, captureKeyPrefix+sessionID).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error releasing capture for session %s: %v", sessionID, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Capture lock for session %s not found for deletion", sessionID))
	}

	return nil
}
