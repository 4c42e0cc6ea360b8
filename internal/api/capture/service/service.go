package captureService

import (
	"FaceLiveness/internal/api/capture"
	captureRepository "FaceLiveness/internal/api/capture/repository"
	"FaceLiveness/pkg/liveness"
	"FaceLiveness/pkg/redis"
	"FaceLiveness/pkg/s3"
	"FaceLiveness/pkg/utils"
	websocketPkg "FaceLiveness/pkg/websocket"
	"context"
	"github.com/sirupsen/logrus"
	"mime/multipart"
	"time"
)

type ICaptureService interface {
	Config() liveness.Config
	CreateSession(ctx context.Context, userID string) (capture.CreateSessionResponse, error)
	GetSession(ctx context.Context, userID string, sessionID string) (capture.SessionResponse, error)
	OpenStream(ctx context.Context, sessionID string) (IStream, error)
	SubmitCapture(ctx context.Context, userID string, sessionID string, file *multipart.FileHeader) (capture.CaptureResponse, error)
	GetCapture(ctx context.Context, userID string, sessionID string) (capture.CaptureResponse, error)
	ListCaptures(ctx context.Context, userID string, limit int) ([]capture.CaptureResponse, error)
}

// IStream evaluates the frames of one websocket connection. It is not safe for
// concurrent use; the socket read loop is its only caller.
type IStream interface {
	SessionID() string
	EvaluateFrame(ctx context.Context, msg capture.FrameMessage) (capture.FrameResponse, error)
	EvaluateImage(ctx context.Context, timestamp float64, frame []byte) (capture.FrameResponse, error)
	Done() bool
	// Err reports a failure that ends the stream, such as an acceptance
	// that could not be stored.
	Err() error
}

type Options struct {
	Config     liveness.Config
	SessionTTL time.Duration
	CaptureTTL time.Duration
}

type captureService struct {
	log        *logrus.Logger
	repo       captureRepository.Repository
	redis      redis.IRedis
	s3Client   s3.ItfS3
	faceClient websocketPkg.IWebsocket
	utils      utils.IUtils
	cfg        liveness.Config
	sessionTTL time.Duration
	captureTTL time.Duration
	now        func() time.Time
}

func NewCaptureService(
	log *logrus.Logger,
	repo captureRepository.Repository,
	redisServer redis.IRedis,
	s3Client s3.ItfS3,
	faceClient websocketPkg.IWebsocket,
	utils utils.IUtils,
	opts Options,
) ICaptureService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 10 * time.Minute
	}
	if opts.CaptureTTL <= 0 {
		opts.CaptureTTL = time.Minute
	}

	return &captureService{
		log:        log,
		repo:       repo,
		redis:      redisServer,
		s3Client:   s3Client,
		faceClient: faceClient,
		utils:      utils,
		cfg:        opts.Config,
		sessionTTL: opts.SessionTTL,
		captureTTL: opts.CaptureTTL,
		now:        time.Now,
	}
}

func (s *captureService) Config() liveness.Config {
	return s.cfg
}
