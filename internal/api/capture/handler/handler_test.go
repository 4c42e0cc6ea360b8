package captureHandler

import (
	"FaceLiveness/internal/api/capture"
	captureService "FaceLiveness/internal/api/capture/service"
	"FaceLiveness/internal/entity"
	"FaceLiveness/pkg/liveness"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeMiddleware struct{}

func (fakeMiddleware) NewRateLimiter(ctx *fiber.Ctx) error { return ctx.Next() }

func (fakeMiddleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if ctx.Get("Authorization") == "" {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}
	ctx.Locals("user", entity.UserLoginData{ID: "user-1"})
	return ctx.Next()
}

func (fakeMiddleware) NewRequestIDMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error { return ctx.Next() }
}

func (fakeMiddleware) NewLoggingMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error { return ctx.Next() }
}

func (fakeMiddleware) GetRequestID(*fiber.Ctx) string { return "req-test" }

type fakeStream struct {
	err       error
	decisions []liveness.Decision
	frames    []capture.FrameMessage
	images    [][]byte
}

func (f *fakeStream) SessionID() string { return "sess-1" }

func (f *fakeStream) next(timestamp float64) capture.FrameResponse {
	d := f.decisions[0]
	if len(f.decisions) > 1 {
		f.decisions = f.decisions[1:]
	}
	return capture.FrameResponse{Decision: d, Timestamp: timestamp}
}

func (f *fakeStream) EvaluateFrame(_ context.Context, msg capture.FrameMessage) (capture.FrameResponse, error) {
	f.frames = append(f.frames, msg)
	if f.err != nil {
		return capture.FrameResponse{}, f.err
	}
	return f.next(msg.Timestamp), nil
}

func (f *fakeStream) EvaluateImage(_ context.Context, timestamp float64, frame []byte) (capture.FrameResponse, error) {
	f.images = append(f.images, frame)
	return f.next(timestamp), nil
}

func (f *fakeStream) Done() bool { return false }

func (f *fakeStream) Err() error { return f.err }

type fakeService struct {
	stream   *fakeStream
	userID   string
	err      error
	captured *multipart.FileHeader
}

func (f *fakeService) Config() liveness.Config {
	return liveness.Config{MinConfidence: 0.9, RequiredConsecutiveFrames: 3, FrontalRatioThreshold: 0.7}
}

func (f *fakeService) CreateSession(_ context.Context, userID string) (capture.CreateSessionResponse, error) {
	f.userID = userID
	return capture.CreateSessionResponse{ID: "sess-1", Config: f.Config()}, f.err
}

func (f *fakeService) GetSession(_ context.Context, userID string, sessionID string) (capture.SessionResponse, error) {
	f.userID = userID
	return capture.SessionResponse{ID: sessionID}, f.err
}

func (f *fakeService) OpenStream(_ context.Context, sessionID string) (captureService.IStream, error) {
	if sessionID == "done" {
		return nil, capture.ErrSessionAlreadyAccepted
	}
	return f.stream, nil
}

func (f *fakeService) SubmitCapture(_ context.Context, userID string, sessionID string, file *multipart.FileHeader) (capture.CaptureResponse, error) {
	f.userID = userID
	f.captured = file
	return capture.CaptureResponse{ID: "cap-1", SessionID: sessionID}, f.err
}

func (f *fakeService) GetCapture(_ context.Context, userID string, sessionID string) (capture.CaptureResponse, error) {
	f.userID = userID
	return capture.CaptureResponse{ID: "cap-1", SessionID: sessionID}, f.err
}

func (f *fakeService) ListCaptures(_ context.Context, userID string, _ int) ([]capture.CaptureResponse, error) {
	f.userID = userID
	return []capture.CaptureResponse{{ID: "cap-1"}}, f.err
}

func newTestApp(svc *fakeService) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	New(logger, validator.New(), fakeMiddleware{}, svc).Start(app.Group("/api/v1"))
	return app
}

func TestHTTPRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		auth       bool
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "config is public", method: "GET", path: "/api/v1/liveness/config", wantStatus: fiber.StatusOK},
		{name: "create session requires auth", method: "POST", path: "/api/v1/liveness/sessions", wantStatus: fiber.StatusUnauthorized},
		{name: "create session", method: "POST", path: "/api/v1/liveness/sessions", auth: true, wantStatus: fiber.StatusCreated},
		{name: "get session", method: "GET", path: "/api/v1/liveness/sessions/sess-1", auth: true, wantStatus: fiber.StatusOK},
		{name: "get expired session", method: "GET", path: "/api/v1/liveness/sessions/sess-1", auth: true, svcErr: capture.ErrSessionNotFound, wantStatus: fiber.StatusNotFound, wantCode: "SESSION_NOT_FOUND"},
		{name: "get capture of another user", method: "GET", path: "/api/v1/liveness/sessions/sess-1/capture", auth: true, svcErr: capture.ErrSessionForbidden, wantStatus: fiber.StatusForbidden, wantCode: "SESSION_FORBIDDEN"},
		{name: "submit without file", method: "POST", path: "/api/v1/liveness/sessions/sess-1/capture", auth: true, wantStatus: fiber.StatusBadRequest, wantCode: "INVALID_FILE_TYPE"},
		{name: "list captures", method: "GET", path: "/api/v1/liveness/captures?limit=5", auth: true, wantStatus: fiber.StatusOK},
		{name: "socket requires upgrade", method: "GET", path: "/api/v1/liveness/ws/sess-1", wantStatus: fiber.StatusUpgradeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.svcErr}
			app := newTestApp(svc)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer token")
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			if tt.wantCode != "" {
				var body struct {
					Code string `json:"code"`
				}
				if err := jsoniter.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
			}

			if tt.auth && tt.wantStatus < 300 && svc.userID != "user-1" {
				t.Errorf("expected service call for user-1, got %q", svc.userID)
			}
		})
	}
}

func TestSubmitCaptureForwardsFile(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "capture.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	writer.Close()

	req := httptest.NewRequest("POST", "/api/v1/liveness/sessions/sess-1/capture", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if svc.captured == nil || svc.captured.Filename != "capture.jpg" {
		t.Errorf("expected uploaded file to reach the service, got %+v", svc.captured)
	}
}

func TestDecodeBinaryFrame(t *testing.T) {
	encode := func(ts float64, payload ...byte) []byte {
		buf := make([]byte, timestampPrefixLen, timestampPrefixLen+len(payload))
		binary.BigEndian.PutUint64(buf, math.Float64bits(ts))
		return append(buf, payload...)
	}

	tests := []struct {
		name    string
		message []byte
		wantTS  float64
		wantLen int
		wantErr bool
	}{
		{name: "valid", message: encode(1234.5, 0xff, 0xd8), wantTS: 1234.5, wantLen: 2},
		{name: "prefix only", message: encode(1), wantErr: true},
		{name: "too short", message: []byte{1, 2, 3}, wantErr: true},
		{name: "negative timestamp", message: encode(-1, 0xff), wantErr: true},
		{name: "NaN timestamp", message: encode(math.NaN(), 0xff), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, frame, err := decodeBinaryFrame(tt.message)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeBinaryFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if ts != tt.wantTS || len(frame) != tt.wantLen {
				t.Errorf("got (%v, %d bytes), want (%v, %d bytes)", ts, len(frame), tt.wantTS, tt.wantLen)
			}
		})
	}
}

func serve(t *testing.T, app *fiber.App) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return ln.Addr().String()
}

func dial(t *testing.T, addr, sessionID string) *gorilla.Conn {
	t.Helper()

	conn, resp, err := gorilla.DefaultDialer.Dial("ws://"+addr+"/api/v1/liveness/ws/"+sessionID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("unexpected handshake status %d", resp.StatusCode)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestLivenessWebSocket(t *testing.T) {
	stream := &fakeStream{decisions: []liveness.Decision{
		{Status: liveness.StatusValidating, Progress: 50},
		{Status: liveness.StatusAccepted, Progress: 100},
	}}
	addr := serve(t, newTestApp(&fakeService{stream: stream}))
	conn := dial(t, addr, "sess-1")

	if err := conn.WriteMessage(gorilla.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var errMsg capture.ErrorMessage
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error message: %v", err)
	}
	if errMsg.Code != "INVALID_FRAME" {
		t.Errorf("expected INVALID_FRAME, got %+v", errMsg)
	}

	frame := capture.FrameMessage{Timestamp: 1}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	var res capture.FrameResponse
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read: %v", err)
	}
	if res.Status != liveness.StatusValidating || res.Progress != 50 || res.Timestamp != 1 {
		t.Errorf("unexpected first response %+v", res)
	}

	binaryFrame := make([]byte, timestampPrefixLen, timestampPrefixLen+2)
	binary.BigEndian.PutUint64(binaryFrame, math.Float64bits(2))
	binaryFrame = append(binaryFrame, 0xff, 0xd8)
	if err := conn.WriteMessage(gorilla.BinaryMessage, binaryFrame); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read: %v", err)
	}
	if res.Status != liveness.StatusAccepted || res.Timestamp != 2 {
		t.Errorf("unexpected second response %+v", res)
	}

	if _, _, err := conn.ReadMessage(); !gorilla.IsCloseError(err, gorilla.CloseNormalClosure) {
		t.Errorf("expected normal close after acceptance, got %v", err)
	}

	if len(stream.frames) != 1 || len(stream.images) != 1 || len(stream.images[0]) != 2 {
		t.Errorf("unexpected stream calls: %d frames, %d images", len(stream.frames), len(stream.images))
	}
}

func TestLivenessWebSocketRejectsAcceptedSession(t *testing.T) {
	addr := serve(t, newTestApp(&fakeService{}))
	conn := dial(t, addr, "done")

	var errMsg capture.ErrorMessage
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if errMsg.Code != "SESSION_ALREADY_ACCEPTED" {
		t.Errorf("expected SESSION_ALREADY_ACCEPTED, got %+v", errMsg)
	}

	if _, _, err := conn.ReadMessage(); !gorilla.IsCloseError(err, gorilla.ClosePolicyViolation) {
		t.Errorf("expected policy violation close, got %v", err)
	}
}

func TestLivenessWebSocketClosesWhenStreamFails(t *testing.T) {
	stream := &fakeStream{err: capture.ErrSessionNotFound}
	addr := serve(t, newTestApp(&fakeService{stream: stream}))
	conn := dial(t, addr, "sess-1")

	if err := conn.WriteJSON(capture.FrameMessage{Timestamp: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var errMsg capture.ErrorMessage
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error message: %v", err)
	}
	if errMsg.Code != "SESSION_NOT_FOUND" {
		t.Errorf("expected SESSION_NOT_FOUND, got %+v", errMsg)
	}

	if _, _, err := conn.ReadMessage(); !gorilla.IsCloseError(err, gorilla.CloseInternalServerErr) {
		t.Errorf("expected internal error close, got %v", err)
	}
}
