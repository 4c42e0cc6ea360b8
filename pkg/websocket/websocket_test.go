package websocketPkg

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newFaceService answers every binary frame with reply(frame).
func newFaceService(t *testing.T, reply func(frame []byte) any) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteJSON(reply(frame)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProcessFaceFrame(t *testing.T) {
	srv := newFaceService(t, func(frame []byte) any {
		return map[string]any{
			"detected":     len(frame) > 0,
			"score":        0.97,
			"bbox":         []float64{270, 190, 100, 100},
			"keypoints":    [][2]float64{{0.25, 0.4}, {0.75, 0.4}, {0.5, 0.6}},
			"frame_width":  640,
			"frame_height": 480,
		}
	})

	client := newClient(newTestLogger(), wsURL(srv))
	defer client.CloseConnections()

	result, err := client.ProcessFaceFrame([]byte{0xff, 0xd8, 0xff})
	if err != nil {
		t.Fatalf("ProcessFaceFrame: %v", err)
	}
	if !client.IsConnected() {
		t.Error("expected client to stay connected")
	}

	obs := result.Observation()
	if obs == nil {
		t.Fatal("expected an observation")
	}
	if obs.Confidence != 0.97 || obs.FrameWidth != 640 || len(obs.Keypoints) != 3 {
		t.Errorf("unexpected observation %+v", obs)
	}
	if obs.BoundingBox.Width != 100 || obs.BoundingBox.OriginX != 270 {
		t.Errorf("unexpected bounding box %+v", obs.BoundingBox)
	}
}

func TestProcessFaceFrameNoFace(t *testing.T) {
	srv := newFaceService(t, func([]byte) any {
		return map[string]any{"detected": false}
	})

	client := newClient(newTestLogger(), wsURL(srv))
	defer client.CloseConnections()

	result, err := client.ProcessFaceFrame([]byte{1})
	if err != nil {
		t.Fatalf("ProcessFaceFrame: %v", err)
	}
	if result.Observation() != nil {
		t.Error("expected nil observation when no face was detected")
	}
}

func TestProcessFaceFrameServiceError(t *testing.T) {
	srv := newFaceService(t, func([]byte) any {
		return map[string]any{"error": "model not loaded"}
	})

	client := newClient(newTestLogger(), wsURL(srv))
	defer client.CloseConnections()

	_, err := client.ProcessFaceFrame([]byte{1})
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestProcessFaceFrameUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	client := newClient(newTestLogger(), url)

	if _, err := client.ProcessFaceFrame([]byte{1}); err == nil {
		t.Fatal("expected error for unreachable service")
	}
	if client.IsConnected() {
		t.Error("client should not report a connection")
	}
}

func TestProcessFaceFrameConcurrentCallers(t *testing.T) {
	srv := newFaceService(t, func(frame []byte) any {
		return map[string]any{"detected": true, "score": float64(len(frame)) / 100}
	})

	client := newClient(newTestLogger(), wsURL(srv))
	defer client.CloseConnections()

	var wg sync.WaitGroup
	errs := make(chan string, 20)
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			result, err := client.ProcessFaceFrame(make([]byte, size))
			if err != nil {
				errs <- err.Error()
				return
			}
			if result.Score != float64(size)/100 {
				errs <- "mismatched reply"
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}
