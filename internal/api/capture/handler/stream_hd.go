package captureHandler

import (
	"FaceLiveness/internal/api/capture"
	captureService "FaceLiveness/internal/api/capture/service"
	contextPkg "FaceLiveness/pkg/context"
	"FaceLiveness/pkg/handlerUtil"
	"FaceLiveness/pkg/log"
	"encoding/binary"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
	"math"
	"time"
)

// A binary frame is an 8 byte big-endian float64 timestamp followed by the encoded image.
const timestampPrefixLen = 8

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (h *CaptureHandler) handleLivenessWebSocket(c *websocket.Conn) {
	ctx := contextPkg.FromSocket(c)
	requestID := contextPkg.GetRequestID(ctx)
	sessionID := c.Params("id")

	fields := log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}

	st, err := h.captureService.OpenStream(ctx, sessionID)
	if err != nil {
		h.log.WithFields(fields).WithField("error", err.Error()).Warn("Rejected liveness stream")
		h.writeError(c, err)
		h.closeSocket(c, websocket.ClosePolicyViolation, err.Error())
		return
	}

	h.log.WithFields(fields).Info("Liveness WebSocket client connected")
	defer h.log.WithFields(fields).Info("Liveness WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
			h.log.WithFields(fields).Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(fields).Errorf("Liveness WebSocket error: %v", err)
			}
			break
		}

		res, err := h.processMessage(ctx, st, messageType, message)
		if err != nil {
			h.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to evaluate liveness frame")
			if !h.writeError(c, err) {
				break
			}
			if st.Err() != nil {
				h.closeSocket(c, websocket.CloseInternalServerErr, "session not stored")
				break
			}
			continue
		}

		if !h.writeJSON(c, res) {
			break
		}

		if res.Terminal() {
			h.log.WithFields(fields).Info("Liveness accepted, closing stream")
			h.closeSocket(c, websocket.CloseNormalClosure, "accepted")
			break
		}
	}
}

func (h *CaptureHandler) processMessage(ctx context.Context, st captureService.IStream, messageType int, message []byte) (capture.FrameResponse, error) {
	switch messageType {
	case websocket.TextMessage:
		var msg capture.FrameMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			return capture.FrameResponse{}, capture.ErrInvalidFrame
		}
		if err := h.validator.Struct(msg); err != nil {
			return capture.FrameResponse{}, capture.ErrInvalidFrame
		}
		return st.EvaluateFrame(ctx, msg)

	case websocket.BinaryMessage:
		timestamp, frame, err := decodeBinaryFrame(message)
		if err != nil {
			return capture.FrameResponse{}, err
		}
		return st.EvaluateImage(ctx, timestamp, frame)

	default:
		return capture.FrameResponse{}, capture.ErrInvalidFrame
	}
}

func decodeBinaryFrame(message []byte) (float64, []byte, error) {
	if len(message) <= timestampPrefixLen {
		return 0, nil, capture.ErrInvalidFrame
	}

	timestamp := math.Float64frombits(binary.BigEndian.Uint64(message[:timestampPrefixLen]))
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 {
		return 0, nil, capture.ErrInvalidFrame
	}

	return timestamp, message[timestampPrefixLen:], nil
}

func (h *CaptureHandler) writeError(c *websocket.Conn, err error) bool {
	msg := capture.ErrorMessage{Error: "An unexpected error occurred", Code: "INTERNAL_ERROR"}
	if known, ok := handlerUtil.Lookup(err); ok {
		msg = capture.ErrorMessage{Error: known.Message, Code: known.Code}
	}

	return h.writeJSON(c, msg)
}

func (h *CaptureHandler) writeJSON(c *websocket.Conn, v interface{}) bool {
	if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		h.log.Errorf("Error setting write deadline: %v", err)
		return false
	}

	if err := c.WriteJSON(v); err != nil {
		h.log.Errorf("Error writing JSON response: %v", err)
		return false
	}

	if err := c.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Errorf("Error resetting write deadline: %v", err)
		return false
	}

	return true
}

func (h *CaptureHandler) closeSocket(c *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second)); err != nil {
		h.log.Debugf("Error sending close frame: %v", err)
	}
}
