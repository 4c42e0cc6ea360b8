package handlerUtil

import (
	"FaceLiveness/internal/api/capture"
	"FaceLiveness/pkg/log"
	"FaceLiveness/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// DomainError is the public shape of a known service error.
type DomainError struct {
	Status  int
	Code    string
	Message string
}

type domainError struct {
	err error
	DomainError
}

var domainErrors = []domainError{
	// Liveness session domain errors
	{capture.ErrSessionNotFound, DomainError{fiber.StatusNotFound, "SESSION_NOT_FOUND", "Liveness session not found or expired"}},
	{capture.ErrSessionForbidden, DomainError{fiber.StatusForbidden, "SESSION_FORBIDDEN", "Liveness session belongs to another user"}},
	{capture.ErrSessionAlreadyAccepted, DomainError{fiber.StatusConflict, "SESSION_ALREADY_ACCEPTED", "Liveness session already accepted"}},
	{capture.ErrSessionNotAccepted, DomainError{fiber.StatusConflict, "SESSION_NOT_ACCEPTED", "Liveness check has not been passed for this session"}},

	// Capture domain errors
	{capture.ErrCaptureAlreadyExists, DomainError{fiber.StatusConflict, "CAPTURE_ALREADY_EXISTS", "A capture was already submitted for this session"}},
	{capture.ErrCaptureNotFound, DomainError{fiber.StatusNotFound, "CAPTURE_NOT_FOUND", "Capture not found"}},
	{capture.ErrInvalidFileType, DomainError{fiber.StatusBadRequest, "INVALID_FILE_TYPE", "Invalid file type. Only PNG, JPEG and WebP images are allowed."}},
	{capture.ErrFileTooLarge, DomainError{fiber.StatusBadRequest, "FILE_TOO_LARGE", "File too large. Maximum size is 5MB."}},
	{capture.ErrFailedToUploadCapture, DomainError{fiber.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload capture"}},

	// Frame evaluation errors
	{capture.ErrInvalidFrame, DomainError{fiber.StatusBadRequest, "INVALID_FRAME", "Invalid frame"}},
	{capture.ErrDetectorUnavailable, DomainError{fiber.StatusServiceUnavailable, "DETECTOR_UNAVAILABLE", "Face detection service unavailable"}},
}

// Lookup maps err onto a known domain error.
func Lookup(err error) (DomainError, bool) {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.DomainError, true
		}
	}
	return DomainError{}, false
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if known, ok := Lookup(err); ok {
		fields["code"] = known.Code
		if known.Status >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error(known.Message)
		} else {
			h.logger.WithFields(fields).Warn(known.Message)
		}
		return c.Status(known.Status).JSON(ErrorResponse{
			Error: known.Message,
			Code:  known.Code,
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: respErr.Error()})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(fields).Warn("Operation failed with fiber error")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
