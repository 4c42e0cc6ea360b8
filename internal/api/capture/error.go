package capture

import (
	"FaceLiveness/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError    = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest             = response.NewError(http.StatusBadRequest, "bad request")
	ErrSessionNotFound        = response.NewError(http.StatusNotFound, "liveness session not found or expired")
	ErrSessionForbidden       = response.NewError(http.StatusForbidden, "liveness session belongs to another user")
	ErrSessionAlreadyAccepted = response.NewError(http.StatusConflict, "liveness session already accepted")
	ErrSessionNotAccepted     = response.NewError(http.StatusConflict, "liveness session has not been accepted")
	ErrCaptureAlreadyExists   = response.NewError(http.StatusConflict, "capture already submitted for session")
	ErrCaptureNotFound        = response.NewError(http.StatusNotFound, "capture not found")
	ErrInvalidFileType        = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrFileTooLarge           = response.NewError(http.StatusBadRequest, "file too large")
	ErrFailedToUploadCapture  = response.NewError(http.StatusInternalServerError, "failed to upload capture")
	ErrDetectorUnavailable    = response.NewError(http.StatusServiceUnavailable, "face detection service unavailable")
	ErrInvalidFrame           = response.NewError(http.StatusBadRequest, "invalid frame")
)
