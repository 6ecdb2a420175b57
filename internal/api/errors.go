package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/tcbf/internal/beamformer"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// statusFor maps an engine error to an HTTP status and error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, beamformer.ErrSize):
		return http.StatusBadRequest, "size_error"
	case errors.Is(err, beamformer.ErrNotReady):
		return http.StatusConflict, "not_ready_error"
	case errors.Is(err, beamformer.ErrConfig):
		return http.StatusInternalServerError, "config_error"
	default:
		return http.StatusInternalServerError, "device_error"
	}
}
