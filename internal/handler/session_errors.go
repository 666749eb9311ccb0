package handler

import (
	"errors"
	"net/http"

	"github.com/stemsi/mock-exam/internal/response"
	"github.com/stemsi/mock-exam/internal/service"
	"github.com/stemsi/mock-exam/internal/session"
)

// sessionError maps a service error to an HTTP status and error code.
func sessionError(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, session.ErrNotActive):
		return http.StatusConflict, response.ErrSessionNotActive
	case errors.Is(err, session.ErrAlreadyStarted):
		return http.StatusConflict, response.ErrSessionStarted
	case errors.Is(err, service.ErrSessionStarting):
		return http.StatusConflict, response.ErrSessionStarting
	case errors.Is(err, service.ErrStartAborted):
		return http.StatusConflict, response.ErrSessionStartAborted
	case errors.Is(err, session.ErrNotSubmitted):
		return http.StatusConflict, response.ErrResultNotReady
	case errors.Is(err, session.ErrOptionOutOfRange):
		return http.StatusBadRequest, response.ErrInvalidOption
	case errors.Is(err, session.ErrPositionOutOfRange):
		return http.StatusBadRequest, response.ErrInvalidPos
	case errors.Is(err, session.ErrNoQuestions):
		return http.StatusUnprocessableEntity, response.ErrNoQuestions
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
