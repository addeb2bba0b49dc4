package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"svcboard/internal/controller"
	"svcboard/internal/rowstate"
	"svcboard/internal/svcerr"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   *svcerr.Error `json:"error,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func sendSuccess(w http.ResponseWriter, data any) {
	sendJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func sendMessage(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, Response{Success: status < 400, Message: message})
}

// sendError maps err to a status code and includes the classified error.
func sendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rowstate.ErrBusy), errors.Is(err, controller.ErrBusy):
		sendMessage(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, controller.ErrClosed):
		sendMessage(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	e := svcerr.Classify(err, "")
	sendJSON(w, statusFor(e.Kind), Response{Message: e.Error(), Error: e})
}

func statusFor(kind svcerr.Kind) int {
	switch kind {
	case svcerr.PermissionDenied:
		return http.StatusForbidden
	case svcerr.NotFound:
		return http.StatusNotFound
	case svcerr.Timeout:
		return http.StatusGatewayTimeout
	case svcerr.InvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
