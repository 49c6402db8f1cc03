package errs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrResponse is the JSON body written for every failed request.
type ErrResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	Param      string `json:"param,omitempty"`
}

// HTTPStatus maps an error kind onto an HTTP status code.
func HTTPStatus(k Kind) int {
	switch k {
	case InvalidRequest, Validation:
		return http.StatusBadRequest
	case NotExist:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case Unavailable:
		return http.StatusServiceUnavailable
	case IO:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse logs the error and writes a JSON error response. Internal
// errors are logged with their stack but only a generic message is returned.
func HTTPErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, err error) {
	if err == nil {
		lgr.Error().Stack().Msg("nil error - no response body sent")
		writeResponse(w, lgr, http.StatusInternalServerError, ErrResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "internal server error",
		})

		return
	}

	var e *Error
	if !errors.As(err, &e) {
		lgr.Error().Stack().Err(err).Msg("unknown error")
		writeResponse(w, lgr, http.StatusInternalServerError, ErrResponse{
			StatusCode: http.StatusInternalServerError,
			Message:    "internal server error",
		})

		return
	}

	kind := KindOf(err)
	status := HTTPStatus(kind)

	event := lgr.Error()
	if status < http.StatusInternalServerError {
		event = lgr.Warn()
	}

	event.Stack().Err(e.Err).
		Int("http_status", status).
		Str("kind", kind.String()).
		Str("parameter", string(ParamOf(err))).
		Strs("op_stack", OpStack(err)).
		Msg("error response")

	resp := ErrResponse{
		StatusCode: status,
		Message:    err.Error(),
		Kind:       kind.String(),
		Param:      string(ParamOf(err)),
	}

	if kind == Internal || kind == Other {
		resp.Message = "internal server error"
	}

	writeResponse(w, lgr, status, resp)
}

func writeResponse(w http.ResponseWriter, lgr zerolog.Logger, status int, resp ErrResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		lgr.Error().Err(err).Msg("encoding error response")
	}
}
