package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/signature"
	"github.com/goliatone/go-formplugin/pkg/widget"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Alerts []string `json:"alerts,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("server: encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: message, Code: code})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps session errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, plugin.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, plugin.ErrNotRendered):
		return http.StatusConflict, "NOT_RENDERED"
	case errors.Is(err, plugin.ErrClosed):
		return http.StatusConflict, "SESSION_CLOSED"
	case errors.Is(err, plugin.ErrResponseHidden):
		return http.StatusConflict, "RESPONSE_HIDDEN"
	case errors.Is(err, plugin.ErrBackActivityHidden):
		return http.StatusConflict, "BACK_ACTIVITY_HIDDEN"
	case errors.Is(err, plugin.ErrUnknownBackScreen):
		return http.StatusUnprocessableEntity, "UNKNOWN_BACK_SCREEN"
	case errors.Is(err, plugin.ErrNotDelivered):
		return http.StatusBadGateway, "NOT_DELIVERED"
	case errors.Is(err, plugin.ErrInvalidResponse):
		return http.StatusUnprocessableEntity, "INVALID_RESPONSE"
	case errors.Is(err, widget.ErrNotWritable):
		return http.StatusConflict, "NOT_WRITABLE"
	case errors.Is(err, widget.ErrSignatureConsumed):
		return http.StatusConflict, "SIGNATURE_CONSUMED"
	case errors.Is(err, widget.ErrOptionNotAllowed):
		return http.StatusUnprocessableEntity, "OPTION_NOT_ALLOWED"
	case errors.Is(err, widget.ErrWrongKind):
		return http.StatusUnprocessableEntity, "WRONG_KIND"
	case errors.Is(err, signature.ErrInvalidDataURL):
		return http.StatusBadRequest, "INVALID_SIGNATURE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (s *Server) writeSessionError(w http.ResponseWriter, sess *Session, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("server: session operation failed", zap.String("session", sess.ID), zap.Error(err))
	}
	body := errorBody{Error: err.Error(), Code: code}
	if errors.Is(err, plugin.ErrInvalidResponse) {
		body.Alerts = sess.Plugin.Alerts()
	}
	s.writeJSON(w, status, body)
}
