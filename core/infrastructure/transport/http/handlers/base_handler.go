package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/dto"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	logger logging.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(tag string) *BaseHandler {
	return &BaseHandler{
		logger: logging.New(tag),
	}
}

// WriteJSON writes a JSON response. The body is encoded before the status
// is sent so an encoding failure still produces a well-formed reply.
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Errorf("Failed to encode JSON response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debugf("Failed to write response: %v", err)
	}
}

// WriteUnauthorized writes the 401 produced for a missing or invalid token
func (h *BaseHandler) WriteUnauthorized(w http.ResponseWriter, err error) {
	h.logger.Debugf("Rejected request: %v", err)
	h.WriteJSON(w, http.StatusUnauthorized, dto.UnauthorizedResponse())
}

// WriteSuccess writes a 200 response
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, data any) {
	h.WriteJSON(w, http.StatusOK, data)
}
