package handlers_test

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperterse/querygate/core/infrastructure/transport/http/handlers"
)

func TestWriteJSON(t *testing.T) {
	h := handlers.NewBaseHandler("test")

	t.Run("encodes body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.WriteSuccess(rec, map[string]any{"ok": true})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
	})

	t.Run("unencodable body is a server error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.WriteSuccess(rec, map[string]any{"x": math.Inf(1)})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotEqual(t, "application/json", rec.Header().Get("Content-Type"))
	})
}
