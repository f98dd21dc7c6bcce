package http

import (
	"io"
	"net/http"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/dto"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/handlers"
	sharedctx "github.com/hyperterse/querygate/core/shared/context"
)

// maxBodyBytes bounds the size of a batch body
const maxBodyBytes = 4 << 20

// handleQuery runs a batch. Every batch outcome, including envelope
// failures, is answered with 200.
func handleQuery(queryService interfaces.QueryService) http.HandlerFunc {
	h := handlers.NewBaseHandler("handler:query")

	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := sharedctx.GetCaller(r.Context())
		if !ok {
			h.WriteJSON(w, http.StatusUnauthorized, dto.UnauthorizedResponse())
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			// The core reports an unreadable body as an envelope failure.
			payload = nil
		}

		resp := queryService.ExecuteBatch(r.Context(), payload, caller)
		h.WriteSuccess(w, resp)
	}
}

func handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	handlers.NewBaseHandler("handler").WriteSuccess(w, dto.HealthResponse{Success: true})
}
