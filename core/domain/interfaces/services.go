package interfaces

import (
	"context"

	"github.com/hyperterse/querygate/core/domain"
)

// QueryService defines the batch query operation shared by all transports
type QueryService interface {
	// ExecuteBatch runs every item of the JSON batch payload on behalf of
	// caller. It never returns an error: failures are part of the response.
	ExecuteBatch(ctx context.Context, payload []byte, caller *domain.Caller) *domain.BatchResponse
}
