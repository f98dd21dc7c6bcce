// Package envelope adapts the JSON batch envelope to google.protobuf.Struct
// for the RPC transports.
package envelope

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
)

const (
	// Service is the fully-qualified RPC service name
	Service = "querygate.v1.QueryService"
	// QueryMethod is the full method name of the batch query RPC
	QueryMethod = "/" + Service + "/Query"
)

// Execute runs the batch carried by msg and returns the response envelope as
// a Struct. A nil msg is an empty object, which the query service treats
// as an empty batch.
func Execute(ctx context.Context, svc interfaces.QueryService, msg *structpb.Struct, caller *domain.Caller) (*structpb.Struct, error) {
	payload := []byte("{}")
	if msg != nil {
		encoded, err := protojson.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = encoded
	}

	resp := svc.ExecuteBatch(ctx, payload, caller)

	encoded, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(encoded, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
