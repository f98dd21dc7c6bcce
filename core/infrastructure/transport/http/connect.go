package http

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/infrastructure/transport/envelope"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/dto"
)

// newConnectHandler serves the batch RPC over the Connect protocol on the
// HTTP router. It returns the procedure path to mount the handler at.
func newConnectHandler(queryService interfaces.QueryService, authenticator *auth.Authenticator) (string, http.Handler) {
	log := logging.New("connect")

	handler := connect.NewUnaryHandler(
		envelope.QueryMethod,
		func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
			caller, err := authenticator.AuthenticateHeader(req.Header().Get("Authorization"))
			if err != nil {
				log.Debugf("Rejected request: %v", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New(dto.CodeUnauthorized))
			}

			out, err := envelope.Execute(ctx, queryService, req.Msg, caller)
			if err != nil {
				log.Errorf("Connect query failed: %v", err)
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(out), nil
		},
	)
	return envelope.QueryMethod, handler
}
