package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hyperterse/querygate/core/application/services"
	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces/mocks"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/registry"
	grpctransport "github.com/hyperterse/querygate/core/infrastructure/transport/grpc"
	"github.com/hyperterse/querygate/core/infrastructure/transport/envelope"
)

type fixture struct {
	conn          *grpclib.ClientConn
	authenticator *auth.Authenticator
	executor      *mocks.MockExecutor
	session       *mocks.MockSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snapshot, err := registry.NewSnapshot([]domain.Document{
		{"name": "getUsers", "expression": "SELECT * FROM users", "access": []any{"admin"}},
	})
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator(domain.AuthConfig{Secret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	session := &mocks.MockSession{}
	executor := &mocks.MockExecutor{}
	executor.On("NewSession").Return(session).Maybe()
	session.On("Release").Return().Maybe()

	srv := grpctransport.NewServer("0")
	srv.RegisterQueryService(services.NewQueryService(registry.NewStaticSource(snapshot), executor), authenticator)

	lis := bufconn.Listen(1 << 20)
	go srv.ServeListener(lis)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &fixture{conn: conn, authenticator: authenticator, executor: executor, session: session}
}

func batch(t *testing.T) *structpb.Struct {
	t.Helper()
	msg, err := structpb.NewStruct(map[string]any{
		"queries": []any{map[string]any{"name": "getUsers"}},
	})
	require.NoError(t, err)
	return msg
}

func TestQuery_Authenticated(t *testing.T) {
	f := newFixture(t)
	f.session.On("Execute", mock.Anything, "SELECT * FROM users", map[string]any{}, mock.Anything).
		Return([]domain.Row{{"id": int64(1)}}, nil)

	token, err := f.authenticator.Mint("alice", []string{"admin"}, time.Hour)
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)

	out := &structpb.Struct{}
	require.NoError(t, f.conn.Invoke(ctx, envelope.QueryMethod, batch(t), out))

	item := out.AsMap()["queries"].([]any)[0].(map[string]any)
	assert.Equal(t, "getUsers", item["name"])
	assert.Equal(t, []any{map[string]any{"id": 1.0}}, item["results"])
	f.session.AssertNumberOfCalls(t, "Release", 1)
}

func TestQuery_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	err := f.conn.Invoke(context.Background(), envelope.QueryMethod, batch(t), &structpb.Struct{})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "ERROR_UNAUTHORIZED", status.Convert(err).Message())
	f.executor.AssertNotCalled(t, "NewSession")
}

func TestQuery_EmptyMessageIsEmptyBatch(t *testing.T) {
	f := newFixture(t)

	token, err := f.authenticator.Mint("alice", []string{"admin"}, time.Hour)
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)

	out := &structpb.Struct{}
	require.NoError(t, f.conn.Invoke(ctx, envelope.QueryMethod, &structpb.Struct{}, out))
	assert.Equal(t, map[string]any{"queries": []any{}}, out.AsMap())
}
