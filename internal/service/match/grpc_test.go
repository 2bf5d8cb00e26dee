package match_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/server"
	"github.com/oggyb/blinder/internal/service/match"
	"github.com/oggyb/blinder/internal/testutil"
)

func newClient(t *testing.T) *match.Client {
	t.Helper()
	appCtx := testutil.NewTestApp(t)
	require.NoError(t, db.SeedMinimalTestData(appCtx.DB))

	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(appCtx.Logger, match.NewRegistrar(appCtx))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return match.NewClient(conn)
}

func TestGRPC_MatchLifecycle(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	first, err := client.RecordDecision(ctx, &match.RecordDecisionRequest{SwiperUserID: "1", SwipeeUserID: "2", Action: "like"})
	require.NoError(t, err)
	assert.False(t, first.Matched)

	second, err := client.RecordDecision(ctx, &match.RecordDecisionRequest{SwiperUserID: "2", SwipeeUserID: "1", Action: "like"})
	require.NoError(t, err)
	assert.True(t, second.Matched)

	list, err := client.ListMatches(ctx, &match.ListMatchesRequest{UserID: "1"})
	require.NoError(t, err)
	require.Len(t, list.Matches, 1)
	assert.Equal(t, "2", list.Matches[0].UserID)

	_, err = client.Unmatch(ctx, &match.UnmatchRequest{UserID: "3", MatchID: second.MatchID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	res, err := client.Unmatch(ctx, &match.UnmatchRequest{UserID: "1", MatchID: second.MatchID})
	require.NoError(t, err)
	assert.False(t, res.Partial)

	_, err = client.Unmatch(ctx, &match.UnmatchRequest{UserID: "1", MatchID: second.MatchID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_BadIDs(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	_, err := client.RecordDecision(ctx, &match.RecordDecisionRequest{SwiperUserID: "x", SwipeeUserID: "2", Action: "like"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ListMatches(ctx, &match.ListMatchesRequest{UserID: ""})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
