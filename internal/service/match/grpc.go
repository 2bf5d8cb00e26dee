package match

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/blinder/internal/server"
	"github.com/oggyb/blinder/internal/service"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "blinder.match.v1.MatchService"

type RecordDecisionRequest struct {
	SwiperUserID string `json:"swiper_user_id"`
	SwipeeUserID string `json:"swipee_user_id"`
	Action       string `json:"action"`
}

type UnmatchRequest struct {
	UserID  string `json:"user_id"`
	MatchID string `json:"match_id"`
}

type ListMatchesRequest struct {
	UserID string `json:"user_id"`
}

type ListMatchesResponse struct {
	Matches []MatchSummary `json:"matches"`
}

// Server is the gRPC surface of the swipe/match engine.
type Server interface {
	RecordDecision(context.Context, *RecordDecisionRequest) (*Decision, error)
	Unmatch(context.Context, *UnmatchRequest) (*UnmatchResult, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
}

// ServiceDesc describes the match service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		server.UnaryMethod(ServiceName, "RecordDecision", Server.RecordDecision),
		server.UnaryMethod(ServiceName, "Unmatch", Server.Unmatch),
		server.UnaryMethod(ServiceName, "ListMatches", Server.ListMatches),
	},
}

type grpcServer struct {
	engine *Engine
}

// NewGRPCServer adapts Engine to the wire types.
func NewGRPCServer(engine *Engine) Server {
	return &grpcServer{engine: engine}
}

func (g *grpcServer) RecordDecision(ctx context.Context, req *RecordDecisionRequest) (*Decision, error) {
	swiperID, err := service.ParseUserID("swiper_user_id", req.SwiperUserID)
	if err != nil {
		return nil, err
	}
	swipeeID, err := service.ParseUserID("swipee_user_id", req.SwipeeUserID)
	if err != nil {
		return nil, err
	}
	return g.engine.RecordDecision(ctx, swiperID, swipeeID, req.Action)
}

func (g *grpcServer) Unmatch(ctx context.Context, req *UnmatchRequest) (*UnmatchResult, error) {
	userID, err := service.ParseUserID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	return g.engine.Unmatch(ctx, userID, req.MatchID)
}

func (g *grpcServer) ListMatches(ctx context.Context, req *ListMatchesRequest) (*ListMatchesResponse, error) {
	userID, err := service.ParseUserID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	matches, err := g.engine.ListMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListMatchesResponse{Matches: matches}, nil
}

// Client calls the match service over a JSON-codec connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) RecordDecision(ctx context.Context, req *RecordDecisionRequest) (*Decision, error) {
	return server.Invoke[Decision](ctx, c.cc, ServiceName, "RecordDecision", req)
}

func (c *Client) Unmatch(ctx context.Context, req *UnmatchRequest) (*UnmatchResult, error) {
	return server.Invoke[UnmatchResult](ctx, c.cc, ServiceName, "Unmatch", req)
}

func (c *Client) ListMatches(ctx context.Context, req *ListMatchesRequest) (*ListMatchesResponse, error) {
	return server.Invoke[ListMatchesResponse](ctx, c.cc, ServiceName, "ListMatches", req)
}
