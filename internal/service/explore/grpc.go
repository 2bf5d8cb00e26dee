package explore

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/blinder/internal/db"
	"github.com/oggyb/blinder/internal/server"
	"github.com/oggyb/blinder/internal/service"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "blinder.explore.v1.ExploreService"

type GetCandidatesRequest struct {
	UserID string `json:"user_id"`
}

type GetCandidatesResponse struct {
	PotentialMatches []db.PublicProfile `json:"potential_matches"`
}

type ListLikedYouRequest struct {
	RecipientUserID string  `json:"recipient_user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

type CountLikedYouRequest struct {
	RecipientUserID string `json:"recipient_user_id"`
}

type CountLikedYouResponse struct {
	Count uint64 `json:"count"`
}

// Server is the gRPC surface of the explore service.
type Server interface {
	GetCandidates(context.Context, *GetCandidatesRequest) (*GetCandidatesResponse, error)
	ListLikedYou(context.Context, *ListLikedYouRequest) (*LikedYouPage, error)
	ListNewLikedYou(context.Context, *ListLikedYouRequest) (*LikedYouPage, error)
	CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error)
}

// ServiceDesc describes the explore service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		server.UnaryMethod(ServiceName, "GetCandidates", Server.GetCandidates),
		server.UnaryMethod(ServiceName, "ListLikedYou", Server.ListLikedYou),
		server.UnaryMethod(ServiceName, "ListNewLikedYou", Server.ListNewLikedYou),
		server.UnaryMethod(ServiceName, "CountLikedYou", Server.CountLikedYou),
	},
}

type grpcServer struct {
	svc *Service
}

// NewGRPCServer adapts Service to the wire types.
func NewGRPCServer(svc *Service) Server {
	return &grpcServer{svc: svc}
}

func (g *grpcServer) GetCandidates(ctx context.Context, req *GetCandidatesRequest) (*GetCandidatesResponse, error) {
	userID, err := service.ParseUserID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	profiles, err := g.svc.GetCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GetCandidatesResponse{PotentialMatches: profiles}, nil
}

func (g *grpcServer) ListLikedYou(ctx context.Context, req *ListLikedYouRequest) (*LikedYouPage, error) {
	userID, err := service.ParseUserID("recipient_user_id", req.RecipientUserID)
	if err != nil {
		return nil, err
	}
	return g.svc.ListLikedYou(ctx, userID, req.PaginationToken)
}

func (g *grpcServer) ListNewLikedYou(ctx context.Context, req *ListLikedYouRequest) (*LikedYouPage, error) {
	userID, err := service.ParseUserID("recipient_user_id", req.RecipientUserID)
	if err != nil {
		return nil, err
	}
	return g.svc.ListNewLikedYou(ctx, userID, req.PaginationToken)
}

func (g *grpcServer) CountLikedYou(ctx context.Context, req *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	userID, err := service.ParseUserID("recipient_user_id", req.RecipientUserID)
	if err != nil {
		return nil, err
	}
	n, err := g.svc.CountLikedYou(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CountLikedYouResponse{Count: n}, nil
}

// Client calls the explore service over a JSON-codec connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetCandidates(ctx context.Context, req *GetCandidatesRequest) (*GetCandidatesResponse, error) {
	return server.Invoke[GetCandidatesResponse](ctx, c.cc, ServiceName, "GetCandidates", req)
}

func (c *Client) ListLikedYou(ctx context.Context, req *ListLikedYouRequest) (*LikedYouPage, error) {
	return server.Invoke[LikedYouPage](ctx, c.cc, ServiceName, "ListLikedYou", req)
}

func (c *Client) ListNewLikedYou(ctx context.Context, req *ListLikedYouRequest) (*LikedYouPage, error) {
	return server.Invoke[LikedYouPage](ctx, c.cc, ServiceName, "ListNewLikedYou", req)
}

func (c *Client) CountLikedYou(ctx context.Context, req *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	return server.Invoke[CountLikedYouResponse](ctx, c.cc, ServiceName, "CountLikedYou", req)
}
