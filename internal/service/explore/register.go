package explore

import (
	"google.golang.org/grpc"

	"github.com/oggyb/blinder/internal/app"
)

// Registrar ties the Explore service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Explore service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Explore service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ServiceDesc, NewGRPCServer(NewExploreService(r.appCtx)))
}
