package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/config"
	"github.com/oggyb/blinder/internal/handlers"
	"github.com/oggyb/blinder/internal/middleware"
	"github.com/oggyb/blinder/internal/service/explore"
	"github.com/oggyb/blinder/internal/service/match"
	"github.com/oggyb/blinder/internal/service/message"
	"github.com/oggyb/blinder/internal/service/profile"
)

// Services are the domain services the REST surface fronts.
// They are built once in main and shared with the gRPC server.
type Services struct {
	Explore  *explore.Service
	Engine   *match.Engine
	Messages *message.Service
	Profiles *profile.Service
}

// NewServices builds every domain service from the shared AppContext.
func NewServices(appCtx *app.AppContext) *Services {
	return &Services{
		Explore:  explore.NewExploreService(appCtx),
		Engine:   match.NewEngineFromApp(appCtx),
		Messages: message.NewMessageService(appCtx),
		Profiles: profile.NewProfileService(appCtx),
	}
}

func New(cfg *config.Config, appCtx *app.AppContext, svc *Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.App.Name))
	r.Use(cors.New(corsConfig(cfg.HTTP.CORSOrigins)))
	r.Use(middleware.RequestLogger(appCtx.Logger))
	r.Use(middleware.Metrics())

	matchH := handlers.NewMatchHandler(appCtx, svc.Explore, svc.Engine)
	messageH := handlers.NewMessageHandler(appCtx, svc.Messages, svc.Engine)
	profileH := handlers.NewProfileHandler(appCtx, svc.Profiles)
	auth := middleware.NewAuthMiddleware(appCtx.Logger, cfg.Auth.JWTSecret, appCtx.Repos.Users)

	// ===============
	// || Public    ||
	// ===============
	r.GET("/healthcheck", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/auth/register", profileH.Register)
	r.GET("/auth/universities", profileH.Universities)

	// ===============
	// || Protected ||
	// ===============
	m := r.Group("/match", auth.RequireAuth(false))
	{
		m.GET("/potential", matchH.Potential)
		m.POST("/swipe", matchH.Swipe)
		m.POST("/unmatch", matchH.Unmatch)
		m.GET("/my-matches", matchH.MyMatches)
		m.GET("/liked-you", matchH.LikedYou)
		m.GET("/liked-you/new", matchH.NewLikedYou)
		m.GET("/liked-you/count", matchH.LikedYouCount)
	}

	msg := r.Group("/message")
	{
		msg.GET("/conversation", auth.RequireAuth(false), messageH.Conversation)
		msg.POST("/send", auth.RequireAuth(false), messageH.Send)
		msg.GET("/ws", auth.RequireAuth(true), messageH.Stream)
	}

	a := r.Group("/auth", auth.RequireAuth(false))
	{
		a.GET("/profile", profileH.Get)
		a.POST("/update-profile", profileH.Update)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
