package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripline/tripline/internal/auth"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/auth/session"
	"github.com/tripline/tripline/internal/authorization"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/internal/config"
	"github.com/tripline/tripline/internal/invitation"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	"github.com/tripline/tripline/internal/observability"
	obslogger "github.com/tripline/tripline/internal/observability/logger"
	obsmetrics "github.com/tripline/tripline/internal/observability/metrics"
	obstracing "github.com/tripline/tripline/internal/observability/tracing"
	"github.com/tripline/tripline/internal/providers"
	"github.com/tripline/tripline/internal/providers/pdf"
	"github.com/tripline/tripline/internal/providers/staticmap"
	"github.com/tripline/tripline/internal/ratelimit"
	"github.com/tripline/tripline/internal/trip"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	"github.com/tripline/tripline/internal/waypoint"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	trip.Module,
	waypoint.Module,
	invitation.Module,
	ratelimit.Module,
	providers.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(CORS())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, log)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	authsvc       authdomain.Service
	sessions      *session.Manager
	genID         *snowflake.Node
	clock         clock.Clock
	authzSvc      authorization.Service
	tripSvc       tripdomain.Service
	waypointSvc   waypointdomain.Service
	invitationSvc invitationdomain.Service
	loginLimiter  *ratelimit.LoginLimiter
	pdfProvider   pdf.Provider
	staticMap     staticmap.Provider
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Authsvc       authdomain.Service
	Sessions      *session.Manager
	GenID         *snowflake.Node
	Clock         clock.Clock
	AuthzSvc      authorization.Service
	TripSvc       tripdomain.Service
	WaypointSvc   waypointdomain.Service
	InvitationSvc invitationdomain.Service
	LoginLimiter  *ratelimit.LoginLimiter `optional:"true"`
	PDFProvider   pdf.Provider
	StaticMap     staticmap.Provider
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		authsvc:       p.Authsvc,
		sessions:      p.Sessions,
		genID:         p.GenID,
		clock:         p.Clock,
		authzSvc:      p.AuthzSvc,
		tripSvc:       p.TripSvc,
		waypointSvc:   p.WaypointSvc,
		invitationSvc: p.InvitationSvc,
		loginLimiter:  p.LoginLimiter,
		pdfProvider:   p.PDFProvider,
		staticMap:     p.StaticMap,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Trips --------
	api.GET("/trips", s.ListTrips)
	api.POST("/trips", s.CreateTrip)
	api.GET("/trips/:id", s.GetTrip)
	api.PATCH("/trips/:id", s.UpdateTrip)
	api.DELETE("/trips/:id", s.DeleteTrip)
	api.POST("/trips/:id/compare", s.CompareTrip)
	api.GET("/trips/:id/export", s.ExportTrip)

	// -------- Participants --------
	api.GET("/trips/:id/participants", s.ListParticipants)
	api.POST("/trips/:id/participants", s.AddParticipant)
	api.PATCH("/trips/:id/participants/:participantId", s.UpdateParticipant)
	api.DELETE("/trips/:id/participants/:participantId", s.RemoveParticipant)

	// -------- Waypoints --------
	api.GET("/trips/:id/waypoints", s.ListWaypoints)
	api.POST("/trips/:id/waypoints", s.CreateWaypoint)
	api.GET("/trips/:id/waypoints/:waypointId", s.GetWaypoint)
	api.PATCH("/trips/:id/waypoints/:waypointId", s.UpdateWaypoint)
	api.DELETE("/trips/:id/waypoints/:waypointId", s.DeleteWaypoint)

	// -------- Invitations --------
	api.GET("/trips/:id/invitations", s.ListTripInvitations)
	api.POST("/trips/:id/invitations", s.CreateInvitation)
	api.GET("/invitations", s.ListMyInvitations)
	api.POST("/invitations/:id/accept", s.AcceptInvitation)
	api.POST("/invitations/:id/decline", s.DeclineInvitation)
	api.POST("/invitations/:id/cancel", s.CancelInvitation)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired())

	admin.GET("/users", s.AdminAction(authorization.ObjectUser, authorization.ActionUserView), s.AdminListUsers)
	admin.DELETE("/users/:id", s.AdminAction(authorization.ObjectUser, authorization.ActionUserDelete), s.AdminDeleteUser)

	admin.GET("/trips", s.AdminAction(authorization.ObjectTrip, authorization.ActionTripView), s.AdminListTrips)
	admin.DELETE("/trips/:id", s.AdminAction(authorization.ObjectTrip, authorization.ActionTripDelete), s.AdminDeleteTrip)
}
