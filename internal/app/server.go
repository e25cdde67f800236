// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portal-auth-service/internal/config"
	"portal-auth-service/internal/db"
	authHandler "portal-auth-service/internal/handlers/auth"
	customerHandler "portal-auth-service/internal/handlers/customer"
	"portal-auth-service/internal/middleware"
	"portal-auth-service/internal/pkg/jwt"
	"portal-auth-service/internal/pkg/ratelimit"
	"portal-auth-service/internal/repository/postgres"
	"portal-auth-service/internal/revocation"
	authUsecase "portal-auth-service/internal/service/auth"
	customersvc "portal-auth-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server

	sessions    *authUsecase.SessionManager
	stopCleanup context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New()}
}

func (s *Server) Start() error {
	// ----- Logger -----
	logger, err := newLogger(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// ----- Repositories -----
	identityRepo := postgres.NewIdentityRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	loginRepo := postgres.NewLoginRepository(pool)

	// ----- Revocation strategy -----
	var blacklist revocation.Blacklist
	switch s.cfg.BlacklistStrategy {
	case "postgres":
		blacklist = postgres.NewBlacklistRepository(pool)
	case "memory":
		blacklist = revocation.NewMemoryBlacklist(s.cfg.BlacklistSnapshot)
	default:
		blacklist = revocation.NewRedisBlacklist(redisClient)
	}
	logger.Info("revocation registry ready", zap.String("strategy", s.cfg.BlacklistStrategy))

	// ----- Services -----
	codec := jwt.NewCodec(s.cfg.JWT)
	rateLimiter := ratelimit.NewLimiter(redisClient)

	sessions := authUsecase.NewSessionManager(
		identityRepo,
		profileRepo,
		sessionRepo,
		loginRepo,
		blacklist,
		codec,
		rateLimiter,
		s.cfg.OTPTTL,
		logger,
	)
	s.sessions = sessions
	customerService := customersvc.NewCustomerService(identityRepo, profileRepo, logger)

	// ----- Handlers & middleware -----
	authHandlerInst := authHandler.NewAuthHandler(sessions, customerService, s.cfg, logger)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService, logger)
	authMiddleware := middleware.NewAuthMiddleware(sessions)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, &Handlers{
		AuthHandler:     authHandlerInst,
		CustomerHandler: customerHandlerInst,
		AuthMiddleware:  authMiddleware,
	})

	// ----- Cleanup scheduler -----
	cleanupCtx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	go s.runCleanup(cleanupCtx)

	// ----- HTTP -----
	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	logger.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the cleanup scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopCleanup != nil {
		s.stopCleanup()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// runCleanup sweeps expired blacklist entries and sessions on a fixed
// interval until the context is canceled.
func (s *Server) runCleanup(ctx context.Context) {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			if _, err := s.sessions.Cleanup(sweepCtx); err != nil {
				s.logger.Error("scheduled cleanup failed", zap.Error(err))
			}
			cancel()
		}
	}
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
