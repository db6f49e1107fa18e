package http

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"giftstore/internal/config"
	"giftstore/internal/infra/auth/jwtsign"
	"giftstore/internal/infra/auth/password"
	"giftstore/internal/infra/auth/policy"
	"giftstore/internal/infra/db"
	"giftstore/internal/infra/memstore"
	"giftstore/internal/infra/ratelimit"
	"giftstore/internal/usecase"

	"github.com/gin-gonic/gin"
)

// ResourceModule registers catalog routes (tags, certificates, orders,
// uploads) behind the same authentication and access policy.
type ResourceModule interface {
	Register(r gin.IRouter)
}

type Server struct {
	cfg    config.Config
	store  *db.Store
	r      *gin.Engine
	logger *slog.Logger

	auth      *usecase.AuthService
	validator *usecase.TokenValidator
	policy    *policy.Policy
	throttle  *ratelimit.LoginThrottle
	modules   []ResourceModule

	limiterFailClosed bool
	closers           []func() error
	initErr           error
}

func NewServer(cfg config.Config, store *db.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, store: store, logger: logger}
	deps, err := s.initDeps()
	if err != nil {
		s.initErr = err
	}
	s.build(deps)
	return s
}

type ServerDeps struct {
	Users   usecase.UserRepository
	Roles   usecase.RoleRepository
	Tokens  usecase.TokenStore
	Hasher  usecase.PasswordHasher
	Signer  usecase.TokenSigner
	Policy  *policy.Policy
	Limiter ratelimit.Limiter
	Clock   usecase.Clock
	Logger  *slog.Logger
	Modules []ResourceModule
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}
	s.build(deps)
	return s
}

func (s *Server) build(deps ServerDeps) {
	if deps.Policy == nil {
		deps.Policy = policy.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s.policy = deps.Policy
	s.modules = deps.Modules
	s.auth = usecase.NewAuthService(usecase.AuthServiceDeps{
		Users:      deps.Users,
		Roles:      deps.Roles,
		Tokens:     deps.Tokens,
		Hasher:     deps.Hasher,
		Signer:     deps.Signer,
		AccessTTL:  s.cfg.AccessTTL(),
		RefreshTTL: s.cfg.RefreshTTL(),
		Clock:      deps.Clock,
		Logger:     s.logger,
	})
	s.validator = usecase.NewTokenValidator(deps.Signer, deps.Tokens, deps.Users, deps.Clock)
	if deps.Limiter != nil {
		s.throttle = ratelimit.NewLoginThrottle(deps.Limiter, s.cfg.LoginRateLimitRequests, s.cfg.LoginRateLimitWindow())
	}
	s.limiterFailClosed = s.cfg.LoginRateLimitFailClosed

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.cors())
	r.Use(s.authenticate())
	r.Use(s.authorize())
	s.r = r
	s.routes()
}

func (s *Server) initDeps() (ServerDeps, error) {
	deps := ServerDeps{Logger: s.logger}

	if s.store.Enabled() {
		deps.Users = s.store.Users
		deps.Roles = s.store.Roles
		deps.Tokens = s.store.Tokens
	} else {
		mem := memstore.New(nil)
		deps.Users = mem
		deps.Roles = mem
		deps.Tokens = mem
	}

	deps.Hasher = password.NewBcrypt(s.cfg.BcryptCost)

	signer, err := s.newSigner()
	if err != nil {
		return deps, err
	}
	deps.Signer = signer

	pol, err := policy.Load(s.cfg.AccessPolicyFile)
	if err != nil {
		return deps, fmt.Errorf("load access policy: %w", err)
	}
	deps.Policy = pol

	if s.cfg.LoginRateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
				Addr:     s.cfg.RedisAddr,
				Password: s.cfg.RedisPassword,
				DB:       s.cfg.RedisDB,
			})
			if err == nil {
				deps.Limiter = limiter
				s.closers = append(s.closers, limiter.Close)
			} else {
				s.logger.Warn("redis rate limiter unavailable; using memory", slog.String("error", err.Error()))
			}
		}
		if deps.Limiter == nil {
			deps.Limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	return deps, nil
}

func (s *Server) newSigner() (*jwtsign.Signer, error) {
	if s.cfg.JWTSecretKey != "" {
		return jwtsign.NewFromBase64(s.cfg.JWTSecretKey)
	}
	if !s.cfg.IsDev() {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	key := make([]byte, jwtsign.MinKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	s.logger.Warn("JWT_SECRET_KEY not set; using an ephemeral signing key")
	return jwtsign.New(key)
}

func (s *Server) routes() {
	s.r.POST("/login", s.handleLogin)
	s.r.POST("/signup", s.handleSignup)
	s.r.POST("/logout", s.handleLogout)

	token := s.r.Group("/token")
	{
		token.POST("/authenticate", s.handleTokenAuthenticate)
		token.POST("/refresh", s.handleTokenRefresh)
		token.GET("/sessions", s.handleSessions)
	}

	users := s.r.Group("/users")
	{
		users.GET("", s.handleListUsers)
		users.GET("/:id", s.handleGetUser)
		users.POST("", s.handleCreateUser)
		users.POST("/:id/password", s.handleChangePassword)
	}

	for _, m := range s.modules {
		m.Register(s.r)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.initErr != nil {
		return s.initErr
	}
	defer s.close()

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("close dependency", slog.String("error", err.Error()))
		}
	}
}
