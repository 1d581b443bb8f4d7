// Package web assembles the press HTTP server: services, middleware and the
// /api routes, plus the static /uploads tree.
package web

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/beyondbeauty/press/config"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/crypto"
	"github.com/beyondbeauty/press/web/controller"
	"github.com/beyondbeauty/press/web/entity"
	"github.com/beyondbeauty/press/web/middleware"
	"github.com/beyondbeauty/press/web/service"
	"github.com/beyondbeauty/press/web/session"
)

const shutdownTimeout = 10 * time.Second

var startTime = time.Now()

// ErrMissingSecret is returned by Start when no signing key is configured.
var ErrMissingSecret = errors.New("PRESS_JWT_SECRET is not set")

// Server is the press API server. The database must be initialised before
// Start is called.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	assets   *service.AssetService
	articles *service.ArticleService
	accounts *service.AccountService
	auth     *service.AuthService
	issuer   *session.Issuer
}

func NewServer() *Server {
	return &Server{}
}

func (s *Server) initServices() error {
	secret := config.GetJWTSecret()
	if secret == "" {
		return ErrMissingSecret
	}
	assets, err := service.NewDiskAssetService()
	if err != nil {
		return err
	}
	s.assets = assets
	s.articles = service.NewArticleService(assets)
	s.accounts = service.NewAccountService()
	s.issuer = session.NewIssuer([]byte(secret), config.GetSessionTTL())
	s.auth = service.NewAuthService(s.accounts, crypto.NewVault(config.GetBcryptCost()), s.issuer)
	return nil
}

func (s *Server) initRouter() *gin.Engine {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger(), gin.Recovery())
	engine.Use(middleware.CORS(config.GetCORSOrigins()))
	engine.Use(middleware.RateLimit(config.GetRequestsPerMinute()))
	// images are already compressed
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/uploads/"}),
	))

	engine.Static("/uploads", config.GetUploadFolder())

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: "ok", Obj: gin.H{
			"name":    config.GetName(),
			"version": config.GetVersion(),
			"uptime":  int64(time.Since(startTime).Seconds()),
		}})
	})

	var gate middleware.AccountGate
	if config.CheckActiveOnRequest() {
		gate = s.accounts
	}
	authMw := middleware.AuthRequired(s.issuer, gate)

	api := engine.Group("/api")
	controller.NewArticleController(api, s.articles, authMw)
	controller.NewAccountController(api, s.auth, s.accounts, authMw)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, entity.Msg{Msg: "not found"})
	})

	return engine
}

// Start wires the services and begins serving in the background.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = s.initServices(); err != nil {
		return err
	}
	engine := s.initRouter()

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests, then waits for pending image removals.
func (s *Server) Stop() error {
	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	} else if s.listener != nil {
		errs = append(errs, s.listener.Close())
	}
	if s.assets != nil {
		s.assets.Wait()
	}
	return errors.Join(errs...)
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() (http.Handler, error) {
	if err := s.initServices(); err != nil {
		return nil, err
	}
	return s.initRouter(), nil
}
