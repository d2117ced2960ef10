package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"asha_gallery/internal/config"
	"asha_gallery/internal/domain/models"
	jwtlib "asha_gallery/internal/lib/jwt"
	"asha_gallery/internal/lib/logger/sl"
	appmiddleware "asha_gallery/internal/middleware"
	usersvc "asha_gallery/internal/services/user_service"
	httprouters "asha_gallery/internal/transport/http"
	"asha_gallery/internal/transport/http/dto/response"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	env     string
	host    string
	port    string
}

func New(log *slog.Logger, cfg *config.Config, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.HTTPServer.CORSOrigin},
		AllowMethods: []string{echo.GET, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.HTTPServer.BodyLimit))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))
	e.Use(appmiddleware.PrometheusMetrics)

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("statsviz start with error", sl.Err(err))
	}

	s := &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		env:     cfg.Env,
		host:    cfg.HTTPServer.Host,
		port:    cfg.HTTPServer.Port,
	}

	e.HTTPErrorHandler = s.errorHandler

	if cfg.Storage.Variant == config.StorageVariantLocal {
		e.Static("/uploads", cfg.Storage.BaseDir)
	}

	s.buildRouters(cfg)

	return s
}

// Echo exposes the underlying router for in-process tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// authMiddleware admits only bearers of a live token: the revocation
// check runs before the signature check so a logged-out token is
// rejected even while cryptographically valid.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return s.authenticate(next, true)
}

// logoutMiddleware authenticates without consulting the revocation
// ledger. Logging out twice with the same token must succeed, and
// revoking a token that is already in the ledger is a no-op.
func (s *Server) logoutMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return s.authenticate(next, false)
}

func (s *Server) authenticate(next echo.HandlerFunc, checkRevoked bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerFromHeader(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrNoToken)
		}

		if checkRevoked {
			revoked, err := s.routers.TokenService.IsRevoked(c.Request().Context(), token)
			if err != nil {
				s.log.Error("revocation check failed", sl.Err(err))
				return c.JSON(http.StatusInternalServerError, response.ErrInternal)
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, response.ErrTokenRevoked)
			}
		}

		claims, err := s.routers.TokenService.Verify(token)
		if err != nil {
			if errors.Is(err, jwtlib.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, response.ErrTokenExpired)
			}
			return c.JSON(http.StatusUnauthorized, response.ErrTokenInvalid)
		}

		admin, err := s.routers.UserService.AdminByID(c.Request().Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, usersvc.ErrUserNotFound) {
				return c.JSON(http.StatusUnauthorized, response.ErrAdminNotFound)
			}

			s.log.Error("failed to load admin", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}

		c.Set("admin", admin)

		return next(c)
	}
}

func (s *Server) requireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			admin, ok := c.Get("admin").(models.Admin)
			if !ok || admin.Role != role {
				return c.JSON(http.StatusForbidden, response.ErrForbidden)
			}

			return next(c)
		}
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	resp := response.Error(message)
	if s.env != "prod" {
		resp.Stack = string(debug.Stack())
	}

	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("URI", c.Request().RequestURI), sl.Err(err))
	}

	if jsonErr := c.JSON(code, resp); jsonErr != nil {
		s.log.Error("failed to write error response", sl.Err(jsonErr))
	}
}

func (s *Server) buildRouters(cfg *config.Config) {
	loginLimiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.HTTPServer.LoginRPS),
			Burst:     cfg.HTTPServer.LoginBurst,
			ExpiresIn: 3 * time.Minute,
		},
	))
	uploadLimiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.HTTPServer.UploadRPS),
			Burst:     cfg.HTTPServer.UploadBurst,
			ExpiresIn: 3 * time.Minute,
		},
	))

	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debugGroup := s.e.Group("/debug")
	{
		debugGroup.GET("/statsviz/", echo.WrapHandler(s.m))
		debugGroup.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api")
	{
		api.GET("/health", s.routers.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/login", s.routers.Login, loginLimiter)
			auth.POST("/logout", s.routers.Logout, s.logoutMiddleware)
			auth.GET("/me", s.routers.Me, s.authMiddleware)
		}

		gallery := api.Group("/gallery")
		{
			gallery.GET("", s.routers.GetGallery)

			admin := gallery.Group("", s.authMiddleware, s.requireRole(models.RoleAdmin))
			{
				admin.POST("/upload", s.routers.UploadImage, uploadLimiter)
				admin.PUT("", s.routers.ReplaceGallery)
				admin.PATCH("/:id", s.routers.UpdateItem)
				admin.DELETE("/:id", s.routers.DeleteItem)
			}
		}
	}
}

func bearerFromHeader(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)

	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}

	return header[len(prefix):], true
}
