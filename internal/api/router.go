package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/codetyper/codetyper-api/internal/api/handler"
	"github.com/codetyper/codetyper-api/internal/api/middleware"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/internal/infrastructure/http/handlers"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

// Deps holds everything the router needs. Checks feeds the readiness probe.
type Deps struct {
	Log         zerolog.Logger
	CORSOrigins []string
	Gate        *middleware.Gate

	Credentials ports.CredentialService
	Tasks       ports.TaskService
	Snippets    ports.SnippetService
	Languages   ports.LanguageService

	Checks map[string]handlers.Check

	// Registry receives the HTTP metrics. The default Prometheus registry is
	// used when nil.
	Registry *prometheus.Registry
}

var (
	staff      = []domain.Role{domain.RoleModerator, domain.RoleAdmin, domain.RoleSuperAdmin}
	adminRoles = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  d.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderAuthorization},
	}))

	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		metricsCfg.Registerer = d.Registry
		handlerCfg.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Credentials)
	userHandler := handler.NewUserHandler(d.Credentials)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	snippetHandler := handler.NewSnippetHandler(d.Snippets)
	languageHandler := handler.NewLanguageHandler(d.Languages)

	gate := d.Gate
	requireStaff := gate.Require(staff...)

	api := e.Group("/api")

	// --- Auth & users ---
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/users/:userId", userHandler.Get)
	api.POST("/users/promote/moderator/:userId", userHandler.PromoteModerator, gate.Require(adminRoles...))
	api.POST("/users/promote/admin/:userId", userHandler.PromoteAdmin, gate.Require(domain.RoleSuperAdmin))

	// --- Tasks ---
	api.POST("/tasks/add", taskHandler.Add, gate.Optional())
	api.GET("/tasks/shown", taskHandler.Shown)
	api.GET("/tasks/randomRequest", taskHandler.RandomRequest, requireStaff)
	api.PUT("/tasks/acceptRequest/:id", taskHandler.Accept, requireStaff)
	api.DELETE("/tasks/denyRequest/:id", taskHandler.Deny, requireStaff)

	// --- Snippets ---
	api.POST("/snippets/add", snippetHandler.Add, gate.Optional())
	api.GET("/snippets/random", snippetHandler.Random)
	api.GET("/snippets/shown", snippetHandler.Shown)
	api.GET("/snippets/randomRequest", snippetHandler.RandomRequest, requireStaff)
	api.PUT("/snippets/acceptRequest/:id", snippetHandler.Accept, requireStaff)
	api.DELETE("/snippets/denyRequest/:id", snippetHandler.Deny, requireStaff)

	// --- Languages ---
	api.POST("/languages/add", languageHandler.Add, gate.Require(adminRoles...))
	api.GET("/languages/getAll", languageHandler.All)
	api.GET("/languages/get/:name", languageHandler.Get)

	return e
}

// requestLogger writes one structured line per request. The Authorization
// header is never part of the logged values.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = logger.Component(log, "http")
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
