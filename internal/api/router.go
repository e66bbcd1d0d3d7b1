package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/saa-academy/portal/docs"
	"github.com/saa-academy/portal/internal/api/handler"
	"github.com/saa-academy/portal/internal/api/middleware"
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/ports"
	"github.com/saa-academy/portal/internal/core/service"
	"github.com/saa-academy/portal/internal/infrastructure/config"
	"github.com/saa-academy/portal/pkg/logger"
)

// PortalDeps are the collaborators the gateway router is built from. Mongo and
// Redis are only used by the readiness probe and may be nil. A nil Registerer
// means the default Prometheus registry.
type PortalDeps struct {
	Config     *config.Config
	Sessions   ports.SessionService
	Audit      ports.AuditRecorder
	Mongo      *mongo.Database
	Redis      *redis.Client
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

var publicPages = []struct {
	path  string
	title string
}{
	{domain.RouteHome, "Home"},
	{"/courses", "Courses"},
	{"/courses/:slug", "Course"},
	{"/blog", "Blog"},
	{"/blog/:slug", "Blog post"},
	{"/counselling", "Counselling"},
	{"/about", "About"},
	{"/contact", "Contact"},
}

// NewRouter builds the gateway: public pages, session endpoints, guarded pages
// and the guarded proxy to the academy API.
func NewRouter(deps PortalDeps) (*echo.Echo, error) {
	cfg := deps.Config
	backendURL, err := url.Parse(cfg.Backend.URL)
	if err != nil || backendURL.Scheme == "" || backendURL.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q", cfg.Backend.URL)
	}

	e := newEcho(deps.Log)
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: deps.Registerer,
	}))

	// --- Dependencies ---
	cookie := middleware.NewSessionCookie(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.CookieMaxAge, cfg.Session.CookieSecure)
	redirects := service.NewRedirectCoordinator(domain.RouteLogin)
	guards := middleware.NewGuards(redirects, deps.Audit)
	pages := handler.NewPageHandler(service.NewNavigation())
	sessionHandler := handler.NewSessionHandler(deps.Sessions, redirects, cookie, pages, deps.Audit)

	// --- Operational routes (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	web := e.Group("", middleware.Session(deps.Sessions, cookie, deps.Audit))

	// --- Public pages ---
	for _, p := range publicPages {
		web.GET(p.path, pages.Page(p.title))
	}

	// --- Session ---
	web.GET(domain.RouteLogin, sessionHandler.LoginPage("Sign in"))
	web.POST(domain.RouteLogin, sessionHandler.Login)
	web.GET(domain.RouteRegister, sessionHandler.LoginPage("Register"))
	web.POST(domain.RouteRegister, sessionHandler.Register)
	web.POST(domain.RouteLogout, sessionHandler.Logout)
	web.GET("/api/session", sessionHandler.Current)
	web.GET("/api/navigation", pages.Navigation)

	// --- Guarded pages ---
	for _, rule := range domain.PageRoutes {
		guard := guards.Page(rule.Requirement)
		web.GET(rule.Path, pages.Page(pageTitle(rule.Path)), guard)
		web.GET(rule.Path+"/*", pages.Page(pageTitle(rule.Path)), guard)
	}
	web.GET("/admin", pages.Page("Admin"), guards.Page(domain.RequireAdministrative()))
	web.GET("/admin/*", pages.Page("Admin"), guards.Page(domain.RequireAdministrative()))

	// --- Academy API proxy ---
	upstream := upstreamProxy(backendURL)
	for _, resource := range domain.AdminResourceNames() {
		prefix := "/api/admin/" + resource
		guard := guards.API(domain.RequireSection(domain.AdminResources[resource]))
		web.Any(prefix, proxied, guard, middleware.UpstreamCredentials(), upstream)
		web.Any(prefix+"/*", proxied, guard, middleware.UpstreamCredentials(), upstream)
	}
	web.POST("/api/enrollments", proxied, guards.API(domain.RequireAuthenticated()), middleware.UpstreamCredentials(), upstream)

	return e, nil
}

// NewDevAPIRouter builds cmd/devapi, the local stand-in for the academy API.
func NewDevAPIRouter(accounts ports.AccountService, db *mongo.Database, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := newEcho(log)
	e.Use(echoprometheus.NewMiddleware("devapi"))

	accountHandler := handler.NewAccountHandler(accounts)
	authMiddleware := middleware.Bearer(jwtSecret)
	manageUsers := middleware.RBAC(domain.RequireSection(domain.SectionUsers))

	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(db, nil).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	api := e.Group("/api")
	api.POST("/users/register", accountHandler.Register)
	api.POST("/users/login", accountHandler.Login)

	users := api.Group("/users", authMiddleware, manageUsers)
	users.GET("", accountHandler.List)
	users.PUT("/:id/role", accountHandler.UpdateRole)
	users.DELETE("/:id", accountHandler.Delete)

	return e
}

func newEcho(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Pre(middleware.CanonicalPath())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.Middleware(log))
	return e
}

// upstreamProxy forwards /api/admin/<resource>/... to <backend>/<resource>/...
// and /api/enrollments to <backend>/enrollments.
func upstreamProxy(target *url.URL) echo.MiddlewareFunc {
	return echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{{URL: target}}),
		Rewrite: map[string]string{
			"/api/admin/*":     "/$1",
			"/api/enrollments": "/enrollments",
		},
	})
}

// proxied terminates proxy routes; the proxy middleware answers before it runs.
func proxied(c echo.Context) error {
	return echo.ErrNotFound
}

// pageTitle turns "/admin/enrollments" into "Admin enrollments".
func pageTitle(path string) string {
	title := strings.ReplaceAll(strings.Trim(path, "/"), "/", " ")
	title = strings.ReplaceAll(title, "-", " ")
	if title == "" {
		return "Home"
	}
	return strings.ToUpper(title[:1]) + title[1:]
}
