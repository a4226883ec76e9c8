// Package router wires the HTTP surface: public catalogue and auth routes,
// the session-protected CRUD groups and the operational endpoints.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qtc-soft/schedule-api/internal/handler"
	"github.com/qtc-soft/schedule-api/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	UserAuth     *handler.AuthHandler
	CustomerAuth *handler.AuthHandler
	Users        *handler.UserHandler
	Schedules    *handler.ScheduleHandler
	Details      *handler.ScheduleDetailHandler
	Orders       *handler.OrderHandler
	Customers    *handler.CustomerHandler
	Countries    *handler.ReferenceHandler
	Cities       *handler.ReferenceHandler
	Online       *handler.ScheduleOnlineHandler
}

// Options carries the cross-cutting middleware built in main.
type Options struct {
	LoadSession echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
	Cache       echo.MiddlewareFunc
}

// Register mounts every route.  CORS and metrics apply globally; the session
// loader runs on all /v1 routes so optional-auth endpoints can still see a
// session; RequireSession guards the protected group.
func Register(e *echo.Echo, h Handlers, opts Options) {
	e.Use(echomw.CORS())
	e.Use(middleware.Metrics())

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1", opts.LoadSession)
	if opts.RateLimit != nil {
		v1.Use(opts.RateLimit)
	}

	// auth, two principal kinds
	ua := v1.Group("/auth")
	ua.POST("/login", h.UserAuth.Login)
	ua.POST("/registration", h.UserAuth.Registration)
	ua.GET("/logout", h.UserAuth.Logout)
	ua.POST("/logout", h.UserAuth.Logout)
	ua.GET("/is-auth", h.UserAuth.IsAuth)
	ua.GET("/confirm/:key", h.UserAuth.ConfirmEmail)

	ca := v1.Group("/customer-auth")
	ca.POST("/login", h.CustomerAuth.Login)
	ca.POST("/registration", h.CustomerAuth.Registration)
	ca.GET("/logout", h.CustomerAuth.Logout)
	ca.POST("/logout", h.CustomerAuth.Logout)
	ca.GET("/is-auth", h.CustomerAuth.IsAuth)
	ca.GET("/confirm/:key", h.CustomerAuth.ConfirmEmail)

	// public catalogue, cached
	online := v1.Group("/schedule-online")
	if opts.Cache != nil {
		online.Use(opts.Cache)
	}
	online.GET("/:ids", h.Online.Get)

	// session-protected CRUD
	priv := v1.Group("", middleware.RequireSession())

	priv.GET("/users/:ids", h.Users.Get)
	priv.PUT("/users", h.Users.Update)
	priv.DELETE("/users/:ids", h.Users.Delete)

	priv.GET("/schedules/:ids", h.Schedules.Get)
	priv.POST("/schedules", h.Schedules.Create)
	priv.PUT("/schedules", h.Schedules.Update)
	priv.DELETE("/schedules/:ids", h.Schedules.Delete)

	priv.GET("/schedule-details/:ids", h.Details.Get)
	priv.POST("/schedule-details", h.Details.Create)
	priv.PUT("/schedule-details", h.Details.Update)
	priv.DELETE("/schedule-details/:ids", h.Details.Delete)

	priv.GET("/orders/:ids", h.Orders.Get)
	priv.POST("/orders", h.Orders.Create)
	priv.PUT("/orders", h.Orders.Update)
	priv.DELETE("/orders/:ids", h.Orders.Delete)

	priv.GET("/customers/:ids", h.Customers.Get)
	priv.PUT("/customers", h.Customers.Update)
	priv.DELETE("/customers/:ids", h.Customers.Delete)

	// reference lookups; mutation is admin-only
	priv.GET("/countries/:ids", h.Countries.Get)
	priv.GET("/cities/:ids", h.Cities.Get)

	admin := v1.Group("", middleware.RequireSession(), middleware.RequireAdmin())
	admin.POST("/countries", h.Countries.Create)
	admin.PUT("/countries", h.Countries.Update)
	admin.DELETE("/countries/:ids", h.Countries.Delete)
	admin.POST("/cities", h.Cities.Create)
	admin.PUT("/cities", h.Cities.Update)
	admin.DELETE("/cities/:ids", h.Cities.Delete)
}
