// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/skybook/skybook-api/internal/handler"
	"github.com/skybook/skybook-api/internal/middleware"
	"github.com/skybook/skybook-api/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers and
// monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
}

// RegisterAuth wires the account endpoints.  Register, login, refresh
// and logout operate on credentials or refresh tokens and live outside
// the JWT middleware; /api/users/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/users")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	me := e.Group("/api/users")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}

// RegisterHotels wires the catalog.  Browsing is public and runs
// behind the response cache; create, update and delete require an
// authenticated ADMIN.
func RegisterHotels(e *echo.Echo, h *handler.HotelHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	pub := e.Group("/api/hotels")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("", h.List)
	pub.GET("/:id", h.Get)

	admin := e.Group("/api/hotels")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// RegisterBookings wires the booking endpoints.  Every route requires
// a valid access token; ownership checks happen in the engine.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/api/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
	g.POST("", b.Create)
	g.GET("/my-bookings", b.List)
	g.GET("/:id", b.Get)
	g.PUT("/:id/cancel", b.Cancel)
}
