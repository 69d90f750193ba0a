package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardshare/internal/auth"
	"github.com/octobees/cardshare/internal/config"
	"github.com/octobees/cardshare/internal/handler"
	"github.com/octobees/cardshare/internal/metrics"
	middlewarepkg "github.com/octobees/cardshare/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Scan    *handler.ScanHandler
	Notify  *handler.NotifyHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, m *metrics.Metrics, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/templates", handlers.Profile.Templates)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	readers := secured.Group("", middlewarepkg.RequireRole(auth.RoleOwner, auth.RoleViewer))
	readers.GET("/profile", handlers.Profile.Get)
	readers.GET("/profile/vcard", handlers.Profile.VCard)
	readers.GET("/profile/share", handlers.Profile.Share)

	owner := secured.Group("", middlewarepkg.RequireRole(auth.RoleOwner))
	owner.PUT("/profile", handlers.Profile.Put)
	owner.PATCH("/profile/metadata", handlers.Profile.PatchMetadata)
	owner.POST("/profile/images/:slot", handlers.Profile.UploadImage)
	owner.DELETE("/profile/images/:slot", handlers.Profile.DeleteImage)
	owner.POST("/profile/scan-merge", handlers.Profile.ScanMerge)
	owner.POST("/scan", handlers.Scan.Scan, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan, "/scan"))

	if handlers.Notify != nil {
		owner.POST("/notifications/contact", handlers.Notify.Contact)
	}
}
