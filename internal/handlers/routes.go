package handlers

import (
	"github.com/labstack/echo/v4"
)

// Routes bundles everything mounted under /api.
type Routes struct {
	Auth          *AuthHandlers
	Users         *UserHandlers
	Organizations *OrganizationHandlers
	Health        *HealthHandlers
	Session       echo.MiddlewareFunc
}

func RegisterRoutes(e *echo.Echo, r Routes) {
	api := e.Group("/api")

	api.GET("/health", r.Health.HealthCheck)
	api.GET("/health/ready", r.Health.ReadinessCheck)

	api.POST("/register", r.Auth.Register)
	api.GET("/activate/:token", r.Auth.Activate)
	api.POST("/login", r.Auth.Login)
	api.POST("/logout", r.Auth.Logout)
	api.GET("/me", r.Auth.Me, r.Session)

	users := api.Group("/users")
	users.GET("", r.Users.ListUsers)
	users.POST("", r.Users.CreateUser)
	users.GET("/:id", r.Users.GetUser)
	users.PATCH("/:id", r.Users.UpdateUser)
	users.DELETE("/:id", r.Users.DeleteUser)

	orgs := api.Group("/organizations")
	orgs.GET("", r.Organizations.ListOrganizations)
	orgs.POST("", r.Organizations.CreateOrganization)
	orgs.GET("/:id", r.Organizations.GetOrganization)
	orgs.PATCH("/:id", r.Organizations.UpdateOrganization)
	orgs.DELETE("/:id", r.Organizations.DeleteOrganization)
}
