// Package router wires the HTTP handlers onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/middleware"
)

// Handlers groups the handlers served by the API.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Agent    *handlers.AgentHandler
	Lead     *handlers.LeadHandler
	Category *handlers.CategoryHandler
}

// Register mounts every route on r. Session middleware must already be installed.
func Register(r *gin.Engine, h Handlers, resolver middleware.ViewerResolver) {
	r.GET("/", handlers.Landing)
	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/password/setup", h.Auth.SetupPassword)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
		}

		authenticated := []gin.HandlerFunc{middleware.RequireAuth(), middleware.ResolveViewer(resolver)}
		organizerOnly := middleware.RequireOrganizer()

		// Agent routes (organizer)
		agents := api.Group("/agents")
		agents.Use(authenticated...)
		agents.Use(organizerOnly)
		{
			agents.GET("", h.Agent.ListAgents)
			agents.POST("", h.Agent.CreateAgent)
			agents.GET("/:id", h.Agent.GetAgent)
			agents.PUT("/:id", h.Agent.UpdateAgent)
			agents.DELETE("/:id", h.Agent.DeleteAgent)
		}

		// Lead routes (organizer or agent)
		leads := api.Group("/leads")
		leads.Use(authenticated...)
		{
			leads.GET("", h.Lead.ListLeads)
			leads.POST("", organizerOnly, h.Lead.CreateLead)
			leads.GET("/:id", h.Lead.GetLead)
			leads.PATCH("/:id", organizerOnly, h.Lead.UpdateLead)
			leads.DELETE("/:id", organizerOnly, h.Lead.DeleteLead)
			leads.PUT("/:id/category", h.Lead.UpdateLeadCategory)
			leads.POST("/:id/assign-agent", organizerOnly, h.Lead.AssignAgent)
		}

		// Category routes (organizer or agent)
		categories := api.Group("/categories")
		categories.Use(authenticated...)
		{
			categories.GET("", h.Category.ListCategories)
			categories.POST("", organizerOnly, h.Category.CreateCategory)
			categories.GET("/:id", h.Category.GetCategory)
			categories.PUT("/:id", organizerOnly, h.Category.UpdateCategory)
			categories.DELETE("/:id", organizerOnly, h.Category.DeleteCategory)
		}
	}
}
