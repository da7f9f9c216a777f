package handler

import (
	"swarajdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every endpoint onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log), Metrics(), CORS(h.origins))

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")

	user := h.RequireAuth(models.AccessUser)
	complaints := api.Group("/complaints")
	{
		complaints.GET("", h.OptionalAuth(), h.ListComplaints)
		complaints.GET("/categories", h.ListCategories)
		complaints.GET("/:id", h.OptionalAuth(), h.GetComplaint)
		complaints.POST("", user, h.SubmitComplaint)
		complaints.GET("/user/:userId", user, h.ListUserComplaints)
		complaints.POST("/:id/upvote", user, h.ToggleUpvote)
		complaints.GET("/:id/upvotes", user, h.UpvoteStatus)
	}

	staff := h.RequireAuth(models.AccessAgent, models.AccessMunicipalAdmin)
	agent := api.Group("/agent")
	{
		me := agent.Group("/me", h.RequireAuth(models.AccessAgent))
		me.GET("", h.AgentProfile)
		me.PATCH("/availability", h.SetAvailability)

		agent.GET("/complaints", staff, h.ListAgentComplaints)
		agent.GET("/complaints/:id", staff, h.GetComplaint)
		agent.PUT("/complaints/:id/status", staff, h.UpdateStatus)
		agent.POST("/complaints/:id/assign", staff, h.AssignComplaint)
		agent.GET("/complaints/:id/history",
			h.RequireAuth(models.AccessAgent, models.AccessMunicipalAdmin, models.AccessStateAdmin, models.AccessSuperAdmin),
			h.ComplaintHistory)
	}

	municipal := api.Group("/municipal-admin", h.RequireAuth(models.AccessMunicipalAdmin))
	{
		municipal.POST("/agents", h.CreateAgent)
		municipal.GET("/agents", h.ListAgents)
		municipal.GET("/complaints", h.ListComplaints)
		municipal.DELETE("/complaints/:id", h.DeleteComplaint)
	}

	super := api.Group("/super-admin", h.RequireAuth(models.AccessSuperAdmin))
	{
		super.GET("/me", h.AdminProfile)
		super.POST("/admins", h.CreateAdmin)
		super.GET("/admins", h.ListAdmins)
		super.POST("/categories", h.CreateCategory)
	}

	return r
}
