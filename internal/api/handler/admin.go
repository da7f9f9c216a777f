package handler

import (
	"net/http"

	"swarajdesk/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateAgent(c *gin.Context) {
	var in complaint.AgentInput
	if !h.bindJSON(c, &in) {
		return
	}
	agent, err := h.Complaints.CreateAgent(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Agent created successfully", agent)
}

// ListAgents serves GET /api/municipal-admin/agents, optionally narrowed
// by ?municipality=.
func (h *Handler) ListAgents(c *gin.Context) {
	agents, err := h.Complaints.ListAgents(c.Request.Context(), c.Query("municipality"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Agents retrieved successfully", agents)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Complaints.DeleteComplaint(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaint deleted successfully", gin.H{"id": c.Param("id")})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in complaint.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	cat, err := h.Complaints.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", cat)
}

// CreateAdmin serves POST /api/super-admin/admins for state and municipal
// admin accounts.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var in complaint.AdminInput
	if !h.bindJSON(c, &in) {
		return
	}
	admin, err := h.Complaints.CreateDepartmentAdmin(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Admin created successfully", admin)
}

// ListAdmins serves GET /api/super-admin/admins, optionally narrowed by
// ?accessLevel=.
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.Complaints.ListAdmins(c.Request.Context(), c.Query("accessLevel"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Admins retrieved successfully", admins)
}

func (h *Handler) AdminProfile(c *gin.Context) {
	admin, err := h.Complaints.Admin(c.Request.Context(), claimsFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", admin)
}
