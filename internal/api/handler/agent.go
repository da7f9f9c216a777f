package handler

import (
	"net/http"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type availabilityRequest struct {
	AvailabilityStatus models.Availability `json:"availabilityStatus"`
}

// AgentProfile serves GET /api/agent/me and stamps the agent's last login,
// which the assignment policy uses as its recency signal.
func (h *Handler) AgentProfile(c *gin.Context) {
	agent, err := h.Complaints.TouchLogin(c.Request.Context(), claimsFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Agent profile retrieved successfully", agent)
}

func (h *Handler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	agent, err := h.Complaints.SetAvailability(c.Request.Context(), claimsFrom(c).ID, req.AvailabilityStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Availability updated successfully", agent)
}

func (h *Handler) ListAgentComplaints(c *gin.Context) {
	var f complaint.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	page, err := h.Complaints.ListForAgent(c.Request.Context(), f, viewerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaints retrieved successfully", page)
}

// UpdateStatus serves PUT /api/agent/complaints/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req complaint.StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	change, err := h.Complaints.UpdateStatus(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	msg := "Complaint status updated successfully"
	if change.Escalated {
		msg = "Complaint escalated successfully"
	}
	respond(c, http.StatusOK, msg, change)
}

func (h *Handler) AssignComplaint(c *gin.Context) {
	res, err := h.Complaints.AssignAgent(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaint assigned successfully", res)
}

func (h *Handler) ComplaintHistory(c *gin.Context) {
	events, err := h.Complaints.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaint history retrieved successfully", events)
}
