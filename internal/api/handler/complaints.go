package handler

import (
	"net/http"

	"swarajdesk/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

// ListComplaints serves GET /api/complaints.
func (h *Handler) ListComplaints(c *gin.Context) {
	var f complaint.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	page, err := h.Complaints.List(c.Request.Context(), f, viewerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaints retrieved successfully", page)
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.Complaints.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", cats)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	view, err := h.Complaints.Get(c.Request.Context(), c.Param("id"), viewerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaint retrieved successfully", view)
}

// SubmitComplaint serves POST /api/complaints for the authenticated citizen.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	var in complaint.SubmitInput
	if !h.bindJSON(c, &in) {
		return
	}
	created, err := h.Complaints.Submit(c.Request.Context(), claimsFrom(c).ID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Complaint submitted successfully", created)
}

func (h *Handler) ListUserComplaints(c *gin.Context) {
	var f complaint.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	page, err := h.Complaints.ListForUser(c.Request.Context(), c.Param("userId"), f, viewerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Complaints retrieved successfully", page)
}

func (h *Handler) ToggleUpvote(c *gin.Context) {
	res, err := h.Complaints.ToggleUpvote(c.Request.Context(), c.Param("id"), claimsFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	msg := "Upvote added successfully"
	if res.Action == complaint.UpvoteRemoved {
		msg = "Upvote removed successfully"
	}
	respond(c, http.StatusOK, msg, res)
}

func (h *Handler) UpvoteStatus(c *gin.Context) {
	state, err := h.Complaints.UpvoteStatus(c.Request.Context(), c.Param("id"), claimsFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Upvote status retrieved successfully", state)
}
