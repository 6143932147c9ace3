package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
	"github.com/yukikurage/crm-api/internal/utils"
)

// LeadHandler serves lead endpoints for organizers and agents.
type LeadHandler struct {
	leadService *services.LeadService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// ListLeads returns the leads visible to the caller.
// Organizers additionally get the unassigned leads of their organization.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	list, err := h.leadService.ListLeads(viewer, repository.Page{Offset: params.Offset, Limit: params.Limit})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeadListResponse(list.Leads, list.Unassigned, params.Response(list.Total)))
}

// GetLead returns a lead visible to the caller.
func (h *LeadHandler) GetLead(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(viewer, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeadDTO(*lead))
}

// CreateLead creates a lead in the organizer's organization.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req services.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), viewer, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLeadDTO(*lead))
}

// UpdateLead applies a partial update to a lead.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.UpdateLead(viewer, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeadDTO(*lead))
}

// DeleteLead deletes a lead.
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(viewer, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lead deleted successfully",
	})
}

// AssignAgent assigns a lead to an agent of the same organization.
func (h *LeadHandler) AssignAgent(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AssignAgentRequest struct {
		AgentID uint64 `json:"agent_id" binding:"required"`
	}

	var req AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "agent_id is required")
		return
	}

	lead, err := h.leadService.AssignAgent(c.Request.Context(), viewer, id, req.AgentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeadDTO(*lead))
}

// UpdateLeadCategory sets or clears a lead's category. A null category_id clears it.
func (h *LeadHandler) UpdateLeadCategory(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateCategoryRequest struct {
		CategoryID *uint64 `json:"category_id"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	lead, err := h.leadService.UpdateLeadCategory(viewer, id, req.CategoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeadDTO(*lead))
}
