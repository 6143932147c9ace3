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

// AgentHandler serves the organizer's agent management endpoints.
type AgentHandler struct {
	agentService *services.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agentService *services.AgentService) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
	}
}

type agentRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r agentRequest) input() services.AgentInput {
	return services.AgentInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// ListAgents returns the agents of the organizer's organization.
func (h *AgentHandler) ListAgents(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	agents, total, err := h.agentService.ListAgents(viewer, repository.Page{Offset: params.Offset, Limit: params.Limit})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAgentListResponse(agents, params.Response(total)))
}

// GetAgent returns a single agent.
func (h *AgentHandler) GetAgent(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	agent, err := h.agentService.GetAgent(viewer, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAgentDTO(*agent))
}

// CreateAgent invites a new agent. The response never carries a password.
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	agent, err := h.agentService.CreateAgent(c.Request.Context(), viewer, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAgentDTO(*agent))
}

// UpdateAgent edits an agent's user details.
func (h *AgentHandler) UpdateAgent(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	agent, err := h.agentService.UpdateAgent(viewer, id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAgentDTO(*agent))
}

// DeleteAgent removes an agent; their leads become unassigned.
func (h *AgentHandler) DeleteAgent(c *gin.Context) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.agentService.DeleteAgent(viewer, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Agent deleted successfully",
	})
}
