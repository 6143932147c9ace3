package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/utils"
)

// AgentDTO represents an agent in API responses
type AgentDTO struct {
	ID             uint64    `json:"id"`
	OrganizationID uint64    `json:"organization_id"`
	User           UserDTO   `json:"user"`
	CreatedAt      time.Time `json:"created_at"`
}

// AgentListResponse represents a paginated list of agents
type AgentListResponse struct {
	Agents     []AgentDTO               `json:"agents"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToAgentDTO converts an Agent model to AgentDTO
func ToAgentDTO(agent models.Agent) AgentDTO {
	return AgentDTO{
		ID:             agent.ID,
		OrganizationID: agent.OrganizationID,
		User:           ToUserDTO(agent.User),
		CreatedAt:      agent.CreatedAt,
	}
}

// ToAgentListResponse converts agents to AgentListResponse
func ToAgentListResponse(agents []models.Agent, pagination utils.PaginationResponse) AgentListResponse {
	items := make([]AgentDTO, len(agents))
	for i, agent := range agents {
		items[i] = ToAgentDTO(agent)
	}
	return AgentListResponse{Agents: items, Pagination: pagination}
}
