package storage

import (
	"context"
	"time"

	"swarajdesk/backend/internal/models"

	"gorm.io/gorm"
)

// AgentStats feeds the agent performance fields.
type AgentStats struct {
	Assigned           int64
	Resolved           int64
	AvgResolutionHours float64
}

func (s *Service) CreateAgent(ctx context.Context, a *models.Agent) error {
	return mapError(s.db(ctx).Create(a).Error)
}

func (s *Service) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	var a models.Agent
	if err := s.db(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

// ListAgents returns agents ordered by name. An empty municipality lists all.
func (s *Service) ListAgents(ctx context.Context, municipality string) ([]models.Agent, error) {
	q := s.db(ctx).Order("full_name ASC")
	if municipality != "" {
		q = q.Where("municipality = ?", municipality)
	}
	var agents []models.Agent
	if err := q.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *Service) UpdateAgentFields(ctx context.Context, id string, fields map[string]any) error {
	res := s.db(ctx).Model(&models.Agent{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapError(res.Error)
	}
	return nil
}

func (s *Service) eligibleAgents(ctx context.Context, workloadCap int) *gorm.DB {
	q := s.db(ctx).Model(&models.Agent{}).
		Where("status = ? AND availability_status = ? AND current_workload < workload_limit",
			models.AgentActive, models.AvailabilityAtWork)
	if workloadCap > 0 {
		q = q.Where("current_workload < ?", workloadCap)
	}
	return q
}

// FindEligibleAgents lists agents that may take a new complaint, most
// recently logged in first. Agents that never logged in come last.
func (s *Service) FindEligibleAgents(ctx context.Context, workloadCap int) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.eligibleAgents(ctx, workloadCap).
		Order("CASE WHEN last_login IS NULL THEN 1 ELSE 0 END").
		Order("last_login DESC").
		Order("current_workload ASC").
		Order("id ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// ReserveAgentSlot increments the agent's workload if the agent is still
// eligible. It reports whether the slot was taken.
func (s *Service) ReserveAgentSlot(ctx context.Context, agentID string, workloadCap int) (bool, error) {
	res := s.eligibleAgents(ctx, workloadCap).
		Where("id = ?", agentID).
		Update("current_workload", gorm.Expr("current_workload + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseAgentSlot decrements the agent's workload, never below zero.
func (s *Service) ReleaseAgentSlot(ctx context.Context, agentID string) error {
	return s.db(ctx).Model(&models.Agent{}).
		Where("id = ? AND current_workload > 0", agentID).
		Update("current_workload", gorm.Expr("current_workload - 1")).Error
}

// AgentResolutionStats counts the agent's live assignments and averages the
// time to resolution of the completed ones.
func (s *Service) AgentResolutionStats(ctx context.Context, agentID string) (AgentStats, error) {
	var stats AgentStats

	err := s.db(ctx).Model(&models.Complaint{}).
		Where("assigned_agent_id = ? AND status <> ?", agentID, models.StatusDeleted).
		Count(&stats.Assigned).Error
	if err != nil {
		return stats, err
	}

	var resolved []models.Complaint
	err = s.db(ctx).
		Select("submission_date", "date_of_resolution").
		Where("assigned_agent_id = ? AND status = ? AND date_of_resolution IS NOT NULL", agentID, models.StatusCompleted).
		Find(&resolved).Error
	if err != nil {
		return stats, err
	}

	var total time.Duration
	for _, c := range resolved {
		total += c.DateOfResolution.Sub(c.SubmissionDate)
	}
	stats.Resolved = int64(len(resolved))
	if stats.Resolved > 0 {
		stats.AvgResolutionHours = total.Hours() / float64(stats.Resolved)
	}
	return stats, nil
}
