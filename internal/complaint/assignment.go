package complaint

import (
	"context"

	"swarajdesk/backend/internal/metrics"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"
)

// Assignment is the outcome of AssignAgent.
type Assignment struct {
	Complaint *models.Complaint `json:"complaint"`
	Agent     *models.Agent     `json:"agent"`
}

// AssignAgent attaches the best eligible agent to an unassigned complaint.
//
// Candidates are tried in policy order (most recent login, then lightest
// workload, then id). Each slot is reserved with a conditional increment and
// the complaint is claimed with a conditional update, so two concurrent
// calls can never both succeed and no agent goes over its limit.
func (s *Service) AssignAgent(ctx context.Context, complaintID string, actor models.Actor) (*Assignment, error) {
	var (
		agent    *models.Agent
		previous models.ComplaintStatus
		result   string
	)

	err := s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		agent, result = nil, ""

		c, err := liveComplaint(ctx, tx, complaintID, true)
		if err != nil {
			return err
		}
		if c.IsAssigned() {
			result = metrics.ResultConflict
			return Conflict("complaint is already assigned to an agent")
		}
		if c.Status.IsTerminal() {
			result = metrics.ResultConflict
			return Conflict("complaint is %s and cannot be assigned", c.Status)
		}
		previous = c.Status

		candidates, err := tx.FindEligibleAgents(ctx, s.workloadCap)
		if err != nil {
			return Internal(err)
		}
		for i := range candidates {
			if !candidates[i].CanTakeWork(s.workloadCap) {
				continue
			}
			ok, err := tx.ReserveAgentSlot(ctx, candidates[i].ID, s.workloadCap)
			if err != nil {
				return Internal(err)
			}
			if ok {
				agent = &candidates[i]
				agent.CurrentWorkload++
				break
			}
		}
		if agent == nil {
			result = metrics.ResultNoAgent
			return NotFound("no available agent found")
		}

		claimed, err := tx.ClaimComplaint(ctx, c.ID, agent.ID)
		if err != nil {
			return Internal(err)
		}
		if !claimed {
			result = metrics.ResultConflict
			return Conflict("complaint is already assigned to an agent")
		}

		return s.record(ctx, tx, c.ID, models.ActionAssignment, c.Status, c.Status, actor,
			map[string]any{"agentId": agent.ID, "agentWorkload": agent.CurrentWorkload})
	})
	if err != nil {
		if result != "" {
			metrics.Assignments.WithLabelValues(result).Inc()
		}
		return nil, err
	}
	metrics.Assignments.WithLabelValues(metrics.ResultAssigned).Inc()

	c, err := s.Storage.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, fromStorage(err, "complaint")
	}

	s.log.Info().Str("complaint", complaintID).Str("agent", agent.ID).Msg("complaint assigned")
	s.publishStatus(ctx, c, previous)

	return &Assignment{Complaint: c, Agent: agent}, nil
}
