package complaint

import (
	"context"
	"math"
	"strings"

	"swarajdesk/backend/internal/metrics"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"
)

// StatusRequest is the body of a status change. Escalate wins over Status.
type StatusRequest struct {
	Status   models.ComplaintStatus `json:"status"`
	Escalate bool                   `json:"escalate"`
}

type StatusChange struct {
	Complaint *models.Complaint      `json:"complaint"`
	Previous  models.ComplaintStatus `json:"previousStatus"`
	Escalated bool                   `json:"escalated"`
}

// ResolveTargetStatus applies the escalate override and the allow-list.
func ResolveTargetStatus(status models.ComplaintStatus, escalate bool) (models.ComplaintStatus, error) {
	if escalate {
		return models.StatusEscalated, nil
	}
	if !status.IsTransitionTarget() {
		allowed := make([]string, len(models.TransitionStatuses))
		for i, st := range models.TransitionStatuses {
			allowed[i] = string(st)
		}
		return "", Validation("Invalid status. Valid statuses are: "+strings.Join(allowed, ", "),
			[]FieldError{{Field: "status", Message: "must be one of: " + strings.Join(allowed, ", ")}})
	}
	return status, nil
}

// UpdateStatus moves a complaint to a new status. COMPLETED and REJECTED are
// final. Completing an assigned complaint frees one slot of the agent's
// workload and refreshes the agent's resolution figures.
func (s *Service) UpdateStatus(ctx context.Context, id string, req StatusRequest, actor models.Actor) (*StatusChange, error) {
	target, err := ResolveTargetStatus(req.Status, req.Escalate)
	if err != nil {
		return nil, err
	}

	var previous models.ComplaintStatus
	err = s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		c, err := liveComplaint(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if c.Status.IsTerminal() {
			return Conflict("complaint is already %s", c.Status)
		}
		previous = c.Status

		now := s.clock()
		fields := map[string]any{"status": target}
		switch target {
		case models.StatusCompleted:
			fields["date_of_resolution"] = now
		case models.StatusEscalated:
			fields["escalated_at"] = now
		}
		if err := tx.UpdateComplaintFields(ctx, c.ID, fields); err != nil {
			return fromStorage(err, "complaint")
		}

		if target == models.StatusCompleted && c.IsAssigned() {
			if err := s.settleAgent(ctx, tx, *c.AssignedAgentID); err != nil {
				return err
			}
		}

		action := models.ActionStatusChange
		if target == models.StatusEscalated {
			action = models.ActionEscalation
		}
		return s.record(ctx, tx, c.ID, action, previous, target, actor, nil)
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusTransitions.WithLabelValues(string(target)).Inc()

	c, err := s.Storage.GetComplaint(ctx, id)
	if err != nil {
		return nil, fromStorage(err, "complaint")
	}

	s.log.Info().Str("complaint", id).Str("from", string(previous)).Str("to", string(target)).Msg("status changed")
	s.publishStatus(ctx, c, previous)

	return &StatusChange{Complaint: c, Previous: previous, Escalated: target == models.StatusEscalated}, nil
}

// settleAgent releases one workload slot and recomputes resolution figures.
func (s *Service) settleAgent(ctx context.Context, tx storage.Storage, agentID string) error {
	if err := tx.ReleaseAgentSlot(ctx, agentID); err != nil {
		return Internal(err)
	}
	stats, err := tx.AgentResolutionStats(ctx, agentID)
	if err != nil {
		return Internal(err)
	}
	var rate float64
	if stats.Assigned > 0 {
		rate = round2(float64(stats.Resolved) / float64(stats.Assigned) * 100)
	}
	return fromStorage(tx.UpdateAgentFields(ctx, agentID, map[string]any{
		"resolution_rate":     rate,
		"avg_resolution_time": round2(stats.AvgResolutionHours),
	}), "agent")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeleteComplaint soft-deletes a complaint. An open assignment gives its
// slot back to the agent.
func (s *Service) DeleteComplaint(ctx context.Context, id string, actor models.Actor) error {
	err := s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		c, err := liveComplaint(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := tx.UpdateComplaintFields(ctx, c.ID, map[string]any{"status": models.StatusDeleted}); err != nil {
			return fromStorage(err, "complaint")
		}
		if c.IsAssigned() && c.Status != models.StatusCompleted {
			if err := tx.ReleaseAgentSlot(ctx, *c.AssignedAgentID); err != nil {
				return Internal(err)
			}
		}
		return s.record(ctx, tx, c.ID, models.ActionDeletion, c.Status, models.StatusDeleted, actor, nil)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("complaint", id).Str("actor", actor.ID).Msg("complaint deleted")
	return nil
}

// History returns the audit trail of a complaint, oldest first. Deleted
// complaints keep their history.
func (s *Service) History(ctx context.Context, id string) ([]models.ComplaintEvent, error) {
	if _, err := s.Storage.GetComplaint(ctx, id); err != nil {
		return nil, fromStorage(err, "complaint")
	}
	events, err := s.Storage.ListEvents(ctx, id)
	if err != nil {
		return nil, Internal(err)
	}
	if events == nil {
		events = []models.ComplaintEvent{}
	}
	return events, nil
}

func (s *Service) publishStatus(ctx context.Context, c *models.Complaint, previous models.ComplaintStatus) {
	now := s.clock()
	s.notifier.PublishStatus(ctx, models.StatusUpdate{
		ComplaintID:     c.ID,
		Status:          c.Status,
		PreviousStatus:  previous,
		AssignedAgentID: c.AssignedAgentID,
		Timestamp:       now,
		ServerTime:      now,
	})
}
