package storage

import (
	"context"

	"swarajdesk/backend/internal/models"
)

func (s *Service) AppendEvent(ctx context.Context, e *models.ComplaintEvent) error {
	return s.db(ctx).Create(e).Error
}

// ListEvents returns the complaint's history, oldest first.
func (s *Service) ListEvents(ctx context.Context, complaintID string) ([]models.ComplaintEvent, error) {
	var events []models.ComplaintEvent
	err := s.db(ctx).
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
