package storage

import (
	"context"

	"swarajdesk/backend/internal/models"
)

func (s *Service) FindUpvote(ctx context.Context, userID, complaintID string) (*models.Upvote, error) {
	var u models.Upvote
	err := s.db(ctx).Where("user_id = ? AND complaint_id = ?", userID, complaintID).First(&u).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (s *Service) CreateUpvote(ctx context.Context, u *models.Upvote) error {
	return mapError(s.db(ctx).Create(u).Error)
}

func (s *Service) DeleteUpvote(ctx context.Context, id string) error {
	return s.db(ctx).Where("id = ?", id).Delete(&models.Upvote{}).Error
}

func (s *Service) CountUpvotes(ctx context.Context, complaintID string) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.Upvote{}).Where("complaint_id = ?", complaintID).Count(&n).Error
	return n, err
}

func (s *Service) SetUpvoteCount(ctx context.Context, complaintID string, count int) error {
	res := s.db(ctx).Model(&models.Complaint{}).Where("id = ?", complaintID).Update("upvote_count", count)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// UpvotedComplaintIDs reports which of complaintIDs userID has upvoted.
func (s *Service) UpvotedComplaintIDs(ctx context.Context, userID string, complaintIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(complaintIDs))
	if userID == "" || len(complaintIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := s.db(ctx).Model(&models.Upvote{}).
		Where("user_id = ? AND complaint_id IN ?", userID, complaintIDs).
		Pluck("complaint_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
