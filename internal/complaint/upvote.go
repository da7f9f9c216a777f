package complaint

import (
	"context"
	"errors"

	"swarajdesk/backend/internal/metrics"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"
)

const (
	UpvoteAdded   = "added"
	UpvoteRemoved = "removed"
)

type UpvoteResult struct {
	Action      string `json:"action"`
	UpvoteCount int    `json:"upvoteCount"`
	HasUpvoted  bool   `json:"hasUpvoted"`
}

type UpvoteState struct {
	HasUpvoted  bool `json:"hasUpvoted"`
	UpvoteCount int  `json:"upvoteCount"`
}

// ToggleUpvote adds the user's upvote or takes it back. The stored count is
// recomputed from the upvote rows in the same transaction, so it cannot
// drift from them.
func (s *Service) ToggleUpvote(ctx context.Context, complaintID, userID string) (*UpvoteResult, error) {
	var result UpvoteResult

	err := s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		result = UpvoteResult{}

		c, err := liveComplaint(ctx, tx, complaintID, true)
		if err != nil {
			return err
		}
		if !c.IsPublic {
			return Forbidden("cannot upvote a private complaint")
		}
		if c.ComplainantID == userID {
			return Forbidden("cannot upvote your own complaint")
		}

		existing, err := tx.FindUpvote(ctx, userID, complaintID)
		switch {
		case err == nil:
			if err := tx.DeleteUpvote(ctx, existing.ID); err != nil {
				return Internal(err)
			}
			result.Action, result.HasUpvoted = UpvoteRemoved, false
		case errors.Is(err, storage.ErrNotFound):
			if err := tx.CreateUpvote(ctx, &models.Upvote{UserID: userID, ComplaintID: complaintID}); err != nil {
				return fromStorage(err, "upvote")
			}
			result.Action, result.HasUpvoted = UpvoteAdded, true
		default:
			return Internal(err)
		}

		count, err := tx.CountUpvotes(ctx, complaintID)
		if err != nil {
			return Internal(err)
		}
		result.UpvoteCount = int(count)
		return fromStorage(tx.SetUpvoteCount(ctx, complaintID, result.UpvoteCount), "complaint")
	})
	if err != nil {
		return nil, err
	}
	metrics.UpvoteToggles.WithLabelValues(result.Action).Inc()

	now := s.clock()
	s.notifier.PublishUpvote(ctx, models.UpvoteUpdate{
		ComplaintID: complaintID,
		UpvoteCount: result.UpvoteCount,
		HasUpvoted:  result.HasUpvoted,
		UserID:      userID,
		Timestamp:   now,
		ServerTime:  now,
	})
	return &result, nil
}

// UpvoteStatus reports whether userID has upvoted the complaint. Someone
// else's private complaint reads as not found, as it does in Get.
func (s *Service) UpvoteStatus(ctx context.Context, complaintID, userID string) (*UpvoteState, error) {
	c, err := liveComplaint(ctx, s.Storage, complaintID, false)
	if err != nil {
		return nil, err
	}
	if !c.IsPublic && c.ComplainantID != userID {
		return nil, NotFound("complaint not found")
	}
	state := &UpvoteState{UpvoteCount: c.UpvoteCount}
	switch _, err := s.Storage.FindUpvote(ctx, userID, complaintID); {
	case err == nil:
		state.HasUpvoted = true
	case !errors.Is(err, storage.ErrNotFound):
		return nil, Internal(err)
	}
	return state, nil
}

// RecountUpvotes rewrites the stored count from the upvote rows. It repairs
// counts written before the toggle kept them in step.
func (s *Service) RecountUpvotes(ctx context.Context, complaintID string) (int, error) {
	var count int64
	err := s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.LockComplaint(ctx, complaintID); err != nil {
			return fromStorage(err, "complaint")
		}
		var err error
		if count, err = tx.CountUpvotes(ctx, complaintID); err != nil {
			return Internal(err)
		}
		return fromStorage(tx.SetUpvoteCount(ctx, complaintID, int(count)), "complaint")
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
