package storage

import (
	"context"
	"errors"
	"strings"

	"swarajdesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplaintQuery filters and pages ListComplaints. Zero values mean "any".
// DELETED complaints are never returned.
type ComplaintQuery struct {
	Page            int
	Limit           int
	CategoryName    string
	Status          models.ComplaintStatus
	Urgency         models.Urgency
	District        string
	City            string
	IsPublic        *bool
	ComplainantID   string
	AssignedAgentID string
	SortBy          string
}

const (
	SortRecent  = "recent"
	SortUpvotes = "upvotes"
	SortUrgent  = "urgent"
)

// CreateComplaint assigns the next sequence number and inserts the complaint
// and its location. Call it inside WithinTx.
func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	db := s.db(ctx)

	seq, err := s.nextSeq(ctx, models.ComplaintSequence)
	if err != nil {
		return err
	}
	c.Seq = seq

	if err := db.Omit(clause.Associations).Create(c).Error; err != nil {
		return mapError(err)
	}
	if c.Location != nil {
		c.Location.ComplaintID = c.ID
		if err := db.Create(c.Location).Error; err != nil {
			return mapError(err)
		}
	}
	return nil
}

// nextSeq returns the next value of the named counter. Postgres draws from
// a native sequence, which never blocks and may leave gaps after a rollback.
// Elsewhere the increment locks a counter row until the transaction ends, so
// two submissions never read the same number. A missing counter row is
// seeded from the highest complaint seq already stored.
func (s *Service) nextSeq(ctx context.Context, name string) (int64, error) {
	db := s.db(ctx)
	if s.dialect() == "postgres" {
		var v int64
		err := db.Raw("SELECT nextval(?::regclass)", models.SequenceRelation(name)).Scan(&v).Error
		return v, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&models.Sequence{}).Where("name = ?", name).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			var row models.Sequence
			if err := db.Where("name = ?", name).First(&row).Error; err != nil {
				return 0, err
			}
			return row.Value, nil
		}

		var maxSeq int64
		if err := db.Model(&models.Complaint{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
			return 0, err
		}
		seed := &models.Sequence{Name: name, Value: maxSeq}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return 0, err
		}
	}
	return 0, errors.New("sequence " + name + " could not be seeded")
}

// GetComplaint loads a complaint with its location, category and agent.
func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.db(ctx).
		Preload("Location").
		Preload("Category").
		Preload("AssignedAgent").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// LockComplaint reads the complaint row with SELECT ... FOR UPDATE.
func (s *Service) LockComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.forUpdate(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *Service) forUpdate(ctx context.Context) *gorm.DB {
	db := s.db(ctx)
	// sqlserver has no FOR UPDATE; serializable isolation covers it there.
	if s.dialect() == "sqlserver" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ListComplaints returns one page of complaints and the total match count.
func (s *Service) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, int64, error) {
	base := s.db(ctx).Model(&models.Complaint{}).
		Where("complaints.status <> ?", models.StatusDeleted)

	if q.CategoryName != "" {
		base = base.Joins("JOIN categories ON categories.id = complaints.category_id").
			Where("LOWER(categories.name) = ?", strings.ToLower(q.CategoryName))
	}
	if q.District != "" || q.City != "" {
		base = base.Joins("JOIN complaint_locations ON complaint_locations.complaint_id = complaints.id")
		if q.District != "" {
			base = base.Where("LOWER(complaint_locations.district) = ?", strings.ToLower(q.District))
		}
		if q.City != "" {
			base = base.Where("LOWER(complaint_locations.city) = ?", strings.ToLower(q.City))
		}
	}
	if q.Status != "" {
		base = base.Where("complaints.status = ?", q.Status)
	}
	if q.Urgency != "" {
		base = base.Where("complaints.urgency = ?", q.Urgency)
	}
	if q.IsPublic != nil {
		base = base.Where("complaints.is_public = ?", *q.IsPublic)
	}
	if q.ComplainantID != "" {
		base = base.Where("complaints.complainant_id = ?", q.ComplainantID)
	}
	if q.AssignedAgentID != "" {
		base = base.Where("complaints.assigned_agent_id = ?", q.AssignedAgentID)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var items []models.Complaint
	err := base.
		Select("complaints.*").
		Preload("Location").
		Preload("Category").
		Order(orderFor(q.SortBy)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func orderFor(sortBy string) string {
	switch sortBy {
	case SortUpvotes:
		return "complaints.upvote_count DESC, complaints.submission_date DESC, complaints.seq DESC"
	case SortUrgent:
		return "CASE complaints.urgency WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC, " +
			"complaints.submission_date DESC, complaints.seq DESC"
	default:
		return "complaints.submission_date DESC, complaints.seq DESC"
	}
}

func (s *Service) UpdateComplaintFields(ctx context.Context, id string, fields map[string]any) error {
	res := s.db(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapError(res.Error)
	}
	return nil
}

// ClaimComplaint sets assigned_agent_id only if it is still NULL. It reports
// whether this call won the claim.
func (s *Service) ClaimComplaint(ctx context.Context, complaintID, agentID string) (bool, error) {
	res := s.db(ctx).Model(&models.Complaint{}).
		Where("id = ? AND assigned_agent_id IS NULL", complaintID).
		Update("assigned_agent_id", agentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
