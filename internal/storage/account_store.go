package storage

import (
	"context"

	"swarajdesk/backend/internal/models"
)

func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	return mapError(s.db(ctx).Create(u).Error)
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (s *Service) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return mapError(s.db(ctx).Create(a).Error)
}

func (s *Service) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	var a models.Admin
	if err := s.db(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

// ListAdmins returns admins newest first. An empty level lists every tier.
func (s *Service) ListAdmins(ctx context.Context, level models.AccessLevel) ([]models.Admin, error) {
	q := s.db(ctx).Model(&models.Admin{})
	if level != "" {
		q = q.Where("access_level = ?", level)
	}
	var admins []models.Admin
	if err := q.Order("created_at DESC").Order("id ASC").Find(&admins).Error; err != nil {
		return nil, mapError(err)
	}
	return admins, nil
}
