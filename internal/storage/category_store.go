package storage

import (
	"context"
	"strings"

	"swarajdesk/backend/internal/models"
)

func (s *Service) CreateCategory(ctx context.Context, c *models.Category) error {
	return mapError(s.db(ctx).Create(c).Error)
}

// GetCategoryByName matches the name case-insensitively.
func (s *Service) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := s.db(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&c).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *Service) LockCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := s.forUpdate(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// SaveCategoryVocabulary writes both sub-category sets of c.
func (s *Service) SaveCategoryVocabulary(ctx context.Context, c *models.Category) error {
	return s.UpdateCategoryFields(ctx, c.ID, map[string]any{
		"sub_categories":         c.SubCategories,
		"learned_sub_categories": c.LearnedSubCategories,
	})
}

func (s *Service) UpdateCategoryFields(ctx context.Context, id string, fields map[string]any) error {
	res := s.db(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapError(res.Error)
	}
	return nil
}
