package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"
)

type LocationInput struct {
	Pin       string   `json:"pin" validate:"required,len=6,numeric"`
	District  string   `json:"district" validate:"required,max=128"`
	City      string   `json:"city" validate:"required,max=128"`
	Locality  string   `json:"locality" validate:"max=255"`
	Street    string   `json:"street" validate:"max=255"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// SubmitInput is a new complaint as filed by a citizen. Urgency defaults to
// MEDIUM and visibility to public.
type SubmitInput struct {
	CategoryName  string         `json:"categoryName" validate:"required,max=128"`
	SubCategory   string         `json:"subCategory" validate:"required,max=255"`
	Description   string         `json:"description" validate:"required,min=10,max=5000"`
	Urgency       models.Urgency `json:"urgency" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	IsPublic      *bool          `json:"isPublic"`
	AttachmentURL *string        `json:"attachmentUrl" validate:"omitempty,url"`
	Location      LocationInput  `json:"location"`
}

func (in *SubmitInput) trim() {
	for _, f := range []*string{
		&in.CategoryName, &in.SubCategory, &in.Description,
		&in.Location.Pin, &in.Location.District, &in.Location.City,
		&in.Location.Locality, &in.Location.Street,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Urgency = models.Urgency(strings.ToUpper(strings.TrimSpace(string(in.Urgency))))
	if in.AttachmentURL != nil && strings.TrimSpace(*in.AttachmentURL) == "" {
		in.AttachmentURL = nil
	}
}

// Submit files a complaint for userID.
//
// The sub-category is standardized before the transaction opens so a slow
// normalizer never holds row locks. Inside the transaction the category row
// is locked, the complaint gets the next sequence number, and the raw and
// standardized sub-categories are merged into the category's vocabularies.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*models.Complaint, error) {
	in.trim()
	if err := s.check(in); err != nil {
		return nil, err
	}

	if _, err := s.Storage.GetUser(ctx, userID); err != nil {
		return nil, fromStorage(err, "user")
	}

	category, err := s.Storage.GetCategoryByName(ctx, in.CategoryName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.unknownCategory(ctx, in.CategoryName)
	}
	if err != nil {
		return nil, Internal(err)
	}

	standardized := s.normalizer.Standardize(ctx, in.SubCategory)

	urgency := in.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	c := &models.Complaint{
		ComplainantID:           userID,
		CategoryID:              category.ID,
		SubCategory:             in.SubCategory,
		StandardizedSubCategory: standardized,
		Description:             in.Description,
		Urgency:                 urgency,
		Status:                  models.StatusRegistered,
		AssignedDepartment:      category.AssignedDepartment,
		IsPublic:                isPublic,
		AttachmentURL:           in.AttachmentURL,
		SubmissionDate:          s.clock(),
		Location: &models.Location{
			Pin:       in.Location.Pin,
			District:  in.Location.District,
			City:      in.Location.City,
			Locality:  in.Location.Locality,
			Street:    in.Location.Street,
			Latitude:  in.Location.Latitude,
			Longitude: in.Location.Longitude,
		},
	}

	err = s.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		locked, err := tx.LockCategory(ctx, category.ID)
		if err != nil {
			return fromStorage(err, "category")
		}
		if err := tx.CreateComplaint(ctx, c); err != nil {
			return fromStorage(err, "complaint")
		}
		if locked.Learn(in.SubCategory, standardized) {
			if err := tx.SaveCategoryVocabulary(ctx, locked); err != nil {
				return Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("complaint", c.ID).
		Int64("seq", c.Seq).
		Str("category", category.Name).
		Str("sub_category", standardized).
		Msg("complaint submitted")

	created, err := s.Storage.GetComplaint(ctx, c.ID)
	if err != nil {
		return nil, fromStorage(err, "complaint")
	}
	return created, nil
}

func (s *Service) unknownCategory(ctx context.Context, name string) error {
	cats, err := s.Storage.ListCategories(ctx)
	if err != nil {
		return Internal(err)
	}
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = cat.Name
	}
	return Validation(
		fmt.Sprintf("Category '%s' not found. Please check the category name and try again.", name),
		map[string]any{"availableCategories": names},
	)
}
