package complaint

import (
	"context"
	"strings"
	"unicode/utf8"

	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"
)

// Viewer is whoever reads complaints. The zero value is anonymous.
type Viewer struct {
	ID   string
	Role models.AccessLevel
}

func (v Viewer) isStaff() bool {
	return v.Role == models.AccessAgent || v.Role.IsAdmin()
}

// ListFilter mirrors the query string of the list endpoints.
type ListFilter struct {
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
	Category        string `form:"category"`
	Status          string `form:"status"`
	Urgency         string `form:"urgency"`
	District        string `form:"district"`
	City            string `form:"city"`
	IsPublic        *bool  `form:"isPublic"`
	AssignedAgentID string `form:"assignedAgentId"`
	SortBy          string `form:"sortBy"`
	ForYou          bool   `form:"forYou"`
}

// ComplaintView is a complaint as returned to a particular viewer.
type ComplaintView struct {
	models.Complaint
	HasUpvoted bool `json:"hasUpvoted"`
}

type PageMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type Page struct {
	Items []ComplaintView `json:"complaints"`
	Meta  PageMeta        `json:"pagination"`
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = config.DefaultPageSize
	case limit > config.MaxPageSize:
		limit = config.MaxPageSize
	}
	return page, limit
}

func newPageMeta(page, limit int, total int64) PageMeta {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return PageMeta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// Preview shortens text to config.DescriptionPreviewLen runes plus "...".
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= config.DescriptionPreviewLen {
		return text
	}
	return string([]rune(text)[:config.DescriptionPreviewLen]) + "..."
}

// List returns one page of complaints. Anonymous and citizen viewers only
// ever see public complaints.
func (s *Service) List(ctx context.Context, f ListFilter, viewer Viewer) (*Page, error) {
	q, err := s.buildQuery(ctx, f, viewer)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, q, viewer)
}

func (s *Service) buildQuery(ctx context.Context, f ListFilter, viewer Viewer) (storage.ComplaintQuery, error) {
	page, limit := pageBounds(f.Page, f.Limit)
	q := storage.ComplaintQuery{
		Page:            page,
		Limit:           limit,
		CategoryName:    strings.TrimSpace(f.Category),
		District:        strings.TrimSpace(f.District),
		City:            strings.TrimSpace(f.City),
		IsPublic:        f.IsPublic,
		AssignedAgentID: strings.TrimSpace(f.AssignedAgentID),
	}

	if f.Status != "" {
		st := models.ComplaintStatus(strings.ToUpper(f.Status))
		if !st.IsTransitionTarget() {
			return q, Validation("invalid status filter", []FieldError{{Field: "status", Message: "unknown status"}})
		}
		q.Status = st
	}
	if f.Urgency != "" {
		u := models.Urgency(strings.ToUpper(f.Urgency))
		if !u.Valid() {
			return q, Validation("invalid urgency filter", []FieldError{{Field: "urgency", Message: "must be one of: LOW, MEDIUM, HIGH, CRITICAL"}})
		}
		q.Urgency = u
	}

	switch f.SortBy {
	case "", storage.SortRecent:
		q.SortBy = storage.SortRecent
	case storage.SortUpvotes, storage.SortUrgent:
		q.SortBy = f.SortBy
	default:
		return q, Validation("invalid sortBy", []FieldError{{Field: "sortBy", Message: "must be one of: recent, upvotes, urgent"}})
	}

	if !viewer.isStaff() {
		public := true
		q.IsPublic = &public
	}

	if f.ForYou && viewer.ID != "" && viewer.Role == models.AccessUser {
		user, err := s.Storage.GetUser(ctx, viewer.ID)
		if err != nil {
			return q, fromStorage(err, "user")
		}
		q.District, q.City = user.District, user.City
	}
	return q, nil
}

func (s *Service) page(ctx context.Context, q storage.ComplaintQuery, viewer Viewer) (*Page, error) {
	items, total, err := s.Storage.ListComplaints(ctx, q)
	if err != nil {
		return nil, Internal(err)
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	upvoted, err := s.Storage.UpvotedComplaintIDs(ctx, viewer.ID, ids)
	if err != nil {
		return nil, Internal(err)
	}

	views := make([]ComplaintView, len(items))
	for i, c := range items {
		c.Description = Preview(c.Description)
		if c.Category != nil {
			c.Category = &models.Category{
				ID:                 c.Category.ID,
				Name:               c.Category.Name,
				AssignedDepartment: c.Category.AssignedDepartment,
			}
		}
		views[i] = ComplaintView{Complaint: c, HasUpvoted: upvoted[c.ID]}
	}
	return &Page{Items: views, Meta: newPageMeta(q.Page, q.Limit, total)}, nil
}

// Get returns one complaint. Private complaints are visible to their
// complainant and to staff only.
func (s *Service) Get(ctx context.Context, id string, viewer Viewer) (*ComplaintView, error) {
	c, err := liveComplaint(ctx, s.Storage, id, false)
	if err != nil {
		return nil, err
	}
	if !c.IsPublic && c.ComplainantID != viewer.ID && !viewer.isStaff() {
		return nil, NotFound("complaint not found")
	}

	upvoted, err := s.Storage.UpvotedComplaintIDs(ctx, viewer.ID, []string{c.ID})
	if err != nil {
		return nil, Internal(err)
	}
	return &ComplaintView{Complaint: *c, HasUpvoted: upvoted[c.ID]}, nil
}

// ListForUser pages through the complaints filed by userID, private ones
// included. Only the user themself may call it.
func (s *Service) ListForUser(ctx context.Context, userID string, f ListFilter, viewer Viewer) (*Page, error) {
	if viewer.ID != userID {
		return nil, Forbidden("you can only view your own complaints")
	}
	page, limit := pageBounds(f.Page, f.Limit)
	return s.page(ctx, storage.ComplaintQuery{
		Page:          page,
		Limit:         limit,
		ComplainantID: userID,
		SortBy:        storage.SortRecent,
	}, viewer)
}

// ListForAgent lists complaints for staff. Agents see their own assignments
// unless an explicit assignedAgentId is given by an admin.
func (s *Service) ListForAgent(ctx context.Context, f ListFilter, viewer Viewer) (*Page, error) {
	if viewer.Role == models.AccessAgent {
		f.AssignedAgentID = viewer.ID
	}
	return s.List(ctx, f, viewer)
}

// Categories lists every category by name.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Storage.ListCategories(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

type CategoryInput struct {
	Name               string `json:"name" validate:"required,max=128"`
	AssignedDepartment string `json:"assignedDepartment" validate:"required,max=64"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.AssignedDepartment = strings.TrimSpace(in.AssignedDepartment)
	if err := s.check(in); err != nil {
		return nil, err
	}

	if _, err := s.Storage.GetCategoryByName(ctx, in.Name); err == nil {
		return nil, Conflict("category %q already exists", in.Name)
	}

	cat := &models.Category{
		Name:                 in.Name,
		AssignedDepartment:   in.AssignedDepartment,
		SubCategories:        models.StringSet{},
		LearnedSubCategories: models.StringSet{},
	}
	if err := s.Storage.CreateCategory(ctx, cat); err != nil {
		return nil, fromStorage(err, "category")
	}
	return cat, nil
}
