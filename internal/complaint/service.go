// Package complaint holds the complaint lifecycle: intake, agent assignment,
// status transitions, upvotes and the staff accounts that act on them.
package complaint

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Normalizer maps a free-text sub-category to its canonical form. It must
// return the input unchanged when it cannot do better.
type Normalizer interface {
	Standardize(ctx context.Context, raw string) string
}

// Notifier pushes committed changes to live viewers. Implementations must
// not block.
type Notifier interface {
	PublishUpvote(ctx context.Context, u models.UpvoteUpdate)
	PublishStatus(ctx context.Context, u models.StatusUpdate)
}

type passthrough struct{}

func (passthrough) Standardize(_ context.Context, raw string) string { return raw }

type silent struct{}

func (silent) PublishUpvote(context.Context, models.UpvoteUpdate) {}
func (silent) PublishStatus(context.Context, models.StatusUpdate) {}

// Service handles the business logic for complaints.
type Service struct {
	Storage storage.Storage

	normalizer  Normalizer
	notifier    Notifier
	validate    *validator.Validate
	workloadCap int
	now         func() time.Time
	log         zerolog.Logger
}

type Option func(*Service)

func WithNormalizer(n Normalizer) Option { return func(s *Service) { s.normalizer = n } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithWorkloadCap sets the global per-agent ceiling. Zero disables it.
func WithWorkloadCap(limit int) Option { return func(s *Service) { s.workloadCap = limit } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("component", "complaints").Logger() }
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, opts ...Option) *Service {
	svc := &Service{
		Storage:     s,
		normalizer:  passthrough{},
		notifier:    silent{},
		validate:    newValidator(),
		workloadCap: config.DefaultWorkloadLimit,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *Service) check(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return fromValidator(err)
	}
	return nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// record appends an audit event inside tx.
func (s *Service) record(ctx context.Context, tx storage.Storage, complaintID string, action models.EventAction,
	from, to models.ComplaintStatus, actor models.Actor, details map[string]any) error {
	event := &models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		CreatedAt:   s.clock(),
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return Internal(err)
		}
		event.Details = datatypes.JSON(raw)
	}
	if err := tx.AppendEvent(ctx, event); err != nil {
		return Internal(err)
	}
	return nil
}

// liveComplaint reads a complaint and hides soft-deleted ones.
func liveComplaint(ctx context.Context, st storage.Storage, id string, lock bool) (*models.Complaint, error) {
	var (
		c   *models.Complaint
		err error
	)
	if lock {
		c, err = st.LockComplaint(ctx, id)
	} else {
		c, err = st.GetComplaint(ctx, id)
	}
	if err != nil {
		return nil, fromStorage(err, "complaint")
	}
	if c.Status == models.StatusDeleted {
		return nil, NotFound("complaint not found")
	}
	return c, nil
}
