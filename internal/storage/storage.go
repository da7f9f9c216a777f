package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Storage is the persistence contract of the complaint core.
//
// WithinTx runs fn in a transaction at serializable isolation where the
// dialect supports it (postgres, mysql, sqlserver); sqlite serializes
// writers with its database lock. LockComplaint and LockCategory take row
// locks and must only be called on the Storage passed to fn. Serialization
// failures are retried, so fn must not leak state between attempts.
type Storage interface {
	WithinTx(ctx context.Context, fn func(tx Storage) error) error
	Ping(ctx context.Context) error

	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	LockComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, int64, error)
	UpdateComplaintFields(ctx context.Context, id string, fields map[string]any) error
	ClaimComplaint(ctx context.Context, complaintID, agentID string) (bool, error)

	CreateAgent(ctx context.Context, a *models.Agent) error
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	ListAgents(ctx context.Context, municipality string) ([]models.Agent, error)
	UpdateAgentFields(ctx context.Context, id string, fields map[string]any) error
	FindEligibleAgents(ctx context.Context, workloadCap int) ([]models.Agent, error)
	ReserveAgentSlot(ctx context.Context, agentID string, workloadCap int) (bool, error)
	ReleaseAgentSlot(ctx context.Context, agentID string) error
	AgentResolutionStats(ctx context.Context, agentID string) (AgentStats, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	LockCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategoryVocabulary(ctx context.Context, c *models.Category) error

	FindUpvote(ctx context.Context, userID, complaintID string) (*models.Upvote, error)
	CreateUpvote(ctx context.Context, u *models.Upvote) error
	DeleteUpvote(ctx context.Context, id string) error
	CountUpvotes(ctx context.Context, complaintID string) (int64, error)
	SetUpvoteCount(ctx context.Context, complaintID string, count int) error
	UpvotedComplaintIDs(ctx context.Context, userID string, complaintIDs []string) (map[string]bool, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	ListAdmins(ctx context.Context, level models.AccessLevel) ([]models.Admin, error)

	AppendEvent(ctx context.Context, e *models.ComplaintEvent) error
	ListEvents(ctx context.Context, complaintID string) ([]models.ComplaintEvent, error)
}

// Service implements Storage on gorm. Redis is optional and only used for
// health checks here.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client

	txOpts *sql.TxOptions
	inTx   bool
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:     db,
		Redis:  rdb,
		txOpts: txOptionsFor(db.Dialector.Name()),
	}
}

func txOptionsFor(dialect string) *sql.TxOptions {
	switch dialect {
	case "postgres", "mysql", "sqlserver":
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	default:
		return nil
	}
}

// WithinTx implements Storage. Nested calls join the outer transaction.
func (s *Service) WithinTx(ctx context.Context, fn func(tx Storage) error) error {
	if s.inTx {
		return fn(s)
	}

	var opts []*sql.TxOptions
	if s.txOpts != nil {
		opts = append(opts, s.txOpts)
	}

	var err error
	for attempt := 1; attempt <= config.TxMaxAttempts; attempt++ {
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&Service{DB: tx, Redis: s.Redis, txOpts: s.txOpts, inTx: true})
		}, opts...)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", config.TxMaxAttempts, err)
}

// Ping checks the database and, when configured, Redis.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *Service) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

func (s *Service) dialect() string {
	return s.DB.Dialector.Name()
}
