package complaint

import (
	"context"
	"strings"

	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type AgentInput struct {
	Email         string `json:"email" validate:"required,email,max=255"`
	OfficialEmail string `json:"officialEmail" validate:"required,email,max=255"`
	EmployeeID    string `json:"employeeId" validate:"required,max=64"`
	FullName      string `json:"fullName" validate:"required,max=255"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber   string `json:"phoneNumber" validate:"max=32"`
	Department    string `json:"department" validate:"required,max=64"`
	Municipality  string `json:"municipality" validate:"required,max=128"`
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Internal(err)
	}
	return string(hash), nil
}

// CreateAgent registers a new agent: ACTIVE, at work, with the default
// workload limit.
func (s *Service) CreateAgent(ctx context.Context, in AgentInput) (*models.Agent, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.OfficialEmail = strings.ToLower(strings.TrimSpace(in.OfficialEmail))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.check(in); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	agent := &models.Agent{
		Email:              in.Email,
		OfficialEmail:      in.OfficialEmail,
		EmployeeID:         strings.TrimSpace(in.EmployeeID),
		FullName:           in.FullName,
		PasswordHash:       hash,
		PhoneNumber:        strings.TrimSpace(in.PhoneNumber),
		Department:         strings.TrimSpace(in.Department),
		Municipality:       strings.TrimSpace(in.Municipality),
		AccessLevel:        models.AccessAgent,
		Status:             models.AgentActive,
		WorkloadLimit:      config.DefaultWorkloadLimit,
		AvailabilityStatus: models.AvailabilityAtWork,
	}
	if err := s.Storage.CreateAgent(ctx, agent); err != nil {
		return nil, fromStorage(err, "agent with this email or official email")
	}
	s.log.Info().Str("agent", agent.ID).Str("municipality", agent.Municipality).Msg("agent created")
	return agent, nil
}

func (s *Service) ListAgents(ctx context.Context, municipality string) ([]models.Agent, error) {
	agents, err := s.Storage.ListAgents(ctx, strings.TrimSpace(municipality))
	if err != nil {
		return nil, Internal(err)
	}
	if agents == nil {
		agents = []models.Agent{}
	}
	return agents, nil
}

func (s *Service) Agent(ctx context.Context, id string) (*models.Agent, error) {
	agent, err := s.Storage.GetAgent(ctx, id)
	if err != nil {
		return nil, fromStorage(err, "agent")
	}
	return agent, nil
}

// SetAvailability lets an agent report whether they can take new work.
func (s *Service) SetAvailability(ctx context.Context, agentID string, status models.Availability) (*models.Agent, error) {
	if !status.Valid() {
		return nil, Validation("invalid availability status", []FieldError{{
			Field:   "availabilityStatus",
			Message: "must be one of: At Work, On Leave, Off Duty",
		}})
	}
	if _, err := s.Agent(ctx, agentID); err != nil {
		return nil, err
	}
	if err := s.Storage.UpdateAgentFields(ctx, agentID, map[string]any{"availability_status": status}); err != nil {
		return nil, fromStorage(err, "agent")
	}
	return s.Agent(ctx, agentID)
}

// TouchLogin stamps the agent's last login, which ranks agents for assignment.
func (s *Service) TouchLogin(ctx context.Context, agentID string) (*models.Agent, error) {
	if _, err := s.Agent(ctx, agentID); err != nil {
		return nil, err
	}
	if err := s.Storage.UpdateAgentFields(ctx, agentID, map[string]any{"last_login": s.clock()}); err != nil {
		return nil, fromStorage(err, "agent")
	}
	return s.Agent(ctx, agentID)
}

type AdminInput struct {
	Email        string             `json:"email" validate:"required,email,max=255"`
	FullName     string             `json:"fullName" validate:"required,max=255"`
	Password     string             `json:"password" validate:"required,min=8,max=72"`
	AccessLevel  models.AccessLevel `json:"accessLevel" validate:"required,oneof=DEPT_MUNICIPAL_ADMIN DEPT_STATE_ADMIN SUPER_ADMIN"`
	Municipality string             `json:"municipality" validate:"max=128"`
	State        string             `json:"state" validate:"max=128"`
}

func (s *Service) CreateAdmin(ctx context.Context, in AdminInput) (*models.Admin, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.check(in); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Email:        in.Email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		AccessLevel:  in.AccessLevel,
		Municipality: strings.TrimSpace(in.Municipality),
		State:        strings.TrimSpace(in.State),
	}
	if err := s.Storage.CreateAdmin(ctx, admin); err != nil {
		return nil, fromStorage(err, "admin")
	}
	return admin, nil
}

// CreateDepartmentAdmin is the HTTP path for admin accounts. Super admins
// can only be created from the operator CLI.
func (s *Service) CreateDepartmentAdmin(ctx context.Context, in AdminInput) (*models.Admin, error) {
	if in.AccessLevel == models.AccessSuperAdmin {
		return nil, Validation("invalid admin", []FieldError{{
			Field:   "accessLevel",
			Message: "must be one of: DEPT_MUNICIPAL_ADMIN, DEPT_STATE_ADMIN",
		}})
	}
	return s.CreateAdmin(ctx, in)
}

// ListAdmins lists admin accounts, optionally of a single tier.
func (s *Service) ListAdmins(ctx context.Context, level string) ([]models.Admin, error) {
	lvl := models.AccessLevel(strings.ToUpper(strings.TrimSpace(level)))
	if lvl != "" && !lvl.IsAdmin() {
		return nil, Validation("invalid access level filter", []FieldError{{
			Field:   "accessLevel",
			Message: "must be one of: DEPT_MUNICIPAL_ADMIN, DEPT_STATE_ADMIN, SUPER_ADMIN",
		}})
	}
	admins, err := s.Storage.ListAdmins(ctx, lvl)
	if err != nil {
		return nil, Internal(err)
	}
	if admins == nil {
		admins = []models.Admin{}
	}
	return admins, nil
}

func (s *Service) Admin(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.Storage.GetAdmin(ctx, id)
	if err != nil {
		return nil, fromStorage(err, "admin")
	}
	return admin, nil
}

type UserInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Name        string `json:"name" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
	District    string `json:"district" validate:"max=128"`
	City        string `json:"city" validate:"max=128"`
	Pin         string `json:"pin" validate:"omitempty,len=6,numeric"`
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.check(in); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		District:     strings.TrimSpace(in.District),
		City:         strings.TrimSpace(in.City),
		Pin:          strings.TrimSpace(in.Pin),
	}
	if err := s.Storage.CreateUser(ctx, user); err != nil {
		return nil, fromStorage(err, "user")
	}
	return user, nil
}

