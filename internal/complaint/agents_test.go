package complaint_test

import (
	"context"
	"testing"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func agentInput() complaint.AgentInput {
	return complaint.AgentInput{
		Email:         "Ravi@Example.com",
		OfficialEmail: "ravi@ranchi.gov.in",
		EmployeeID:    "EMP-001",
		FullName:      "Ravi Kumar",
		Password:      "s3cret-pass",
		Department:    "INFRASTRUCTURE",
		Municipality:  "Ranchi",
	}
}

func TestCreateAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAgent(ctx, agentInput())
	require.NoError(t, err)

	assert.Equal(t, "ravi@example.com", a.Email)
	assert.Equal(t, models.AgentActive, a.Status)
	assert.Equal(t, models.AvailabilityAtWork, a.AvailabilityStatus)
	assert.Equal(t, models.AccessAgent, a.AccessLevel)
	assert.Equal(t, config.DefaultWorkloadLimit, a.WorkloadLimit)
	assert.Equal(t, 0, a.CurrentWorkload)
	assert.NotEqual(t, "s3cret-pass", a.PasswordHash)
	assert.True(t, passwordMatches(a.PasswordHash, "s3cret-pass"))
	assert.False(t, passwordMatches(a.PasswordHash, "wrong"))

	dup := agentInput()
	dup.OfficialEmail = "other@ranchi.gov.in"
	_, err = f.svc.CreateAgent(ctx, dup)
	assert.Equal(t, complaint.KindConflict, complaint.KindOf(err))

	bad := agentInput()
	bad.Email = "not-an-email"
	bad.Password = "short"
	_, err = f.svc.CreateAgent(ctx, bad)
	var derr *complaint.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, complaint.KindValidation, derr.Kind)
	assert.Len(t, derr.Details, 2)
}

func TestListAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.agent(t, "r@city.gov", nil)
	f.agent(t, "d@city.gov", func(a *models.Agent) { a.Municipality = "Dhanbad" })

	ranchi, err := f.svc.ListAgents(ctx, "Ranchi")
	require.NoError(t, err)
	assert.Len(t, ranchi, 1)

	all, err := f.svc.ListAgents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := f.svc.ListAgents(ctx, "Nowhere")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSetAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.agent(t, "a@city.gov", nil)

	got, err := f.svc.SetAvailability(ctx, a.ID, models.AvailabilityOnLeave)
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityOnLeave, got.AvailabilityStatus)

	_, err = f.svc.SetAvailability(ctx, a.ID, "Vacation")
	assert.Equal(t, complaint.KindValidation, complaint.KindOf(err))

	_, err = f.svc.SetAvailability(ctx, "missing", models.AvailabilityAtWork)
	assert.Equal(t, complaint.KindNotFound, complaint.KindOf(err))
}

func TestTouchLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.agent(t, "a@city.gov", nil)
	assert.Nil(t, a.LastLogin)

	got, err := f.svc.TouchLogin(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)

	again, err := f.svc.TouchLogin(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, again.LastLogin.After(*got.LastLogin))
}

func TestCreateAdminAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.CreateAdmin(ctx, complaint.AdminInput{
		Email: "boss@ranchi.gov.in", FullName: "Boss", Password: "password1",
		AccessLevel: models.AccessMunicipalAdmin, Municipality: "Ranchi",
	})
	require.NoError(t, err)
	stored, err := f.svc.Admin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessMunicipalAdmin, stored.AccessLevel)

	_, err = f.svc.CreateAdmin(ctx, complaint.AdminInput{
		Email: "x@ranchi.gov.in", FullName: "X", Password: "password1", AccessLevel: models.AccessAgent,
	})
	assert.Equal(t, complaint.KindValidation, complaint.KindOf(err))

	user, err := f.svc.CreateUser(ctx, complaint.UserInput{
		Email: "new@example.com", Name: "New", Password: "password1", District: "Ranchi", Pin: "834002",
	})
	require.NoError(t, err)
	assert.True(t, passwordMatches(user.PasswordHash, "password1"))

	_, err = f.svc.CreateUser(ctx, complaint.UserInput{Email: "citizen@example.com", Name: "Dup", Password: "password1"})
	assert.Equal(t, complaint.KindConflict, complaint.KindOf(err))
}

func TestDepartmentAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	municipalAdmin, err := f.svc.CreateDepartmentAdmin(ctx, complaint.AdminInput{
		Email: "Ward@Ranchi.gov.in", FullName: "Ward Admin", Password: "password1",
		AccessLevel: models.AccessMunicipalAdmin, Municipality: "Ranchi",
	})
	require.NoError(t, err)
	assert.Equal(t, "ward@ranchi.gov.in", municipalAdmin.Email)

	_, err = f.svc.CreateDepartmentAdmin(ctx, complaint.AdminInput{
		Email: "state@jharkhand.gov.in", FullName: "State Admin", Password: "password1",
		AccessLevel: models.AccessStateAdmin, State: "Jharkhand",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateDepartmentAdmin(ctx, complaint.AdminInput{
		Email: "root@gov.in", FullName: "Root", Password: "password1", AccessLevel: models.AccessSuperAdmin,
	})
	assert.Equal(t, complaint.KindValidation, complaint.KindOf(err))

	all, err := f.svc.ListAdmins(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	municipalOnly, err := f.svc.ListAdmins(ctx, "dept_municipal_admin")
	require.NoError(t, err)
	require.Len(t, municipalOnly, 1)
	assert.Equal(t, municipalAdmin.ID, municipalOnly[0].ID)

	_, err = f.svc.ListAdmins(ctx, "AGENT")
	assert.Equal(t, complaint.KindValidation, complaint.KindOf(err))

	_, err = f.svc.Admin(ctx, "missing")
	assert.Equal(t, complaint.KindNotFound, complaint.KindOf(err))
}
