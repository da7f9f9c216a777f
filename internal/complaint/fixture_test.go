package complaint_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/database/dbtest"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func newMockNotifier() *MockNotifier {
	n := new(MockNotifier)
	n.On("PublishUpvote", mock.Anything, mock.Anything).Return().Maybe()
	n.On("PublishStatus", mock.Anything, mock.Anything).Return().Maybe()
	return n
}

func (m *MockNotifier) PublishUpvote(ctx context.Context, u models.UpvoteUpdate) {
	m.Called(ctx, u)
}

func (m *MockNotifier) PublishStatus(ctx context.Context, u models.StatusUpdate) {
	m.Called(ctx, u)
}

func (m *MockNotifier) statusUpdates() []models.StatusUpdate {
	var out []models.StatusUpdate
	for _, call := range m.Calls {
		if call.Method == "PublishStatus" {
			out = append(out, call.Arguments.Get(1).(models.StatusUpdate))
		}
	}
	return out
}

func (m *MockNotifier) upvoteUpdates() []models.UpvoteUpdate {
	var out []models.UpvoteUpdate
	for _, call := range m.Calls {
		if call.Method == "PublishUpvote" {
			out = append(out, call.Arguments.Get(1).(models.UpvoteUpdate))
		}
	}
	return out
}

// fakeNormalizer title-cases known phrases and passes everything else through.
type fakeNormalizer map[string]string

func (f fakeNormalizer) Standardize(_ context.Context, raw string) string {
	if std, ok := f[raw]; ok {
		return std
	}
	return raw
}

// steppingClock advances one minute per reading.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	svc      *complaint.Service
	store    *storage.Service
	notifier *MockNotifier
	citizen  *models.User
	other    *models.User
	category *models.Category
}

func newFixture(t *testing.T, opts ...complaint.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	store := storage.NewStorageService(dbtest.New(t), nil)
	notifier := newMockNotifier()
	clock := &steppingClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}

	base := []complaint.Option{
		complaint.WithNotifier(notifier),
		complaint.WithNormalizer(fakeNormalizer{"pot hole": "Pothole"}),
		complaint.WithClock(clock.Now),
	}
	svc := complaint.NewService(store, append(base, opts...)...)

	citizen := &models.User{Email: "citizen@example.com", Name: "Citizen", District: "Ranchi", City: "Ranchi"}
	require.NoError(t, store.CreateUser(ctx, citizen))
	other := &models.User{Email: "neighbour@example.com", Name: "Neighbour", District: "Dhanbad", City: "Dhanbad"}
	require.NoError(t, store.CreateUser(ctx, other))

	cat := &models.Category{Name: "Infrastructure", AssignedDepartment: "INFRASTRUCTURE"}
	require.NoError(t, store.CreateCategory(ctx, cat))

	return &fixture{svc: svc, store: store, notifier: notifier, citizen: citizen, other: other, category: cat}
}

func validInput() complaint.SubmitInput {
	return complaint.SubmitInput{
		CategoryName: "infrastructure",
		SubCategory:  "pot hole",
		Description:  "Large pothole in front of the market gate",
		Urgency:      models.UrgencyHigh,
		Location: complaint.LocationInput{
			Pin:      "834001",
			District: "Ranchi",
			City:     "Ranchi",
			Locality: "Main Road",
		},
	}
}

func (f *fixture) submit(t *testing.T, mutate func(in *complaint.SubmitInput)) *models.Complaint {
	t.Helper()
	in := validInput()
	if mutate != nil {
		mutate(&in)
	}
	c, err := f.svc.Submit(context.Background(), f.citizen.ID, in)
	require.NoError(t, err)
	return c
}

func (f *fixture) agent(t *testing.T, email string, mutate func(a *models.Agent)) *models.Agent {
	t.Helper()
	a := &models.Agent{
		Email:         email,
		OfficialEmail: "official." + email,
		EmployeeID:    email,
		FullName:      email,
		PasswordHash:  "x",
		Municipality:  "Ranchi",
		WorkloadLimit: 10,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, f.store.CreateAgent(context.Background(), a))
	return a
}

func (f *fixture) reloadAgent(t *testing.T, id string) *models.Agent {
	t.Helper()
	a, err := f.store.GetAgent(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) reloadComplaint(t *testing.T, id string) *models.Complaint {
	t.Helper()
	c, err := f.store.GetComplaint(context.Background(), id)
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

var (
	system     = models.Actor{}
	municipal  = models.Actor{ID: "admin-1", Role: models.AccessMunicipalAdmin}
	anonymous  = complaint.Viewer{}
	staffAdmin = complaint.Viewer{ID: "admin-1", Role: models.AccessMunicipalAdmin}
)
