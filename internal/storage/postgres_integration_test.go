package storage_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/database"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *storage.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "complaints",
				"POSTGRES_PASSWORD": "complaints",
				"POSTGRES_DB":       "complaints",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:       "production",
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBUser:            "complaints",
		DBPassword:        "complaints",
		DBName:            "complaints",
		DBConnectionLimit: 10,
	}
	db, err := database.Connect(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	return storage.NewStorageService(db, nil)
}

func TestPostgres_ConcurrentWorkflows(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()
	svc := complaint.NewService(store, complaint.WithLogger(zerolog.Nop()))

	citizen := &models.User{Email: "citizen@example.com", Name: "Citizen", District: "Ranchi", City: "Ranchi"}
	require.NoError(t, store.CreateUser(ctx, citizen))
	_, err := svc.CreateCategory(ctx, complaint.CategoryInput{Name: "Infrastructure", AssignedDepartment: "INFRASTRUCTURE"})
	require.NoError(t, err)

	submitted, err := svc.Submit(ctx, citizen.ID, complaint.SubmitInput{
		CategoryName: "Infrastructure",
		SubCategory:  "pot hole",
		Description:  "Large pothole in front of the market gate",
		Location:     complaint.LocationInput{Pin: "834001", District: "Ranchi", City: "Ranchi"},
	})
	require.NoError(t, err)

	cat, err := store.GetCategoryByName(ctx, "infrastructure")
	require.NoError(t, err)
	assert.Equal(t, models.StringSet{"pot hole"}, cat.SubCategories, "vocabulary round-trips through a postgres array")

	t.Run("assignment happens once", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.CreateAgent(ctx, &models.Agent{
				Email:         fmt.Sprintf("agent%d@city.gov", i),
				OfficialEmail: fmt.Sprintf("official%d@city.gov", i),
				EmployeeID:    fmt.Sprintf("EMP-%d", i),
				FullName:      "Agent",
				PasswordHash:  "x",
				Municipality:  "Ranchi",
				WorkloadLimit: 10,
			}))
		}

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.AssignAgent(ctx, submitted.ID, models.Actor{}); err == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		agents, err := store.ListAgents(ctx, "Ranchi")
		require.NoError(t, err)
		total := 0
		for _, a := range agents {
			total += a.CurrentWorkload
		}
		assert.Equal(t, 1, total)
	})

	t.Run("concurrent submissions get distinct numbers", func(t *testing.T) {
		const n = 10
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seqs = map[int64]bool{}
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := svc.Submit(ctx, citizen.ID, complaint.SubmitInput{
					CategoryName: "Infrastructure",
					SubCategory:  "pot hole",
					Description:  "Another pothole opened up after the rain",
					Location:     complaint.LocationInput{Pin: "834001", District: "Ranchi", City: "Ranchi"},
				})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seqs[c.Seq] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seqs, n)
	})

	t.Run("upvote count tracks rows", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			u := &models.User{Email: fmt.Sprintf("voter%d@example.com", i), Name: "Voter"}
			require.NoError(t, store.CreateUser(ctx, u))
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, _ = svc.ToggleUpvote(ctx, submitted.ID, userID)
			}(u.ID)
		}
		wg.Wait()

		rows, err := store.CountUpvotes(ctx, submitted.ID)
		require.NoError(t, err)
		c, err := store.GetComplaint(ctx, submitted.ID)
		require.NoError(t, err)
		assert.Equal(t, int(rows), c.UpvoteCount)
		assert.Positive(t, rows)
	})
}
