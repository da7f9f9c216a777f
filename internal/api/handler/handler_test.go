package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swarajdesk/backend/internal/api/handler"
	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/database/dbtest"
	"swarajdesk/backend/internal/hub"
	"swarajdesk/backend/internal/models"
	"swarajdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var allowedOrigin = "http://localhost:3000"

type testServer struct {
	router  *gin.Engine
	auth    *handler.Authenticator
	store   *storage.Service
	hub     *hub.Hub
	citizen *models.User
	other   *models.User
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   *string         `json:"error"`
	Details json.RawMessage `json:"details"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, production bool) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := storage.NewStorageService(dbtest.New(t), nil)
	h := hub.New(time.Hour, 2*time.Hour, zerolog.Nop())
	go h.Run(ctx)

	svc := complaint.NewService(store, complaint.WithNotifier(h), complaint.WithLogger(zerolog.Nop()))
	auth := handler.NewAuthenticator(testSecret, time.Hour)
	hd := handler.NewHandler(svc, h, store, auth, []string{allowedOrigin}, production, zerolog.Nop())

	citizen := &models.User{Email: "citizen@example.com", Name: "Citizen", District: "Ranchi", City: "Ranchi"}
	require.NoError(t, store.CreateUser(ctx, citizen))
	other := &models.User{Email: "neighbour@example.com", Name: "Neighbour", District: "Ranchi", City: "Ranchi"}
	require.NoError(t, store.CreateUser(ctx, other))
	require.NoError(t, store.CreateCategory(ctx, &models.Category{Name: "Infrastructure", AssignedDepartment: "INFRASTRUCTURE"}))

	return &testServer{
		router:  handler.NewRouter(hd),
		auth:    auth,
		store:   store,
		hub:     h,
		citizen: citizen,
		other:   other,
	}
}

func (s *testServer) token(t *testing.T, id string, level models.AccessLevel) string {
	t.Helper()
	tok, err := s.auth.IssueToken(id, level)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func submitBody(mutate func(m map[string]any)) map[string]any {
	body := map[string]any{
		"categoryName": "Infrastructure",
		"subCategory":  "pot hole",
		"description":  "Large pothole in front of the market gate",
		"urgency":      "HIGH",
		"location": map[string]any{
			"pin": "834001", "district": "Ranchi", "city": "Ranchi", "locality": "Main Road",
		},
	}
	if mutate != nil {
		mutate(body)
	}
	return body
}

func (s *testServer) submit(t *testing.T, mutate func(m map[string]any)) models.Complaint {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/complaints", s.token(t, s.citizen.ID, models.AccessUser), submitBody(mutate))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c models.Complaint
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
