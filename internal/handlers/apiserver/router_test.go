package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"edu-network/internal/auth"
	"edu-network/internal/config"
	"edu-network/internal/events"
	"edu-network/internal/middleware"
	"edu-network/internal/services"
	"edu-network/internal/storage"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := storage.InitDB(config.DatabaseConfig{
		Type:     "sqlite",
		DBName:   filepath.Join(t.TempDir(), "api.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		t.Fatalf("AutoMigrateTables: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	authCfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
	blacklist := auth.NewMemoryBlacklist()
	userRepo := storage.NewGormUserRepository(db)
	connRepo := storage.NewGormConnectionRepository(db)
	privacy := services.NewPrivacyService(userRepo, storage.NewGormPrivacyRepository(db), connRepo)
	network := services.NewNetworkService(db, userRepo, storage.NewGormConnectionRequestRepository(db),
		connRepo, storage.NewGormFollowRepository(db), privacy, events.NopPublisher{})

	h := Handlers{
		Auth:          NewAuthHandler(services.NewAuthService(userRepo, authCfg, blacklist)),
		Users:         NewUserHandler(services.NewUserService(userRepo), privacy),
		Network:       NewNetworkHandler(network),
		Jobs:          NewJobHandler(services.NewJobService(storage.NewGormJobRepository(db), storage.NewGormEducatorProfileRepository(db), 20)),
		Notifications: NewNotificationHandler(services.NewNotificationService(storage.NewGormNotificationRepository(db))),
	}
	return &testServer{t: t, router: NewRouter(h, middleware.AuthMiddleware(authCfg.JWTSecretKey, blacklist))}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and logs in, returning its id and token.
func (s *testServer) signup(username string) (uint, string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username, Nickname: username, Email: username + "@example.com", Password: "password123",
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPost, "/auth/login", "", LoginRequest{UsernameOrEmail: username, Password: "password123"})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(s.t, rec, &resp)
	return resp.User.ID, resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestConnectionFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.signup("alice")
	bobID, bob := s.signup("bob")

	rec := s.do(http.MethodPost, "/api/v1/network/connect", alice, SendConnectionRequestPayload{RecipientID: bobID, Message: "hi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("connect: %d %s", rec.Code, rec.Body.String())
	}
	var sent services.SendResult
	decode(t, rec, &sent)

	var status services.RelationshipStatus
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/network/status/%d", aliceID), bob, nil), &status)
	if status.Status != services.RelationshipPendingReceived || status.PendingRequestID == nil || *status.PendingRequestID != sent.Request.ID {
		t.Errorf("bob's view = %+v", status)
	}

	actionPath := fmt.Sprintf("/api/v1/network/requests/%d/action", sent.Request.ID)
	if rec := s.do(http.MethodPost, actionPath, alice, RequestActionPayload{Action: "accept"}); rec.Code != http.StatusForbidden {
		t.Errorf("sender accept: %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, actionPath, bob, RequestActionPayload{Action: "accept"}); rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodPost, actionPath, bob, RequestActionPayload{Action: "reject"}); rec.Code != http.StatusBadRequest {
		t.Errorf("reject after accept: %d", rec.Code)
	}

	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/network/status/%d", bobID), alice, nil), &status)
	if status.Status != services.RelationshipConnected || !status.IsFollowing || !status.IsFollowedBy {
		t.Errorf("alice's view = %+v", status)
	}

	var conns []json.RawMessage
	decode(t, s.do(http.MethodGet, "/api/v1/network/connections", alice, nil), &conns)
	if len(conns) != 1 {
		t.Errorf("connections = %d", len(conns))
	}

	if rec := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/network/connections/%d", bobID), alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("remove: %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, fmt.Sprintf("/api/v1/network/connections/%d", bobID), alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("remove twice: %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.signup("alice")
	bobID, _ := s.signup("bob")

	if rec := s.do(http.MethodPost, "/api/v1/network/connect", alice, SendConnectionRequestPayload{RecipientID: bobID}); rec.Code != http.StatusCreated {
		t.Fatalf("connect: %d", rec.Code)
	}

	testCases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/users/me", "", nil, http.StatusUnauthorized},
		{"self connect", http.MethodPost, "/api/v1/network/connect", alice, SendConnectionRequestPayload{RecipientID: aliceID}, http.StatusBadRequest},
		{"duplicate request", http.MethodPost, "/api/v1/network/connect", alice, SendConnectionRequestPayload{RecipientID: bobID}, http.StatusConflict},
		{"unknown recipient", http.MethodPost, "/api/v1/network/connect", alice, SendConnectionRequestPayload{RecipientID: 9999}, http.StatusNotFound},
		{"missing recipient", http.MethodPost, "/api/v1/network/connect", alice, map[string]string{}, http.StatusBadRequest},
		{"unknown request", http.MethodPost, "/api/v1/network/requests/9999/action", alice, RequestActionPayload{Action: "ACCEPT"}, http.StatusNotFound},
		{"bad action", http.MethodPost, "/api/v1/network/requests/1/action", alice, RequestActionPayload{Action: "IGNORE"}, http.StatusBadRequest},
		{"self follow", http.MethodPost, fmt.Sprintf("/api/v1/network/follow/%d", aliceID), alice, nil, http.StatusBadRequest},
		{"unknown job", http.MethodGet, "/api/v1/jobs/9999", alice, nil, http.StatusNotFound},
		{"wrong login", http.MethodPost, "/auth/login", "", LoginRequest{UsernameOrEmail: "alice", Password: "nope"}, http.StatusUnauthorized},
		{"duplicate user", http.MethodPost, "/auth/register", "", RegisterRequest{Username: "alice", Nickname: "a", Password: "password123"}, http.StatusConflict},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.path, tc.token, tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestFollowAndJobsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, school := s.signup("school")
	teacherID, teacher := s.signup("teacher")

	var follow services.FollowResult
	decode(t, s.do(http.MethodPost, fmt.Sprintf("/api/v1/network/follow/%d", teacherID), school, nil), &follow)
	if !follow.Following {
		t.Error("first toggle should follow")
	}
	decode(t, s.do(http.MethodPost, fmt.Sprintf("/api/v1/network/follow/%d", teacherID), school, nil), &follow)
	if follow.Following {
		t.Error("second toggle should unfollow")
	}

	rec := s.do(http.MethodPost, "/api/v1/jobs", school, services.JobInput{
		Title:                   "Maths teacher",
		SubjectSpecialization:   []string{"Mathematics"},
		RequiredExperienceYears: 2,
		MinQualification:        "B.Ed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: %d %s", rec.Code, rec.Body.String())
	}
	var job struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &job)

	if rec := s.do(http.MethodGet, "/api/v1/profile/educator", teacher, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing profile: %d", rec.Code)
	}
	if rec := s.do(http.MethodPut, "/api/v1/profile/educator", teacher, services.EducatorProfileInput{
		ExpertSubjects: []string{"Mathematics"}, ExperienceYears: 4, Qualifications: []string{"B.Ed"},
	}); rec.Code != http.StatusOK {
		t.Fatalf("upsert profile: %d %s", rec.Code, rec.Body.String())
	}

	var match struct {
		Score int `json:"matchScore"`
	}
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d/match", job.ID), teacher, nil), &match)
	if match.Score != 100 {
		t.Errorf("score = %d, want 100", match.Score)
	}

	if rec := s.do(http.MethodPut, fmt.Sprintf("/api/v1/jobs/%d", job.ID), teacher, services.JobInput{Title: "Mine now"}); rec.Code != http.StatusForbidden {
		t.Errorf("update by non-owner: %d", rec.Code)
	}

	var recommended []json.RawMessage
	decode(t, s.do(http.MethodGet, "/api/v1/jobs/recommended?limit=5", teacher, nil), &recommended)
	if len(recommended) != 1 {
		t.Errorf("recommended = %d", len(recommended))
	}
}

func TestClientErrorMessages(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.signup("alice")

	badBody := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/network/connect", strings.NewReader("{not json"))
		req.Header.Set("Authorization", "Bearer "+alice)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	testCases := []struct {
		name     string
		do       func() *httptest.ResponseRecorder
		wantCode int
		wantMsg  string
	}{
		{"malformed body", badBody, http.StatusBadRequest, "invalid request body"},
		{"zero id", func() *httptest.ResponseRecorder {
			return s.do(http.MethodGet, "/api/v1/users/0", alice, nil)
		}, http.StatusBadRequest, "invalid userID: must be a positive integer"},
		{"short search", func() *httptest.ResponseRecorder {
			return s.do(http.MethodGet, "/api/v1/users/search?query=a", alice, nil)
		}, http.StatusBadRequest, "search query must be at least 2 characters"},
		{"no token", func() *httptest.ResponseRecorder {
			return s.do(http.MethodGet, "/api/v1/users/me", "", nil)
		}, http.StatusUnauthorized, "missing authorization token"},
		{"garbage token", func() *httptest.ResponseRecorder {
			return s.do(http.MethodGet, "/api/v1/users/me", "nope", nil)
		}, http.StatusUnauthorized, "invalid or expired token"},
		{"short password", func() *httptest.ResponseRecorder {
			return s.do(http.MethodPost, "/auth/register", "", RegisterRequest{Username: "bob", Nickname: "bob", Password: "short"})
		}, http.StatusBadRequest, "invalid field Password: min"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.do()
			var body ErrorResponse
			decode(t, rec, &body)
			if rec.Code != tc.wantCode || body.Error != tc.wantMsg {
				t.Errorf("got %d %q, want %d %q", rec.Code, body.Error, tc.wantCode, tc.wantMsg)
			}
		})
	}
}

func TestLogoutRevokesTokenOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.signup("alice")

	rec := s.do(http.MethodPost, "/api/v1/auth/logout", alice, nil)
	var msg map[string]string
	decode(t, rec, &msg)
	if rec.Code != http.StatusOK || msg["message"] != "logged out" {
		t.Fatalf("logout: %d %v", rec.Code, msg)
	}

	rec = s.do(http.MethodGet, "/api/v1/users/me", alice, nil)
	var body ErrorResponse
	decode(t, rec, &body)
	if rec.Code != http.StatusUnauthorized || body.Error != "token has been revoked" {
		t.Errorf("after logout: %d %q", rec.Code, body.Error)
	}
}
