package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-backend/internal/cache"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/services"
)

type stubAuth map[string]*services.Identity

func (s stubAuth) Authenticate(_ context.Context, token string) (*services.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, services.ErrUnauthorized
}

// stubProfiles records section submissions and answers with a canned view
type stubProfiles struct {
	exists   bool
	complete bool
	applied  []profile.Payload
	applyErr error
	created  int
}

func (s *stubProfiles) view(userID string) *services.ProfileView {
	next := profile.SectionFamily
	return &services.ProfileView{
		Profile:              &models.Profile{ID: "p1", UserID: userID, Photos: []*models.Photo{}},
		CompletionPercentage: 44,
		NextSection:          &next,
	}
}

func (s *stubProfiles) GetOrCreate(_ context.Context, userID string) (*services.ProfileView, error) {
	if !s.exists {
		s.exists = true
		s.created++
	}
	return s.view(userID), nil
}

func (s *stubProfiles) Create(_ context.Context, userID string) (*services.ProfileView, error) {
	if s.exists {
		return nil, services.ErrProfileExists
	}
	s.exists = true
	s.created++
	return s.view(userID), nil
}

func (s *stubProfiles) MarkReady(_ context.Context, userID string) (*services.ProfileView, error) {
	if !s.complete {
		return nil, services.ErrProfileIncomplete
	}
	return s.view(userID), nil
}

func (s *stubProfiles) ReadSection(_ context.Context, _ string, section profile.Section) (*services.SectionView, error) {
	data, err := profile.NewPayload(section)
	if err != nil {
		return nil, err
	}
	return &services.SectionView{SectionData: data, IsEmpty: true}, nil
}

func (s *stubProfiles) ApplySectionUpdate(_ context.Context, userID string, payload profile.Payload) (*services.ProfileView, error) {
	if err := profile.Validate(payload); err != nil {
		return nil, err
	}
	if !s.exists {
		return nil, fmt.Errorf("%w: profile", services.ErrNotFound)
	}
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	s.applied = append(s.applied, payload)
	return s.view(userID), nil
}

func (s *stubProfiles) PublicView(_ context.Context, userID string) (*services.ProfileView, error) {
	if userID != "u1" {
		return nil, services.ErrNotFound
	}
	return s.view(userID), nil
}

func (s *stubProfiles) Status(_ context.Context, _ string) (*cache.Status, error) {
	return &cache.Status{HasProfile: s.exists}, nil
}

type stubUsers struct {
	pushToken string
}

func (u *stubUsers) RecordLogin(_ context.Context, id *services.Identity) (*models.User, error) {
	user := *id.User
	user.LoginCount++
	return &user, nil
}

func (u *stubUsers) UpdatePushToken(_ context.Context, _ string, token string) error {
	u.pushToken = token
	return nil
}

type stubModeration struct {
	decided []string
}

func (m *stubModeration) ListPending(_ context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error) {
	return []*models.PendingFieldUpdate{{ID: "pu1", UserID: "u1", Field: "name", Value: "John"}}, nil
}

func (m *stubModeration) Approve(_ context.Context, id string) (*models.PendingFieldUpdate, error) {
	if id != "pu1" {
		return nil, services.ErrNotFound
	}
	m.decided = append(m.decided, "approve:"+id)
	return &models.PendingFieldUpdate{ID: id, Field: "name", Value: "John", Approved: true}, nil
}

func (m *stubModeration) Reject(_ context.Context, id string) error {
	m.decided = append(m.decided, "reject:"+id)
	return nil
}

type testServer struct {
	router     http.Handler
	srv        *httptest.Server
	profiles   *stubProfiles
	users      *stubUsers
	moderation *stubModeration
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{profiles: &stubProfiles{}, users: &stubUsers{}, moderation: &stubModeration{}}
	auth := stubAuth{
		"user": {User: &models.User{ID: "u1"}},
		"mod":  {User: &models.User{ID: "m1"}, Role: services.RoleModerator},
	}
	router := NewRouter(Routes{
		Auth:       auth,
		Profiles:   NewProfileHandler(ts.profiles, 1<<20),
		Users:      NewUserHandler(ts.users, ts.profiles),
		Moderation: NewModerationHandler(ts.moderation, ts.profiles),
		WebSocket:  NewWebSocketHandler(services.NewWSHub(), auth, ts.profiles, nil),
	})
	ts.router = router
	ts.srv = httptest.NewServer(router)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res, out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	res, body := ts.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestProfileRoutes_RequireSession(t *testing.T) {
	ts := newTestServer(t)
	res, body := ts.do(t, http.MethodGet, "/api/v1/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.NotEmpty(t, body["error"])

	res, _ = ts.do(t, http.MethodGet, "/api/v1/profile", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGetProfile(t *testing.T) {
	ts := newTestServer(t)
	res, body := ts.do(t, http.MethodGet, "/api/v1/profile", "user", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(44), body["completionPercentage"])
	assert.Equal(t, "family", body["nextSection"])
	assert.Equal(t, []interface{}{}, body["profile"].(map[string]interface{})["images"])
	assert.Equal(t, 1, ts.profiles.created)
}

func TestCreateProfile(t *testing.T) {
	ts := newTestServer(t)
	res, _ := ts.do(t, http.MethodPost, "/api/v1/profile", "user", "")
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res, body := ts.do(t, http.MethodPost, "/api/v1/profile", "user", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Profile already exists", body["error"])
}

func TestMarkReady(t *testing.T) {
	ts := newTestServer(t)
	res, _ := ts.do(t, http.MethodPost, "/api/v1/profile/ready", "user", "")
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	ts.profiles.complete = true
	res, _ = ts.do(t, http.MethodPost, "/api/v1/profile/ready", "user", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestGetSection(t *testing.T) {
	ts := newTestServer(t)
	res, body := ts.do(t, http.MethodGet, "/api/v1/profile/family", "user", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["isEmpty"])
	assert.Contains(t, body["sectionData"], "fatherName")

	res, body = ts.do(t, http.MethodGet, "/api/v1/profile/horoscope", "user", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid section", body["error"])
}

func TestUpdateSection(t *testing.T) {
	ts := newTestServer(t)
	payload, err := json.Marshal(map[string]interface{}{
		"fatherName": "Samuel Raj", "fatherOccupation": "Government Service",
		"motherName": "Mary Raj", "motherOccupation": "Home Maker", "familyType": "Nuclear",
		"youngerBrothers": 1, "youngerSisters": "0", "elderBrothers": 0, "elderSisters": 2,
		"youngerBrothersMarried": 0, "youngerSistersMarried": 0, "elderBrothersMarried": 0, "elderSistersMarried": 1,
		"extraneous": "ignored",
	})
	require.NoError(t, err)

	res, body := ts.do(t, http.MethodPut, "/api/v1/profile/family", "user", string(payload))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(44), body["completionPercentage"])
	assert.Contains(t, body, "profile")

	// the profile was created on the first write
	assert.Equal(t, 1, ts.profiles.created)
	require.Len(t, ts.profiles.applied, 1)
	assert.Equal(t, "Samuel Raj", ts.profiles.applied[0].(*profile.FamilyDetails).FatherName)
}

func TestUpdateSection_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.profiles.exists = true

	res, body := ts.do(t, http.MethodPut, "/api/v1/profile/family", "user",
		`{"youngerBrothers": 2, "youngerBrothersMarried": 3}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
	details := body["details"].([]interface{})
	assert.Greater(t, len(details), 1)
	assert.Contains(t, details, "youngerBrothersMarried: Cannot exceed number of younger brothers")
	assert.Empty(t, ts.profiles.applied)

	res, body = ts.do(t, http.MethodPut, "/api/v1/profile/family", "user", `{"fatherName": [`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid request body", body["error"])

	res, _ = ts.do(t, http.MethodPut, "/api/v1/profile/Personal", "user", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	ts.profiles.applyErr = fmt.Errorf("%w: connection reset", services.ErrPersistence)
	res, body = ts.do(t, http.MethodPut, "/api/v1/profile/payment", "user", `{}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestUpdateSection_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t)
	big := `{"about": "` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/personal", strings.NewReader(big))
	req.Header.Set("Authorization", "Bearer user")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStartSession(t *testing.T) {
	ts := newTestServer(t)
	res, body := ts.do(t, http.MethodPost, "/api/v1/sessions", "user", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["hasProfile"])
	assert.Equal(t, false, body["isProfileComplete"])
	assert.Equal(t, float64(1), body["user"].(map[string]interface{})["loginCount"])
}

func TestUpdatePushToken(t *testing.T) {
	ts := newTestServer(t)
	res, _ := ts.do(t, http.MethodPut, "/api/v1/users/me/push-token", "user", `{"pushToken":"abc"}`)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "abc", ts.users.pushToken)

	res, _ = ts.do(t, http.MethodPut, "/api/v1/users/me/push-token", "user", `nope`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestModerationRoutes(t *testing.T) {
	ts := newTestServer(t)

	res, _ := ts.do(t, http.MethodGet, "/api/v1/moderation/pending", "user", "")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body := ts.do(t, http.MethodGet, "/api/v1/moderation/pending?limit=10", "mod", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["updates"], 1)

	res, body = ts.do(t, http.MethodPost, "/api/v1/moderation/pending/pu1/approve", "mod", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["update"].(map[string]interface{})["approved"])

	res, _ = ts.do(t, http.MethodPost, "/api/v1/moderation/pending/other/approve", "mod", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.do(t, http.MethodPost, "/api/v1/moderation/pending/pu1/reject", "mod", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, []string{"approve:pu1", "reject:pu1"}, ts.moderation.decided)

	res, _ = ts.do(t, http.MethodGet, "/api/v1/moderation/profiles/u1", "mod", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = ts.do(t, http.MethodGet, "/api/v1/moderation/profiles/u2", "mod", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&profile.UnknownSectionError{Section: "x"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", profile.ErrMalformedPayload), http.StatusBadRequest},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: profile", services.ErrNotFound), http.StatusNotFound},
		{services.ErrProfileIncomplete, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		respondServiceError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}
