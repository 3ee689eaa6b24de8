package rest

import (
	"CivicPulse/internal/adapters/eventbus"
	"CivicPulse/internal/adapters/memory"
	"CivicPulse/internal/adapters/metrics"
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/core/lifecycle"
	"CivicPulse/internal/core/services"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "civicpulse"
)

type testAPI struct {
	handler http.Handler
	metrics *metrics.Metrics
	users   map[string]*domain.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	nopLogger := zerolog.Nop()
	store := memory.NewStore(&nopLogger)
	bus := eventbus.NewInMemoryEventBus(&nopLogger)
	m := metrics.New(prometheus.NewRegistry())

	reports := services.NewReportService(lifecycle.NewEngine(), store.Users(), store.Reports(), store, bus, m, &nopLogger)
	notes := services.NewNotificationService(store.Users(), store.Notifications(), &nopLogger)
	srv := NewServer(reports, notes, NewAuthenticator(testSecret, testIssuer), &nopLogger, WithMetrics(m))

	api := &testAPI{handler: srv.Routes(), metrics: m, users: map[string]*domain.User{}}
	for name, role := range map[string]domain.Role{
		"citizen": domain.RoleUser,
		"other":   domain.RoleUser,
		"admin":   domain.RoleAdmin,
		"staff":   domain.RoleStaff,
	} {
		u := &domain.User{ID: uuid.New(), Username: name, DisplayName: strings.ToUpper(name[:1]) + name[1:], Role: role}
		require.NoError(t, store.Users().Create(context.Background(), u))
		api.users[name] = u
	}
	return api
}

func token(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(t *testing.T, as, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, testSecret, as, time.Hour))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

var siteLat, siteLng = 12.9716, 77.5946

func (a *testAPI) submit(t *testing.T) reportResponse {
	t.Helper()
	rec := a.do(t, "citizen", http.MethodPost, "/api/reports/submit", map[string]any{
		"title": "Pothole", "description": "Deep one", "latitude": siteLat, "longitude": siteLng,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[reportResponse](t, rec)
}

func TestAPI_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	report := api.submit(t)
	assert.Equal(t, "OPEN", report.Status)

	path := "/api/reports/" + report.ID.String()

	rec := api.do(t, "admin", http.MethodPatch, path+"/assign", map[string]any{"staffId": api.users["staff"].ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "IN_PROGRESS", decodeBody[reportResponse](t, rec).Status)

	rec = api.do(t, "staff", http.MethodPatch, path+"/resolve", map[string]any{
		"proofPhotoUrl": "https://img.example/fixed.jpg", "currentLatitude": siteLat + 0.0001, "currentLongitude": siteLng,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolved := decodeBody[reportResponse](t, rec)
	assert.Equal(t, "RESOLVED", resolved.Status)
	require.NotNil(t, resolved.ProofPhotoURL)

	rec = api.do(t, "citizen", http.MethodPatch, path+"/verify", map[string]any{
		"currentLatitude": siteLat, "currentLongitude": siteLng,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decodeBody[reportResponse](t, rec)
	assert.Equal(t, "CLOSED", closed.Status)
	require.NotNil(t, closed.CivicCoinsEarned)
	assert.Equal(t, 10, *closed.CivicCoinsEarned)

	rec = api.do(t, "citizen", http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decodeBody[[]notificationResponse](t, rec)
	require.Len(t, notes, 2)
	assert.Equal(t, "REPORT_RESOLVED", notes[0].Type)
	assert.Equal(t, "REPORT_ASSIGNED", notes[1].Type)

	rec = api.do(t, "staff", http.MethodGet, "/api/notifications", nil)
	staffNotes := decodeBody[[]notificationResponse](t, rec)
	require.Len(t, staffNotes, 1)
	assert.Equal(t, "Your resolved report has been verified by Citizen", staffNotes[0].Message)

	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.Transitions.WithLabelValues("verify", "ok")))
	assert.Equal(t, 10.0, testutil.ToFloat64(api.metrics.CivicCoins))
}

func TestAPI_ErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	report := api.submit(t)
	path := "/api/reports/" + report.ID.String()

	testCases := []struct {
		name   string
		as     string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"user cannot assign", "citizen", http.MethodPatch, path + "/assign", map[string]any{"staffId": api.users["staff"].ID}, http.StatusForbidden, "unauthorized"},
		{"assign to non-staff", "admin", http.MethodPatch, path + "/assign", map[string]any{"staffId": api.users["other"].ID}, http.StatusUnprocessableEntity, "invalid_role_target"},
		{"unknown staff", "admin", http.MethodPatch, path + "/assign", map[string]any{"staffId": uuid.New()}, http.StatusNotFound, "not_found"},
		{"bad staff id", "admin", http.MethodPatch, path + "/assign", map[string]any{"staffId": "nope"}, http.StatusBadRequest, "validation_error"},
		{"unknown report", "admin", http.MethodPatch, "/api/reports/" + uuid.NewString() + "/assign", map[string]any{"staffId": api.users["staff"].ID}, http.StatusNotFound, "not_found"},
		{"verify while open", "citizen", http.MethodPatch, path + "/verify", map[string]any{"currentLatitude": siteLat, "currentLongitude": siteLng}, http.StatusConflict, "illegal_state"},
		{"missing coordinates", "citizen", http.MethodPost, "/api/reports/submit", map[string]any{"title": "x"}, http.StatusBadRequest, "validation_error"},
		{"missing title", "citizen", http.MethodPost, "/api/reports/submit", map[string]any{"latitude": 1.0, "longitude": 2.0}, http.StatusBadRequest, "validation_error"},
		{"latitude out of range", "citizen", http.MethodPost, "/api/reports/submit", map[string]any{"title": "x", "latitude": 91.0, "longitude": 2.0}, http.StatusBadRequest, "validation_error"},
		{"list all as user", "citizen", http.MethodGet, "/api/reports/all", nil, http.StatusForbidden, "unauthorized"},
		{"list all bad status", "admin", http.MethodGet, "/api/reports/all?status=DONE", nil, http.StatusBadRequest, "validation_error"},
		{"unknown user", "ghost", http.MethodGet, "/api/reports/my-reports", nil, http.StatusNotFound, "not_found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, tc.as, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			body := decodeBody[errorBody](t, rec)
			assert.Equal(t, tc.kind, body.Error)
			assert.NotEmpty(t, body.ErrorDescription)
		})
	}
}

func TestAPI_ResolveOutOfRange(t *testing.T) {
	api := newTestAPI(t)
	report := api.submit(t)
	path := "/api/reports/" + report.ID.String()

	rec := api.do(t, "admin", http.MethodPatch, path+"/assign", map[string]any{"staffId": api.users["staff"].ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, "staff", http.MethodPatch, path+"/resolve", map[string]any{
		"proofPhotoUrl": "https://img.example/fixed.jpg", "currentLatitude": siteLat + 0.01, "currentLongitude": siteLng,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "out_of_range", body.Error)
	assert.Contains(t, body.ErrorDescription, "m away")

	rec = api.do(t, "staff", http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IN_PROGRESS", decodeBody[reportResponse](t, rec).Status)
}

func TestAPI_Listings(t *testing.T) {
	api := newTestAPI(t)
	first := api.submit(t)
	api.submit(t)
	rec := api.do(t, "admin", http.MethodPatch, "/api/reports/"+first.ID.String()+"/assign", map[string]any{"staffId": api.users["staff"].ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, "admin", http.MethodGet, "/api/reports/all?status=OPEN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]reportResponse](t, rec), 1)

	rec = api.do(t, "citizen", http.MethodGet, "/api/reports/my-reports", nil)
	assert.Len(t, decodeBody[[]reportResponse](t, rec), 2)

	rec = api.do(t, "other", http.MethodGet, "/api/reports/my-reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = api.do(t, "staff", http.MethodGet, "/api/reports/assigned", nil)
	assigned := decodeBody[[]reportResponse](t, rec)
	require.Len(t, assigned, 1)
	assert.Equal(t, first.ID, assigned[0].ID)

	rec = api.do(t, "admin", http.MethodGet, "/api/reports/staff", nil)
	staff := decodeBody[[]userResponse](t, rec)
	require.Len(t, staff, 1)
	assert.Equal(t, "staff", staff[0].Username)
	assert.Equal(t, "STAFF", staff[0].Role)
}

func TestAPI_Notifications(t *testing.T) {
	api := newTestAPI(t)
	report := api.submit(t)
	rec := api.do(t, "admin", http.MethodPatch, "/api/reports/"+report.ID.String()+"/assign", map[string]any{"staffId": api.users["staff"].ID})
	require.Equal(t, http.StatusOK, rec.Code)

	notes := decodeBody[[]notificationResponse](t, api.do(t, "citizen", http.MethodGet, "/api/notifications", nil))
	require.Len(t, notes, 1)
	notePath := "/api/notifications/" + notes[0].ID.String()

	rec = api.do(t, "other", http.MethodPut, notePath+"/read", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, "citizen", http.MethodPut, notePath+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes = decodeBody[[]notificationResponse](t, api.do(t, "citizen", http.MethodGet, "/api/notifications", nil))
	assert.True(t, notes[0].IsRead)

	rec = api.do(t, "citizen", http.MethodDelete, notePath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, "citizen", http.MethodDelete, notePath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, "citizen", http.MethodDelete, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "All notifications cleared", decodeBody[messageBody](t, rec).Message)
}

func TestAPI_Authentication(t *testing.T) {
	api := newTestAPI(t)

	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/my-reports", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, send("").Code)
	assert.Equal(t, http.StatusUnauthorized, send("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, send("Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, send("Bearer "+token(t, "wrong-secret", "citizen", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, send("Bearer "+token(t, testSecret, "citizen", -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, send("Bearer "+token(t, testSecret, "", time.Hour)).Code)
	assert.Equal(t, http.StatusOK, send("Bearer "+token(t, testSecret, "citizen", time.Hour)).Code)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	api.submit(t)
	rec = api.do(t, "", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/reports/submit"`)
}

func TestAPI_HealthReportsReadiness(t *testing.T) {
	nopLogger := zerolog.Nop()
	srv := NewServer(nil, nil, NewAuthenticator(testSecret, ""), &nopLogger,
		WithReadiness(func(ctx context.Context) error { return errors.New("db down") }))

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zerolog.Nop(), fmt.Errorf("load report: %w", errors.New("connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "internal_error", body.Error)
	assert.Empty(t, body.ErrorDescription)
}
