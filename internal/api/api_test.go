package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/internal/config"
	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/core/services"
	"github.com/ntsvetkov/campus-manager/pkg/db"
	"github.com/ntsvetkov/campus-manager/pkg/metrics"
)

// mockStore implements Store for testing
type mockStore struct {
	students       []db.StudentRow
	weights        []db.WeightRow
	appended       []db.StudentRow
	savedRanking   []model.ScoredStudent
	rankingSaved   bool
	getStudentsErr error
	appendErr      error
}

func (m *mockStore) GetStudents(ctx context.Context) ([]db.StudentRow, error) {
	if m.getStudentsErr != nil {
		return nil, m.getStudentsErr
	}
	return m.students, nil
}

func (m *mockStore) GetWeights(ctx context.Context) ([]db.WeightRow, error) {
	return m.weights, nil
}

func (m *mockStore) WriteRanking(ctx context.Context, students []model.ScoredStudent) error {
	m.rankingSaved = true
	m.savedRanking = students
	return nil
}

func (m *mockStore) AppendStudent(ctx context.Context, row db.StudentRow) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, row)
	return nil
}

func defaultWeights() []db.WeightRow {
	return []db.WeightRow{
		{
			Institute:      "Other",
			InstituteScore: 50,
			SVO:            100,
			ChAES:          100,
			Disability:     100,
			Smoking:        100,
			Distance:       100,
			LargeFamily:    100,
		},
	}
}

// mockRecorder implements services.RunRecorder for testing
type mockRecorder struct {
	runs []model.RunSummary
	err  error
}

func (m *mockRecorder) InsertRun(ctx context.Context, run model.RunSummary) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func newTestServer(store *mockStore) *Server {
	return newTestServerWithRecorder(store, nil)
}

func newTestServerWithRecorder(store *mockStore, recorder services.RunRecorder) *Server {
	cfg := &config.Config{
		DefaultInstitute: "Other",
		InvalidRows:      config.InvalidRowsReject,
		Server:           config.ServerConfig{Addr: ":0"},
	}
	return NewServer(cfg, store, recorder, zap.NewNop(), metrics.New())
}

func doRequest(t *testing.T, server *Server, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	var envelope Response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestHealth(t *testing.T) {
	server := newTestServer(&mockStore{})

	rec, envelope := doRequest(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, "ok", envelope.Message)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "campus-manager", data["app"])
}

func TestListStudents(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "ИПМКН", Distance: 120},
			{Name: "Петрова А.А.", Gender: "Ж", Institute: "Other", Distance: 30},
		},
	}
	server := newTestServer(store)

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/v1/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, 2.0, data["count"])

	views := data["students"].([]interface{})
	require.Len(t, views, 2)
	first := views[0].(map[string]interface{})
	assert.Equal(t, "Иванов И.И.", first["name"])
	assert.Equal(t, 120.0, first["distance"])
}

func TestListStudents_StoreError(t *testing.T) {
	server := newTestServer(&mockStore{getStudentsErr: errors.New("sheet unavailable")})

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, envelope.Success)
}

func TestSubmission(t *testing.T) {
	store := &mockStore{}
	server := newTestServer(store)

	body := `{"name":"Иванов И.И.","gender":"М","institute":"ИПМКН","svo":1,"distance":120}`
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/submissions", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	assert.NotEmpty(t, data["submission_id"])

	require.Len(t, store.appended, 1)
	assert.Equal(t, "Иванов И.И.", store.appended[0].Name)
	assert.Equal(t, 1, store.appended[0].SVO)
}

func TestSubmission_InvalidBody(t *testing.T) {
	server := newTestServer(&mockStore{})

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/submissions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}

func TestSubmission_StoreErrorIsNotClientFault(t *testing.T) {
	store := &mockStore{appendErr: errors.New("sheet unavailable")}
	server := newTestServer(store)

	body := `{"name":"Иванов И.И.","gender":"М","institute":"ИПМКН","svo":1,"distance":120}`
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/submissions", body)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "failed to save student", envelope.Message)
}

func TestSubmission_FailsValidation(t *testing.T) {
	store := &mockStore{}
	server := newTestServer(store)

	body := `{"name":"","gender":"М","institute":"ИПМКН"}`
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/submissions", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, envelope.Success)
	assert.Empty(t, store.appended)
}

func TestCalculate(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "Other", Distance: 50},
		},
		weights: defaultWeights(),
	}
	server := newTestServer(store)

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, 1.0, data["count"])
	assert.Equal(t, true, data["saved"])
	assert.NotEmpty(t, data["run_id"])
	assert.True(t, store.rankingSaved)
}

func TestCalculate_DryRun(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "Other", Distance: 50},
		},
		weights: defaultWeights(),
	}
	server := newTestServer(store)

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/calculate?dry_run=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, false, data["saved"])
	assert.False(t, store.rankingSaved)
}

func TestCalculate_RecordsRunHistory(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "Other", Distance: 50},
		},
		weights: defaultWeights(),
	}
	recorder := &mockRecorder{}
	server := newTestServerWithRecorder(store, recorder)

	rec, _ := doRequest(t, server, http.MethodPost, "/api/v1/calculate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, recorder.runs, 1)
	assert.NotEmpty(t, recorder.runs[0].RunID)
	assert.Equal(t, 1, recorder.runs[0].Students)
	assert.True(t, recorder.runs[0].Saved)
}

func TestCalculate_RecorderFailureDoesNotFailRun(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "Other", Distance: 50},
		},
		weights: defaultWeights(),
	}
	recorder := &mockRecorder{err: errors.New("connection refused")}
	server := newTestServerWithRecorder(store, recorder)

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/calculate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	assert.True(t, store.rankingSaved)
}

func TestCalculate_InvalidRows(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "Other", Distance: -5},
		},
		weights: defaultWeights(),
	}
	server := newTestServer(store)

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/calculate", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, envelope.Success)

	data := envelope.Data.(map[string]interface{})
	rows := data["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.False(t, store.rankingSaved)
}

func TestCalculate_MissingDefaultProfile(t *testing.T) {
	store := &mockStore{
		students: []db.StudentRow{
			{Name: "Иванов И.И.", Gender: "М", Institute: "ИПМКН", Distance: 50},
		},
		weights: []db.WeightRow{{Institute: "ИПМКН", InstituteScore: 100}},
	}
	server := newTestServer(store)

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/v1/calculate", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "Other")
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(&mockStore{})

	doRequest(t, server, http.MethodGet, "/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campus_http_requests_total")
}
