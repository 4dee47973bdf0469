package appeal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack/internal/shared"
	"github.com/veritrack/veritrack/internal/tenant"
	"github.com/veritrack/veritrack/internal/view"
)

type memRepo struct {
	stubRepo
	missing bool
}

func (m *memRepo) Get(_ context.Context, _, appealID int64) (Appeal, error) {
	if m.missing {
		return Appeal{}, shared.ErrNotFound
	}
	return Appeal{ID: appealID, Status: StatusNew}, nil
}

func (m *memRepo) Delete(_ context.Context, _, _ int64) error {
	if m.missing {
		return shared.ErrNotFound
	}
	return nil
}

func newAppealRouter(t *testing.T, repo Repo) http.Handler {
	t.Helper()

	engine, err := view.NewEngine()
	require.NoError(t, err)

	h := NewHandler(nil, NewService(repo), engine, time.UTC, 0)

	r := chi.NewRouter()
	r.Route("/api/appeals", func(r chi.Router) {
		r.Use(tenant.Middleware(0))
		h.MountAPI(r)
	})
	r.Route("/appeals", func(r chi.Router) {
		h.MountPages(r)
	})
	return r
}

func TestAppealListAPI(t *testing.T) {
	repo := &memRepo{stubRepo: stubRepo{
		appeals: []Appeal{{ID: 1, ClientFullName: "Sidorova Anna", Status: StatusNew}},
		total:   1,
	}}
	router := newAppealRouter(t, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/appeals?company_id=7&appeal_status=new", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, int64(7), result.CompanyID)
	require.Len(t, result.Items, 1)
	require.Equal(t, 1, result.Total)
}

func TestAppealCreateAPI(t *testing.T) {
	repo := &memRepo{}
	router := newAppealRouter(t, repo)

	body := `{"dispatcher_id":4,"date_of_get":"2026-04-02","client_full_name":"Sidorova Anna","address":"Mira 5","phone_number":"+79001234567"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/appeals?company_id=7", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var appeal Appeal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appeal))
	require.Equal(t, int64(101), appeal.ID)
	require.Equal(t, StatusNew, appeal.Status)
}

func TestAppealCreateAPIRejectsInvalidForm(t *testing.T) {
	router := newAppealRouter(t, &memRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/appeals?company_id=7", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Error)
	require.Contains(t, body.Fields, "client_full_name")
}

func TestAppealDeleteAPI(t *testing.T) {
	router := newAppealRouter(t, &memRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/appeals/12?company_id=7", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAppealDeleteAPINotFound(t *testing.T) {
	router := newAppealRouter(t, &memRepo{missing: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/appeals/12?company_id=7", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}

func TestAppealPageRedirectsToCanonicalQuery(t *testing.T) {
	router := newAppealRouter(t, &memRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appeals?company_id=7&appeal_status=new", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/appeals?company_id=7&appeal_status=new&limit=30&page=1", rec.Header().Get("Location"))
}

func TestAppealPageRendersPlaceholderWhenEmpty(t *testing.T) {
	router := newAppealRouter(t, &memRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appeals?company_id=7&limit=30&page=1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Equal(t, 1, strings.Count(body, `class="placeholder"`))
	require.Equal(t, 1, strings.Count(body, "No records found"))
}

func TestAppealPageRendersRows(t *testing.T) {
	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	repo := &memRepo{stubRepo: stubRepo{
		appeals: []Appeal{{
			ID:             1,
			DateOfGet:      date,
			ClientFullName: "Sidorova Anna",
			Address:        "Mira 5",
			PhoneNumber:    "+79001234567",
			Status:         StatusDone,
			Dispatcher:     &Dispatcher{ID: 4, LastName: "Ivanova", Name: "Olga"},
		}},
		total: 1,
	}}
	router := newAppealRouter(t, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appeals?company_id=7&limit=30&page=1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "02.04.2026")
	require.Contains(t, body, "Sidorova Anna")
	require.Contains(t, body, "Ivanova Olga")
	require.Contains(t, body, "badge-success")
	require.NotContains(t, body, "No records found")
}
