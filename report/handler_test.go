package report

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack/internal/verification"
)

type pagedLister struct {
	pages     map[int][]verification.Entry
	calls     int
	lastLimit int
}

func (p *pagedLister) List(_ context.Context, companyID int64, f verification.Filter) (verification.ListResult, error) {
	p.calls++
	p.lastLimit = f.Limit
	return verification.ListResult{
		CompanyID:  companyID,
		Items:      p.pages[f.Page],
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: len(p.pages),
	}, nil
}

func entry(id int64, factory string) verification.Entry {
	return verification.Entry{
		ID:                  id,
		VerificationDate:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		EndVerificationDate: time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC),
		FactoryNumber:       factory,
		WaterType:           verification.WaterCold,
		Result:              true,
	}
}

func TestCSVReportWalksEveryPage(t *testing.T) {
	lister := &pagedLister{pages: map[int][]verification.Entry{
		1: {entry(1, "FN-1"), entry(2, "FN-2")},
		2: {entry(3, "FN-3")},
	}}
	h := NewHandler(slog.Default(), NewClient("http://127.0.0.1:0"), lister, nil, 0)
	router := chi.NewRouter()
	router.Route("/reports", h.MountRoutes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/verifications?company_id=7&report_type=csv", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, 2, lister.calls)
	require.Equal(t, 100, lister.lastLimit)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, csvHeader, records[0])
	require.Equal(t, "FN-3", records[3][2])
	require.Equal(t, "14.03.2026", records[1][0])
	require.Equal(t, "verified", records[1][5])
}

func TestPDFReportUsesGotenberg(t *testing.T) {
	var receivedHTML bool
	gotenberg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		receivedHTML = true
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer gotenberg.Close()

	lister := &pagedLister{pages: map[int][]verification.Entry{1: {entry(1, "FN-1")}}}
	h := NewHandler(slog.Default(), NewClient(gotenberg.URL), lister, nil, 0)
	router := chi.NewRouter()
	router.Route("/reports", h.MountRoutes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/verifications?company_id=7&report_type=pdf", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, receivedHTML)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestReportRejectsInvalidFilter(t *testing.T) {
	h := NewHandler(slog.Default(), NewClient("http://127.0.0.1:0"), &pagedLister{pages: map[int][]verification.Entry{}}, nil, 0)
	router := chi.NewRouter()
	router.Route("/reports", h.MountRoutes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/verifications?company_id=7&water_type=steam", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntriesHTMLEscapes(t *testing.T) {
	e := entry(1, "FN-1")
	e.ClientFullName = `<script>alert("x")</script>`
	html, err := EntriesHTML([]verification.Entry{e}, time.Now())
	require.NoError(t, err)
	require.NotContains(t, html, "<script>alert")
	require.Contains(t, html, "FN-1")
}
