package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritrack/veritrack/internal/tenant"
	"github.com/veritrack/veritrack/internal/verification"
)

// Reports larger than this are cut off rather than streamed forever.
const maxReportPages = 200

// EntryLister provides paged access to verification entries.
type EntryLister interface {
	List(ctx context.Context, companyID int64, f verification.Filter) (verification.ListResult, error)
}

// EnqueueFunc submits an export to the background queue and returns the
// job id.
type EnqueueFunc func(ctx context.Context, companyID int64, reportType string, filters map[string]string) (string, error)

// Handler manages report endpoints.
type Handler struct {
	logger         *slog.Logger
	client         *Client
	entries        EntryLister
	enqueue        EnqueueFunc
	defaultCompany int64
}

// NewHandler creates a report handler.
func NewHandler(logger *slog.Logger, client *Client, entries EntryLister, enqueue EnqueueFunc, defaultCompany int64) *Handler {
	return &Handler{logger: logger, client: client, entries: entries, enqueue: enqueue, defaultCompany: defaultCompany}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/verifications", h.verifications)
	r.Post("/verifications/async", h.verificationsAsync)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// verifications exports the filtered entry list as CSV or PDF. The
// filter parameters are the same ones the list page uses, so the export
// link can carry the current address state verbatim.
func (h *Handler) verifications(w http.ResponseWriter, r *http.Request) {
	companyID, err := tenant.FromRequest(r, h.defaultCompany)
	if err != nil {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}
	filter, err := verification.ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.collect(r.Context(), companyID, filter)
	if err != nil {
		h.logger.Error("collect report entries", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch r.URL.Query().Get("report_type") {
	case "pdf":
		html, err := EntriesHTML(entries, time.Now())
		if err != nil {
			h.logger.Error("render report html", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		pdf, err := h.client.RenderHTML(r.Context(), html)
		if err != nil {
			h.logger.Error("render report pdf", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=verifications-%s.pdf", stamp))
		_, _ = w.Write(pdf)
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=verifications-%s.csv", stamp))
		if err := WriteEntriesCSV(w, entries); err != nil {
			h.logger.Error("write report csv", slog.Any("error", err))
		}
	}
}

// verificationsAsync hands the export to the background worker, so big
// companies do not tie up a request slot for minutes.
func (h *Handler) verificationsAsync(w http.ResponseWriter, r *http.Request) {
	if h.enqueue == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	companyID, err := tenant.FromRequest(r, h.defaultCompany)
	if err != nil {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}
	filter, err := verification.ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reportType := r.URL.Query().Get("report_type")
	if reportType == "" {
		reportType = "csv"
	}
	jobID, err := h.enqueue(r.Context(), companyID, reportType, filter.FilterSet())
	if err != nil {
		h.logger.Error("enqueue report build", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"job_id":"` + jobID + `"}`))
}

// collect walks every page of the filtered list.
func (h *Handler) collect(ctx context.Context, companyID int64, filter verification.Filter) ([]verification.Entry, error) {
	filter.Limit = 100
	var entries []verification.Entry
	for page := 1; page <= maxReportPages; page++ {
		filter.Page = page
		result, err := h.entries.List(ctx, companyID, filter)
		if err != nil {
			return nil, err
		}
		entries = append(entries, result.Items...)
		if page >= result.TotalPages {
			break
		}
	}
	return entries, nil
}
