package verificationhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/shared"
	"github.com/veritrack/veritrack/internal/tenant"
	"github.com/veritrack/veritrack/internal/verification"
	"github.com/veritrack/veritrack/internal/view"
)

// ListService defines the business contract for verification entries.
type ListService interface {
	List(ctx context.Context, companyID int64, f verification.Filter) (verification.ListResult, error)
	Delete(ctx context.Context, companyID, entryID int64) (verification.DeletedEntry, error)
}

// Handler serves the verification list page and its JSON API.
type Handler struct {
	logger         *slog.Logger
	service        ListService
	templates      *view.Engine
	codec          listview.Codec
	location       *time.Location
	defaultCompany int64
}

// NewHandler constructs the verification handler.
func NewHandler(logger *slog.Logger, service ListService, templates *view.Engine, loc *time.Location, defaultCompany int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		codec:          listview.Codec{Allowed: verification.FilterKeys},
		location:       loc,
		defaultCompany: defaultCompany,
	}
}

func (h *Handler) handleListAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	filter, err := verification.ParseFilter(r.URL.Query())
	if err != nil {
		var verr *verification.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid filter")
		return
	}

	result, err := h.service.List(r.Context(), companyID, filter)
	if err != nil {
		h.logger.Error("list verification entries", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeleteAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	entryID, err := strconv.ParseInt(r.URL.Query().Get("verification_entry_id"), 10, 64)
	if err != nil || entryID < 1 {
		writeError(w, http.StatusBadRequest, "verification_entry_id is required")
		return
	}

	deleted, err := h.service.Delete(r.Context(), companyID, entryID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
		return
	case errors.Is(err, shared.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "entry belongs to another company")
		return
	case err != nil:
		h.logger.Error("delete verification entry", slog.Any("error", err), slog.Int64("entry_id", entryID))
		writeError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	w.Header().Set("X-Deleted-Verified", strconv.FormatBool(deleted.Verified))
	w.WriteHeader(http.StatusNoContent)
}

// handlePage renders the server-side list view. The address bar is the
// only persisted client state: a request whose query string is not the
// canonical serialization of its own filters is redirected to it once,
// so every rendered page is bookmarkable with defaults made explicit.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	companyID, err := tenant.FromRequest(r, h.defaultCompany)
	if err != nil {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}

	filter, err := verification.ParseFilter(r.URL.Query())
	var loadError string
	if err != nil {
		var verr *verification.ValidationError
		if errors.As(err, &verr) {
			loadError = verr.Message
		} else {
			loadError = "invalid filter"
		}
		filter = verification.Filter{Page: listview.DefaultPage, Limit: listview.DefaultLimit}
	}

	req := listview.NewPageRequest(filter.FilterSet(), filter.Page, filter.Limit)
	canonical := h.codec.Encode(companyID, req)
	if loadError == "" && r.URL.RawQuery != canonical {
		http.Redirect(w, r, r.URL.Path+"?"+canonical, http.StatusFound)
		return
	}

	vm := ViewModel{
		CompanyID:    companyID,
		Filters:      req.Filters,
		Limit:        req.Limit,
		LimitOptions: []int{30, 50, 100},
		ColSpan:      tableColumns,
		Query:        canonical,
		CSVReportURL: "/reports/verifications?" + canonical + "&report_type=csv",
		PDFReportURL: "/reports/verifications?" + canonical + "&report_type=pdf",
		LoadError:    loadError,
	}

	if loadError == "" {
		result, err := h.service.List(r.Context(), companyID, filter)
		if err != nil {
			h.logger.Error("load verification list", slog.Any("error", err))
			vm.LoadError = "Failed to load entries, please retry."
		} else {
			vm.Rows = buildRows(result.Items, h.location)
			vm.Stats = result.Stats()
			pager, show := listview.BuildPager(result.Page, result.TotalPages, listview.DefaultRadius)
			vm.Pager = view.NewPager(pager, show, func(page int) string {
				pageReq := listview.NewPageRequest(req.Filters, page, req.Limit)
				return r.URL.Path + "?" + h.codec.Encode(companyID, pageReq)
			})
		}
	}

	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data := view.TemplateData{
		Title:       "Verification entries",
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/verifications.html", data); err != nil {
		h.logger.Error("render verification list", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
