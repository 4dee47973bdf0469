package appeal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/shared"
	"github.com/veritrack/veritrack/internal/tenant"
	"github.com/veritrack/veritrack/internal/view"
)

const statusKey = "appeal_status"

// Handler serves the appeal list page and its JSON API.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	codec          listview.Codec
	location       *time.Location
	defaultCompany int64
}

// NewHandler constructs the appeal handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, loc *time.Location, defaultCompany int64) *Handler {
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
		codec:          listview.Codec{Allowed: []string{statusKey}},
		location:       loc,
		defaultCompany: defaultCompany,
	}
}

// MountAPI attaches the JSON endpoints. The tenant middleware must be
// installed on the parent router.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.handleListAPI)
	r.Post("/", h.handleCreateAPI)
	r.Get("/{id}", h.handleGetAPI)
	r.Put("/{id}", h.handleUpdateAPI)
	r.Delete("/{id}", h.handleDeleteAPI)
}

// MountPages attaches the server-rendered list page.
func (h *Handler) MountPages(r chi.Router) {
	r.Get("/", h.handlePage)
}

func (h *Handler) handleListAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	page, limit := listview.Codec{}.DecodePage(r.URL.RawQuery)
	status := Status(r.URL.Query().Get(statusKey))

	result, err := h.service.List(r.Context(), companyID, status, page, limit)
	if err != nil {
		var formErrs FormErrors
		if errors.As(err, &formErrs) {
			writeError(w, http.StatusBadRequest, formErrs.Error())
			return
		}
		h.logger.Error("list appeals", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load appeals")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	appealID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || appealID < 1 {
		writeError(w, http.StatusBadRequest, "appeal id is required")
		return
	}

	appeal, err := h.service.Get(r.Context(), companyID, appealID)
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, "appeal not found")
		return
	}
	if err != nil {
		h.logger.Error("get appeal", slog.Any("error", err), slog.Int64("appeal_id", appealID))
		writeError(w, http.StatusInternalServerError, "failed to load appeal")
		return
	}
	writeJSON(w, http.StatusOK, appeal)
}

func (h *Handler) handleCreateAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appeal, err := h.service.Create(r.Context(), companyID, form)
	if err != nil {
		h.writeFormError(w, err, "create appeal")
		return
	}
	writeJSON(w, http.StatusCreated, appeal)
}

func (h *Handler) handleUpdateAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	appealID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || appealID < 1 {
		writeError(w, http.StatusBadRequest, "appeal id is required")
		return
	}
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appeal, err := h.service.Update(r.Context(), companyID, appealID, form)
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, "appeal not found")
		return
	}
	if err != nil {
		h.writeFormError(w, err, "update appeal")
		return
	}
	writeJSON(w, http.StatusOK, appeal)
}

func (h *Handler) handleDeleteAPI(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "company_id is required")
		return
	}
	appealID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || appealID < 1 {
		writeError(w, http.StatusBadRequest, "appeal id is required")
		return
	}

	err = h.service.Delete(r.Context(), companyID, appealID)
	if errors.Is(err, shared.ErrNotFound) {
		writeError(w, http.StatusNotFound, "appeal not found")
		return
	}
	if err != nil {
		h.logger.Error("delete appeal", slog.Any("error", err), slog.Int64("appeal_id", appealID))
		writeError(w, http.StatusInternalServerError, "failed to delete appeal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusOption feeds the status select on the filter form.
type StatusOption struct {
	Value    string
	Label    string
	Selected bool
}

// Badge is a coloured status label.
type Badge struct {
	Label string
	Class string
}

// Row is the display form of one appeal.
type Row struct {
	ID             int64
	ReceivedAt     string
	ClientFullName string
	Address        string
	PhoneNumber    string
	DispatcherName string
	AdditionalInfo string
	Status         Badge
}

// ViewModel feeds the appeal list template.
type ViewModel struct {
	CompanyID     int64
	StatusOptions []StatusOption
	Limit         int
	LimitOptions  []int
	Rows          []Row
	ColSpan       int
	Total         int
	Pager         *view.Pager
	Query         string
	LoadError     string
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	companyID, err := tenant.FromRequest(r, h.defaultCompany)
	if err != nil {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}

	page, limit := h.codec.DecodePage(r.URL.RawQuery)
	filters := h.codec.Decode(r.URL.RawQuery)
	status := Status(filters.Get(statusKey))

	var loadError string
	if status != "" && !status.Valid() {
		loadError = "unknown appeal status"
		status = ""
		filters = listview.FilterSet{}
	}

	req := listview.NewPageRequest(filters, page, limit)
	canonical := h.codec.Encode(companyID, req)
	if loadError == "" && r.URL.RawQuery != canonical {
		http.Redirect(w, r, r.URL.Path+"?"+canonical, http.StatusFound)
		return
	}

	vm := ViewModel{
		CompanyID:    companyID,
		Limit:        req.Limit,
		LimitOptions: []int{30, 50, 100},
		ColSpan:      7,
		Query:        canonical,
		LoadError:    loadError,
	}
	for _, s := range Statuses() {
		vm.StatusOptions = append(vm.StatusOptions, StatusOption{
			Value:    string(s),
			Label:    s.Label(),
			Selected: s == status,
		})
	}

	if loadError == "" {
		result, err := h.service.List(r.Context(), companyID, status, req.Page, req.Limit)
		if err != nil {
			h.logger.Error("load appeal list", slog.Any("error", err))
			vm.LoadError = "Failed to load appeals, please retry."
		} else {
			vm.Rows = buildRows(result.Items, h.location)
			vm.Total = result.Total
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
		Title:       "Appeals",
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/appeals.html", data); err != nil {
		h.logger.Error("render appeal list", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func buildRows(items []Appeal, loc *time.Location) []Row {
	rows := make([]Row, 0, len(items))
	for _, appeal := range items {
		row := Row{
			ID:             appeal.ID,
			ReceivedAt:     appeal.DateOfGet.In(loc).Format("02.01.2006"),
			ClientFullName: appeal.ClientFullName,
			Address:        appeal.Address,
			PhoneNumber:    appeal.PhoneNumber,
			AdditionalInfo: appeal.AdditionalInfo,
			Status:         statusBadge(appeal.Status),
		}
		if appeal.Dispatcher != nil {
			row.DispatcherName = appeal.Dispatcher.LastName + " " + appeal.Dispatcher.Name
		}
		rows = append(rows, row)
	}
	return rows
}

func statusBadge(status Status) Badge {
	badge := Badge{Label: status.Label()}
	switch status {
	case StatusDone:
		badge.Class = "badge-success"
	case StatusCancelled:
		badge.Class = "badge-danger"
	default:
		badge.Class = "badge-muted"
	}
	return badge
}

func (h *Handler) writeFormError(w http.ResponseWriter, err error, action string) {
	var formErrs FormErrors
	if errors.As(err, &formErrs) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  formErrs.Error(),
			"fields": formErrs,
		})
		return
	}
	h.logger.Error(action, slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "failed to save appeal")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
