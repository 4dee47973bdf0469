package appeal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/veritrack/veritrack/internal/shared"
)

// ListResult is the paginated envelope returned by the appeal list API.
type ListResult struct {
	CompanyID  int64    `json:"company_id"`
	Items      []Appeal `json:"items"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total_entries"`
}

// FormErrors maps field names to messages the client can show next to
// inputs.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	return "invalid appeal form: " + strings.Join(fields, ", ")
}

// Repo is the persistence contract the service depends on.
type Repo interface {
	List(ctx context.Context, companyID int64, status Status, page, limit int) ([]Appeal, int, error)
	Get(ctx context.Context, companyID, appealID int64) (Appeal, error)
	Create(ctx context.Context, companyID int64, dateOfGet time.Time, form Form) (Appeal, error)
	Update(ctx context.Context, companyID, appealID int64, dateOfGet time.Time, form Form) (Appeal, error)
	Delete(ctx context.Context, companyID, appealID int64) error
}

// Service coordinates appeal reads and mutations.
type Service struct {
	repo     Repo
	validate *validator.Validate
}

// NewService constructs the appeal service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns one page of appeals, optionally narrowed to a status.
func (s *Service) List(ctx context.Context, companyID int64, status Status, page, limit int) (ListResult, error) {
	if status != "" && !status.Valid() {
		return ListResult{}, FormErrors{"appeal_status": "unknown status"}
	}
	appeals, total, err := s.repo.List(ctx, companyID, status, page, limit)
	if err != nil {
		return ListResult{}, err
	}
	paging := shared.NewPagination(page, limit, total)
	return ListResult{
		CompanyID:  companyID,
		Items:      appeals,
		Page:       paging.Page,
		Limit:      paging.PerPage,
		TotalPages: paging.TotalPages,
		Total:      total,
	}, nil
}

// Get returns one appeal by id.
func (s *Service) Get(ctx context.Context, companyID, appealID int64) (Appeal, error) {
	return s.repo.Get(ctx, companyID, appealID)
}

// Create validates the form and inserts a new appeal.
func (s *Service) Create(ctx context.Context, companyID int64, form Form) (Appeal, error) {
	dateOfGet, err := s.checkForm(form)
	if err != nil {
		return Appeal{}, err
	}
	return s.repo.Create(ctx, companyID, dateOfGet, form)
}

// Update validates the form and rewrites an existing appeal.
func (s *Service) Update(ctx context.Context, companyID, appealID int64, form Form) (Appeal, error) {
	dateOfGet, err := s.checkForm(form)
	if err != nil {
		return Appeal{}, err
	}
	return s.repo.Update(ctx, companyID, appealID, dateOfGet, form)
}

// Delete removes one appeal.
func (s *Service) Delete(ctx context.Context, companyID, appealID int64) error {
	return s.repo.Delete(ctx, companyID, appealID)
}

func (s *Service) checkForm(form Form) (time.Time, error) {
	if err := s.validate.Struct(form); err != nil {
		formErrs := FormErrors{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range verrs {
				formErrs[fieldName(fieldErr.Field())] = messageFor(fieldErr)
			}
			return time.Time{}, formErrs
		}
		return time.Time{}, fmt.Errorf("validate appeal form: %w", err)
	}
	dateOfGet, err := time.Parse("2006-01-02", form.DateOfGet)
	if err != nil {
		return time.Time{}, FormErrors{"date_of_get": "expected YYYY-MM-DD"}
	}
	return dateOfGet, nil
}

func fieldName(structField string) string {
	switch structField {
	case "DispatcherID":
		return "dispatcher_id"
	case "DateOfGet":
		return "date_of_get"
	case "ClientFullName":
		return "client_full_name"
	case "Address":
		return "address"
	case "PhoneNumber":
		return "phone_number"
	case "AdditionalInfo":
		return "additional_info"
	case "Status":
		return "status"
	default:
		return structField
	}
}

func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "expected YYYY-MM-DD"
	case "oneof":
		return "unknown status"
	case "max":
		return "is too long"
	case "min":
		return "must be positive"
	default:
		return "is invalid"
	}
}
