package appeal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	appeals   []Appeal
	total     int
	listErr   error
	listCalls int

	created     *Appeal
	lastDate    time.Time
	lastCompany int64
}

func (s *stubRepo) List(_ context.Context, companyID int64, _ Status, _, _ int) ([]Appeal, int, error) {
	s.listCalls++
	s.lastCompany = companyID
	return s.appeals, s.total, s.listErr
}

func (s *stubRepo) Get(_ context.Context, _, appealID int64) (Appeal, error) {
	return Appeal{ID: appealID}, nil
}

func (s *stubRepo) Create(_ context.Context, companyID int64, dateOfGet time.Time, form Form) (Appeal, error) {
	s.lastCompany = companyID
	s.lastDate = dateOfGet
	appeal := Appeal{
		ID:             101,
		CompanyID:      companyID,
		DispatcherID:   form.DispatcherID,
		DateOfGet:      dateOfGet,
		ClientFullName: form.ClientFullName,
		Address:        form.Address,
		PhoneNumber:    form.PhoneNumber,
		AdditionalInfo: form.AdditionalInfo,
		Status:         form.Status,
	}
	if appeal.Status == "" {
		appeal.Status = StatusNew
	}
	s.created = &appeal
	return appeal, nil
}

func (s *stubRepo) Update(_ context.Context, _, appealID int64, dateOfGet time.Time, form Form) (Appeal, error) {
	s.lastDate = dateOfGet
	return Appeal{ID: appealID, Status: form.Status}, nil
}

func (s *stubRepo) Delete(_ context.Context, _, _ int64) error { return nil }

func validForm() Form {
	return Form{
		DispatcherID:   4,
		DateOfGet:      "2026-04-02",
		ClientFullName: "Sidorova Anna",
		Address:        "Mira 5",
		PhoneNumber:    "+79001234567",
		Status:         StatusScheduled,
	}
}

func TestListBuildsEnvelope(t *testing.T) {
	repo := &stubRepo{appeals: make([]Appeal, 30), total: 61}
	svc := NewService(repo)

	result, err := svc.List(context.Background(), 7, "", 2, 30)
	require.NoError(t, err)
	require.Equal(t, int64(7), result.CompanyID)
	require.Equal(t, 2, result.Page)
	require.Equal(t, 30, result.Limit)
	require.Equal(t, 3, result.TotalPages)
	require.Equal(t, 61, result.Total)
}

func TestListEmptyHasOnePage(t *testing.T) {
	svc := NewService(&stubRepo{})

	result, err := svc.List(context.Background(), 7, StatusDone, 1, 30)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalPages)
	require.Equal(t, 0, result.Total)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.List(context.Background(), 7, Status("archived"), 1, 30)
	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	require.Contains(t, formErrs, "appeal_status")
	require.Equal(t, 0, repo.listCalls)
}

func TestCreateValidForm(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	appeal, err := svc.Create(context.Background(), 7, validForm())
	require.NoError(t, err)
	require.Equal(t, int64(101), appeal.ID)
	require.Equal(t, StatusScheduled, appeal.Status)
	require.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), repo.lastDate)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 7, Form{})
	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	require.Contains(t, formErrs, "dispatcher_id")
	require.Contains(t, formErrs, "date_of_get")
	require.Contains(t, formErrs, "client_full_name")
	require.Contains(t, formErrs, "address")
	require.Contains(t, formErrs, "phone_number")
	require.Nil(t, repo.created)
}

func TestCreateRejectsBadDate(t *testing.T) {
	svc := NewService(&stubRepo{})

	form := validForm()
	form.DateOfGet = "02.04.2026"
	_, err := svc.Create(context.Background(), 7, form)
	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	require.Contains(t, formErrs, "date_of_get")
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(&stubRepo{})

	form := validForm()
	form.Status = Status("archived")
	_, err := svc.Create(context.Background(), 7, form)
	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	require.Equal(t, "unknown status", formErrs["status"])
}

func TestListPropagatesRepoError(t *testing.T) {
	svc := NewService(&stubRepo{listErr: errors.New("pool closed")})

	_, err := svc.List(context.Background(), 7, "", 1, 30)
	require.Error(t, err)
	var formErrs FormErrors
	require.False(t, errors.As(err, &formErrs))
}
