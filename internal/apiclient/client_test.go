package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritrack/veritrack/internal/appeal"
	"github.com/veritrack/veritrack/internal/listview"
)

func TestListEntriesSendsCanonicalQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"company_id":7,"items":[],"page":1,"limit":30,"total_pages":1,"total_entries":0,"verified_entry":0,"not_verified_entry":0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	filters := listview.FilterSet{}.With("city_id", "3").With("utm_source", "mail")

	result, err := client.ListEntries(context.Background(), filters, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(7), result.CompanyID)
	require.Equal(t, "company_id=7&city_id=3&limit=30&page=1", gotQuery)
}

func TestListEntriesDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"company_id":7,"items":[{"id":5,"factory_number":"FN-1"}],"page":2,"limit":30,"total_pages":3,"total_entries":61,"verified_entry":40,"not_verified_entry":21}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	result, err := client.ListEntries(context.Background(), nil, 2, 30)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "FN-1", result.Items[0].FactoryNumber)
	require.Equal(t, 61, result.TotalEntries)
}

func TestListEntriesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"filter date_range: date_from must not be after date_to"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	_, err := client.ListEntries(context.Background(), nil, 1, 30)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Message, "date_range")
}

func TestListEntriesStatusErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>nginx</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	_, err := client.ListEntries(context.Background(), nil, 1, 30)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.Status)
}

func TestListEntriesDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	_, err := client.ListEntries(context.Background(), nil, 1, 30)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestListEntriesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 7)
	_, err := client.ListEntries(context.Background(), nil, 1, 30)

	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestDeleteEntryReadsVerifiedHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "7", r.URL.Query().Get("company_id"))
		require.Equal(t, "12", r.URL.Query().Get("verification_entry_id"))
		w.Header().Set("X-Deleted-Verified", "true")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	verified, err := client.DeleteEntry(context.Background(), 12)
	require.NoError(t, err)
	require.True(t, verified)
}

func TestDeleteEntryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"entry not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	_, err := client.DeleteEntry(context.Background(), 999)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestListAppeals(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"company_id":7,"items":[{"id":1,"status":"new"}],"page":1,"limit":30,"total_pages":1,"total_entries":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	result, err := client.ListAppeals(context.Background(), appeal.StatusNew, 1, 30)
	require.NoError(t, err)
	require.Equal(t, "company_id=7&appeal_status=new&limit=30&page=1", gotQuery)
	require.Len(t, result.Items, 1)
	require.Equal(t, appeal.StatusNew, result.Items[0].Status)
}
