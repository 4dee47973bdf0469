package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/veritrack/veritrack/internal/appeal"
	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/verification"
)

// Client is the JSON API consumer used by report workers and other
// services. Each client is bound to one company.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tenantID   int64
}

// NewClient constructs a new client for one company.
func NewClient(baseURL string, tenantID int64) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tenantID: tenantID,
	}
}

// ListEntries fetches one page of verification entries.
func (c *Client) ListEntries(ctx context.Context, filters listview.FilterSet, page, limit int) (verification.ListResult, error) {
	codec := listview.Codec{Allowed: verification.FilterKeys}
	query := codec.Encode(c.tenantID, listview.NewPageRequest(restrict(filters, codec.Allowed), page, limit))

	var result verification.ListResult
	if err := c.getJSON(ctx, "/api/verifications?"+query, &result); err != nil {
		return verification.ListResult{}, err
	}
	return result, nil
}

// DeleteEntry removes one verification entry and reports whether the
// deleted entry was verified, so the caller can adjust counters locally.
func (c *Client) DeleteEntry(ctx context.Context, entryID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/verifications/delete?company_id=%d&verification_entry_id=%d", c.baseURL, c.tenantID, entryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusNoContent {
		return false, errorFromResponse(resp)
	}
	verified, _ := strconv.ParseBool(resp.Header.Get("X-Deleted-Verified"))
	return verified, nil
}

// ListAppeals fetches one page of appeals, optionally narrowed to a
// status.
func (c *Client) ListAppeals(ctx context.Context, status appeal.Status, page, limit int) (appeal.ListResult, error) {
	filters := listview.FilterSet{}
	if status != "" {
		filters = filters.With("appeal_status", string(status))
	}
	codec := listview.Codec{Allowed: []string{"appeal_status"}}
	query := codec.Encode(c.tenantID, listview.NewPageRequest(filters, page, limit))

	var result appeal.ListResult
	if err := c.getJSON(ctx, "/api/appeals?"+query, &result); err != nil {
		return appeal.ListResult{}, err
	}
	return result, nil
}

// restrict keeps only the keys the server recognises, so the canonical
// query never carries stray parameters.
func restrict(fs listview.FilterSet, allowed []string) listview.FilterSet {
	out := listview.FilterSet{}
	for _, key := range allowed {
		if value := fs.Get(key); value != "" {
			out = out.With(key, value)
		}
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// errorFromResponse prefers the server's own {"error": ...} message and
// falls back to a bare status error when the body is not readable.
func errorFromResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: payload.Error}
		}
	}
	return &StatusError{Status: resp.StatusCode}
}
