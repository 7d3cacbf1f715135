// Package remote is the gateway to the PostgREST-shaped backend: filtered
// reads, paged code downloads and batched merge-by-id upserts. Pure
// transport and row mapping; business rules stay in internal/app.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/inovatickets/validador/internal/domain"
)

const defaultPageSize = 1000

// Client talks to one backend with a static API key. It keeps no session
// state and performs no retries.
type Client struct {
	baseURL  string
	apiKey   string
	httpc    *http.Client
	pageSize int
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, timeouts).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithPageSize overrides the code-download page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvents downloads the authoritative event catalog.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.Event, error) {
	query := url.Values{"select": {"*"}}

	var raw []rawRecord
	if err := c.getJSON(ctx, "/events", query, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	out := make([]domain.Event, 0, len(raw))
	for _, r := range raw {
		e, err := decodeEvent(r)
		if err != nil {
			return nil, fmt.Errorf("fetch events: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// FetchSectors downloads sectors, server-side filtered by event when an id
// is supplied.
func (c *Client) FetchSectors(ctx context.Context, eventID string) ([]domain.Sector, error) {
	query := url.Values{"select": {"*"}}
	if eventID != "" {
		query.Set("event_id", "eq."+eventID)
	}

	var raw []rawRecord
	if err := c.getJSON(ctx, "/sectors", query, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch sectors: %w", err)
	}

	out := make([]domain.Sector, 0, len(raw))
	for _, r := range raw {
		s, err := decodeSector(r)
		if err != nil {
			return nil, fmt.Errorf("fetch sectors: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// codesSelect joins each code with its sector so the event id can be
// recovered: the codes table itself has no event column.
const codesSelect = "id,code,used,used_at,device,sector_id,sectors!inner(id,name,event_id)"

// FetchTicketCodes downloads codes page by page, filtered by event when an
// id is supplied. Full-venue code sets exceed the backend's row cap, so the
// Range header walks the result in pageSize slices.
func (c *Client) FetchTicketCodes(ctx context.Context, eventID string) ([]domain.TicketCode, error) {
	query := url.Values{"select": {codesSelect}}
	if eventID != "" {
		query.Set("sectors.event_id", "eq."+eventID)
	}

	var out []domain.TicketCode
	for start := 0; ; start += c.pageSize {
		header := http.Header{
			"Range":  {fmt.Sprintf("items=%d-%d", start, start+c.pageSize-1)},
			"Prefer": {"count=exact"},
		}

		var raw []rawRecord
		total, err := c.getJSONRange(ctx, "/codes", query, header, &raw)
		if err != nil {
			return nil, fmt.Errorf("fetch codes: %w", err)
		}

		for _, r := range raw {
			tc, err := decodeTicketCode(r)
			if err != nil {
				return nil, fmt.Errorf("fetch codes: %w", err)
			}
			out = append(out, tc)
		}

		lastPage := len(raw) < c.pageSize
		reachedTotal := total >= 0 && len(out) >= total
		if lastPage || reachedTotal {
			break
		}
	}
	return out, nil
}

// UploadValidations sends locally-validated tickets as one batched upsert.
// Merge-by-primary-key makes retried uploads safe: a duplicate id overwrites
// instead of duplicating.
func (c *Client) UploadValidations(ctx context.Context, codes []domain.TicketCode) error {
	if len(codes) == 0 {
		return nil
	}

	payload := make([]slimTicketUpdate, 0, len(codes))
	for _, tc := range codes {
		payload = append(payload, newSlimTicketUpdate(tc))
	}

	header := http.Header{
		"Prefer": {"resolution=merge-duplicates,return=minimal"},
	}
	query := url.Values{"on_conflict": {"id"}}
	if err := c.send(ctx, http.MethodPost, "/codes", query, header, payload); err != nil {
		return fmt.Errorf("upsert codes: %w", err)
	}
	return nil
}

// UpdateTicketCode patches a single row with a partial field map. Legacy
// point-update path; batch uploads go through UploadValidations.
func (c *Client) UpdateTicketCode(ctx context.Context, id string, fields map[string]any) error {
	query := url.Values{"id": {"eq." + id}}
	if err := c.send(ctx, http.MethodPatch, "/codes", query, nil, fields); err != nil {
		return fmt.Errorf("update code %s: %w", id, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, header http.Header, dst any) error {
	_, err := c.getJSONRange(ctx, path, query, header, dst)
	return err
}

// getJSONRange performs a GET and decodes the array body. When the response
// carries a Content-Range total it is returned; otherwise -1.
func (c *Client) getJSONRange(ctx context.Context, path string, query url.Values, header http.Header, dst any) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return -1, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return -1, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return -1, err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return -1, fmt.Errorf("decode response: %w", err)
	}
	return contentRangeTotal(resp.Header.Get("Content-Range")), nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, header http.Header, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, query, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// contentRangeTotal extracts the total from a Content-Range header such as
// "0-999/35789". A missing header or "*" total yields -1.
func contentRangeTotal(value string) int {
	_, totalPart, ok := strings.Cut(value, "/")
	if !ok {
		return -1
	}
	total, err := strconv.Atoi(totalPart)
	if err != nil {
		return -1
	}
	return total
}
