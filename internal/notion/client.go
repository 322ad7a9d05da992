package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the content API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultTimeout is the HTTP timeout for content API requests.
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the listing page size.
	DefaultPageSize = 100
	// DefaultFetchDelay is the minimum delay between successive calls.
	// The block-tree fetch path is rate limited hardest upstream, so the
	// whole client stays under 3 req/s.
	DefaultFetchDelay = 350 * time.Millisecond

	apiVersion = "2022-06-28"
)

// Client talks to the remote content database. All calls go through one
// rate limiter so sequential fetch loops never exceed the upstream limit.
// Construct once at process start and pass by parameter.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a content API client with the default delay policy.
func NewClient(token string, logger *slog.Logger) *Client {
	return NewClientWithConfig(token, DefaultBaseURL, DefaultFetchDelay, logger)
}

// NewClientWithConfig creates a client with custom endpoint and delay,
// used by tests to point at a fake server without the fetch delay.
func NewClientWithConfig(token, baseURL string, delay time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		logger:     logger,
	}
}

// do executes one API call: wait out the delay policy, send, decode.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Search returns one page of the generic paginated listing, filtered to
// page objects. Database membership is filtered client-side by the caller.
func (c *Client) Search(ctx context.Context, cursor string) (*SearchResponse, error) {
	payload := map[string]any{
		"filter":    map[string]string{"property": "object", "value": "page"},
		"page_size": DefaultPageSize,
	}
	if cursor != "" {
		payload["start_cursor"] = cursor
	}

	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchDatabasePages pages through the full listing and keeps the pages
// that belong to the given database, in listing order.
func (c *Client) SearchDatabasePages(ctx context.Context, databaseID string) ([]Page, error) {
	var pages []Page
	cursor := ""

	for {
		resp, err := c.Search(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("search pages: %w", err)
		}
		for _, page := range resp.Results {
			if page.BelongsTo(databaseID) {
				pages = append(pages, page)
			}
		}
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

// ListBlockChildren returns one page of a block's immediate children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string) (*BlockListResponse, error) {
	path := fmt.Sprintf("/blocks/%s/children?page_size=%d", blockID, DefaultPageSize)
	if cursor != "" {
		path += "&start_cursor=" + url.QueryEscape(cursor)
	}

	var resp BlockListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchBlockTree retrieves the full block tree under a page or block,
// recursing into any block flagged as having children.
func (c *Client) FetchBlockTree(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""

	for {
		resp, err := c.ListBlockChildren(ctx, blockID, cursor)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", blockID, err)
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	for i := range blocks {
		if blocks[i].HasChildren {
			children, err := c.FetchBlockTree(ctx, blocks[i].ID)
			if err != nil {
				return nil, err
			}
			blocks[i].Children = children
		}
	}

	return blocks, nil
}

// RetrievePage fetches a single page by ID.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage creates a page inside a database with the given properties.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any) (*Page, error) {
	payload := map[string]any{
		"parent":     map[string]string{"type": "database_id", "database_id": databaseID},
		"properties": properties,
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePageProperties replaces the given properties on a page.
func (c *Client) UpdatePageProperties(ctx context.Context, pageID string, properties map[string]any) error {
	payload := map[string]any{"properties": properties}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil)
}

// ArchivePage archives (soft-deletes) a page.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	payload := map[string]any{"archived": true}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil)
}

// AppendBlockChildren appends blocks to a page or block. Callers batch to
// the API's per-call block limit.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []Block) error {
	payload := map[string]any{"children": children}
	return c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", payload, nil)
}

// DeleteBlock removes a single block.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/blocks/"+blockID, nil, nil)
}

// RetrieveDatabase fetches a database container by ID.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// CreateDatabase creates a database under a parent page with the given
// property schema.
func (c *Client) CreateDatabase(ctx context.Context, parentPageID, title string, properties map[string]any) (*Database, error) {
	payload := map[string]any{
		"parent": map[string]string{"type": "page_id", "page_id": parentPageID},
		"title": []map[string]any{
			{"text": map[string]string{"content": title}},
		},
		"properties": properties,
	}

	var db Database
	if err := c.do(ctx, http.MethodPost, "/databases", payload, &db); err != nil {
		return nil, err
	}
	return &db, nil
}
