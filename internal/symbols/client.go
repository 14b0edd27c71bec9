// ABOUTME: Keyword search client for the remote symbol library
// ABOUTME: Returns a lazy, finite, non-restartable result stream

package symbols

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrRemoteUnavailable is recorded on the result stream when the symbol
// service cannot be reached. The stream still yields whatever was fetched;
// UI callers degrade to the partial (possibly empty) result set.
var ErrRemoteUnavailable = errors.New("symbol search service unreachable")

// DefaultPageSize is the per-request page size when config leaves it unset.
const DefaultPageSize = 24

// Symbol is a single search hit.
type Symbol struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Source   string `json:"source"`
}

// Config holds symbol service settings.
type Config struct {
	BaseURL  string
	PageSize int
}

// Client searches the remote symbol library.
type Client struct {
	http     *resty.Client
	pageSize int
	logger   *slog.Logger
}

// NewClient creates a symbol search client.
func NewClient(config Config) *Client {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		http:     resty.New().SetBaseURL(config.BaseURL),
		pageSize: pageSize,
		logger:   slog.Default().With("component", "symbols"),
	}
}

// Search returns a lazy result stream for the keyword. Keywords shorter than
// two characters short-circuit to an exhausted stream without a network call.
// Newer searches supersede older ones at the call site; streams are finite
// and cannot be restarted.
func (c *Client) Search(ctx context.Context, keyword string) *Results {
	keyword = strings.TrimSpace(keyword)
	if len(keyword) < 2 {
		return &Results{done: true}
	}
	return &Results{
		ctx:     ctx,
		client:  c,
		keyword: keyword,
	}
}

// Results iterates symbol search hits, fetching pages on demand.
// Usage follows the sql.Rows pattern: Next, Symbol, then Err.
type Results struct {
	ctx     context.Context
	client  *Client
	keyword string

	buffer  []Symbol
	current Symbol
	offset  int
	done    bool
	err     error
}

// Next advances to the next hit, fetching the next page when the buffer is
// drained. It returns false once the stream is exhausted or broken.
func (r *Results) Next() bool {
	if len(r.buffer) == 0 && !r.done {
		r.fetchPage()
	}
	if len(r.buffer) == 0 {
		return false
	}
	r.current = r.buffer[0]
	r.buffer = r.buffer[1:]
	return true
}

// Symbol returns the hit positioned by the last successful Next.
func (r *Results) Symbol() Symbol {
	return r.current
}

// Err reports a stream failure, if any. A failed fetch ends the stream; hits
// already fetched were still yielded.
func (r *Results) Err() error {
	return r.err
}

func (r *Results) fetchPage() {
	var page []Symbol
	res, err := r.client.http.R().
		SetContext(r.ctx).
		SetQueryParams(map[string]string{
			"q":      r.keyword,
			"limit":  fmt.Sprintf("%d", r.client.pageSize),
			"offset": fmt.Sprintf("%d", r.offset),
		}).
		SetResult(&page).
		Get("/v1/symbols/search")
	if err != nil {
		r.client.logger.Warn("symbol search failed, degrading to partial results",
			"keyword", r.keyword, "error", err)
		r.err = fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		r.done = true
		return
	}
	if res.StatusCode() != http.StatusOK {
		r.err = fmt.Errorf("%w: status code %d", ErrRemoteUnavailable, res.StatusCode())
		r.done = true
		return
	}

	r.buffer = append(r.buffer, page...)
	r.offset += len(page)
	if len(page) < r.client.pageSize {
		// Short page: the stream is finite and this was its last page
		r.done = true
	}
}
