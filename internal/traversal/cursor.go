package traversal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/adarchive/adlib/internal/domain"
)

const (
	// baseDelay is the base delay for exponential backoff.
	baseDelay = 500 * time.Millisecond
	// maxDelay caps the backoff delay.
	maxDelay = 10 * time.Second
)

// calculateBackoff returns the delay for the given retry attempt using
// exponential backoff.
func calculateBackoff(attempt int) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	return time.Duration(delay)
}

// Cursor walks one traversal's pages. It is single-use and not safe for
// concurrent use; the orchestrator drives it to exhaustion synchronously.
type Cursor struct {
	client     *Client
	nextURL    string
	afterDate  string
	retryLimit int
	page       int
}

// pageResponse mirrors the ads_archive response envelope.
type pageResponse struct {
	Data   []domain.Record `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *graphError `json:"error"`
}

// Next fetches the next batch of records. It returns ok=false once the
// traversal is exhausted. A non-nil error is terminal for the whole
// traversal; transient failures have already been retried up to the
// cursor's retry limit.
func (cur *Cursor) Next(ctx context.Context) (batch []domain.Record, ok bool, err error) {
	for cur.nextURL != "" {
		page, err := cur.fetchPage(ctx)
		if err != nil {
			cur.nextURL = ""
			return nil, false, err
		}

		cur.page++
		cur.nextURL = page.Paging.Next

		records := page.Data
		if cur.afterDate != "" {
			kept := keepAfter(records, cur.afterDate)
			// Pages arrive newest-first; once a whole page predates the
			// bound, every following page does too.
			if len(kept) == 0 && len(records) > 0 {
				cur.nextURL = ""
				return nil, false, nil
			}
			records = kept
		}
		if len(records) == 0 {
			// Empty page with a next link; keep walking.
			continue
		}
		return records, true, nil
	}
	return nil, false, nil
}

// fetchPage retrieves the current page, retrying transient failures.
func (cur *Cursor) fetchPage(ctx context.Context) (*pageResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= cur.retryLimit; attempt++ {
		page, err := cur.client.getPage(ctx, cur.nextURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) || !apiErr.Transient() {
			return nil, err
		}
		if attempt == cur.retryLimit {
			break
		}

		delay := calculateBackoff(attempt)
		cur.client.logger.Warn("archive page fetch failed, retrying",
			slog.Int("page", cur.page+1),
			slog.Int("attempt", attempt+1),
			slog.Int("retry_limit", cur.retryLimit),
			slog.Duration("backoff", delay),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	cur.client.logger.Error("archive page fetch failed after all retries",
		slog.Int("page", cur.page+1),
		slog.Int("retries", cur.retryLimit),
		slog.String("error", lastErr.Error()),
	)
	return nil, lastErr
}

// getPage performs one HTTP exchange and decodes the envelope.
func (c *Client) getPage(ctx context.Context, pageURL string) (*pageResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.APIError{Type: domain.ErrorTypeInvalidRequest, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.APIError{Type: domain.ErrorTypeTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.APIError{Type: domain.ErrorTypeTransport, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(respBody, resp.StatusCode)
	}

	var page pageResponse
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, &domain.APIError{
			Type:       domain.ErrorTypeServer,
			Message:    "malformed response: " + err.Error(),
			StatusCode: resp.StatusCode,
		}
	}
	if page.Error != nil {
		return nil, page.Error.toCanonical(resp.StatusCode)
	}

	c.logger.Debug("fetched archive page",
		slog.Int("records", len(page.Data)),
		slog.Bool("has_next", page.Paging.Next != ""),
	)
	return &page, nil
}

// keepAfter filters records whose ad_delivery_start_time is on or after
// the ISO date bound. Comparison is lexical on the date prefix, which is
// exact for ISO-8601 timestamps.
func keepAfter(records []domain.Record, afterDate string) []domain.Record {
	var kept []domain.Record
	for _, r := range records {
		start, _ := r["ad_delivery_start_time"].(string)
		if len(start) >= len(afterDate) && start[:len(afterDate)] >= afterDate {
			kept = append(kept, r)
		}
	}
	return kept
}
