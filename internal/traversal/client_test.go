package traversal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/adarchive/adlib/internal/domain"
)

func testClient(baseURL string) *Client {
	return NewClient(
		WithBaseURL(baseURL),
		WithVersion("v16.0"),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
}

func TestCursorFollowsPaging(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v16.0/ads_archive":
			// Verify the request the client built
			q := r.URL.Query()
			if q.Get("access_token") != "test-token" {
				t.Errorf("access_token = %q", q.Get("access_token"))
			}
			if q.Get("fields") != "search_term,page_id" {
				t.Errorf("fields = %q", q.Get("fields"))
			}
			if q.Get("search_terms") != "shoes" {
				t.Errorf("search_terms = %q", q.Get("search_terms"))
			}
			if q.Get("ad_reached_countries") != "US,GB" {
				t.Errorf("ad_reached_countries = %q", q.Get("ad_reached_countries"))
			}
			if q.Get("limit") != "2" {
				t.Errorf("limit = %q", q.Get("limit"))
			}
			if q.Get("search_page_ids") != "123" {
				t.Errorf("search_page_ids = %q", q.Get("search_page_ids"))
			}
			if q.Get("ad_active_status") != "ALL" {
				t.Errorf("ad_active_status = %q", q.Get("ad_active_status"))
			}
			fmt.Fprintf(w, `{
  "data": [{"id": "1"}, {"id": "2"}],
  "paging": {"next": "%s/page2"}
}`, ts.URL)
		case "/page2":
			fmt.Fprintln(w, `{"data": [{"id": "3"}]}`)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	cursor := testClient(ts.URL).Search(Request{
		AccessToken:  "test-token",
		FieldSpec:    "search_term,page_id",
		SearchTerm:   "shoes",
		Countries:    []string{"US", "GB"},
		PageIDs:      "123",
		ActiveStatus: "ALL",
		BatchSize:    2,
	})

	var ids []string
	for {
		batch, ok, err := cursor.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		for _, rec := range batch {
			id, _ := rec["id"].(string)
			ids = append(ids, id)
		}
	}

	want := []string{"1", "2", "3"}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestCursorRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error": {"message": "please retry", "code": 2, "is_transient": true}}`,
				http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"data": [{"id": "1"}]}`)
	}))
	defer ts.Close()

	cursor := testClient(ts.URL).Search(Request{
		AccessToken: "tok",
		FieldSpec:   "page_id",
		Countries:   []string{"US"},
		RetryLimit:  2,
	})

	batch, ok, err := cursor.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !ok || len(batch) != 1 {
		t.Fatalf("expected one record after retry, got ok=%v batch=%v", ok, batch)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestCursorExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": {"message": "still broken", "code": 1}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	cursor := testClient(ts.URL).Search(Request{
		AccessToken: "tok",
		FieldSpec:   "page_id",
		Countries:   []string{"US"},
		RetryLimit:  1,
	})

	_, _, err := cursor.Next(context.Background())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *domain.APIError, got %v", err)
	}
	if apiErr.Type != domain.ErrorTypeServer {
		t.Errorf("expected server error, got %q", apiErr.Type)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected initial attempt + 1 retry, got %d requests", got)
	}

	// The cursor is spent after a terminal failure.
	if _, ok, err := cursor.Next(context.Background()); ok || err != nil {
		t.Errorf("expected exhausted cursor, got ok=%v err=%v", ok, err)
	}
}

func TestCursorDoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`,
			http.StatusBadRequest)
	}))
	defer ts.Close()

	cursor := testClient(ts.URL).Search(Request{
		AccessToken: "bad-token",
		FieldSpec:   "page_id",
		Countries:   []string{"US"},
		RetryLimit:  5,
	})

	_, _, err := cursor.Next(context.Background())
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *domain.APIError, got %v", err)
	}
	if apiErr.Type != domain.ErrorTypeAuthentication {
		t.Errorf("expected authentication error, got %q", apiErr.Type)
	}
	if apiErr.Code != 190 {
		t.Errorf("expected code 190, got %d", apiErr.Code)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("auth errors must not be retried, saw %d requests", got)
	}
}

func TestCursorAfterDateStopsEarly(t *testing.T) {
	var calls atomic.Int32
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			fmt.Fprintf(w, `{
  "data": [
    {"id": "1", "ad_delivery_start_time": "2023-05-02T00:00:00+0000"},
    {"id": "2", "ad_delivery_start_time": "2023-04-30T00:00:00+0000"}
  ],
  "paging": {"next": "%s/older"}
}`, ts.URL)
			return
		}
		// Every record on this page predates the bound.
		fmt.Fprintf(w, `{
  "data": [{"id": "3", "ad_delivery_start_time": "2023-04-01T00:00:00+0000"}],
  "paging": {"next": "%s/evenolder"}
}`, ts.URL)
	}))
	defer ts.Close()

	cursor := testClient(ts.URL).Search(Request{
		AccessToken: "tok",
		FieldSpec:   "page_id",
		Countries:   []string{"US"},
		AfterDate:   "2023-05-01",
	})

	batch, ok, err := cursor.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", batch, ok, err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected the older record filtered out, got %v", batch)
	}
	if id, _ := batch[0]["id"].(string); id != "1" {
		t.Errorf("kept wrong record: %v", batch[0])
	}

	// Second page predates the bound entirely: traversal ends without
	// following its next link.
	if _, ok, err := cursor.Next(context.Background()); ok || err != nil {
		t.Fatalf("expected traversal end, got ok=%v err=%v", ok, err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected exactly 2 pages fetched, got %d", got)
	}
}
