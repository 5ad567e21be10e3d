package action

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adarchive/adlib/internal/domain"
)

const defaultTrendAddr = ":8080"

// TrendPoint is one day's worth of ads, keyed by delivery start date.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// startTimeTrending aggregates the records per ad_delivery_start_time day
// and serves the trend on a local HTTP server until interrupted. The
// listen address is the first positional arg when given.
func startTimeTrending(ctx context.Context, records domain.Aggregate, env Env) error {
	addr := defaultTrendAddr
	if len(env.Args) > 0 && env.Args[0] != "" {
		addr = env.Args[0]
	}

	trend := buildTrend(records)
	if len(trend) == 0 {
		return fmt.Errorf("no records carry ad_delivery_start_time; add it to --fields")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "adlib-trending")
	})
	r.Get("/trend.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trend)
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		trendPage.Execute(w, trend)
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	env.Logger.Info("serving start-time trend",
		slog.String("addr", addr),
		slog.Int("days", len(trend)),
	)
	fmt.Fprintf(env.Stdout, "Serving trend for %d ads on %s (Ctrl-C to stop)\n", len(records), addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("trend server failed: %w", err)
	}
	return nil
}

// buildTrend counts records per delivery start date, ascending.
func buildTrend(records domain.Aggregate) []TrendPoint {
	byDay := make(map[string]int)
	for _, rec := range records {
		start, _ := rec["ad_delivery_start_time"].(string)
		if len(start) < 10 {
			continue
		}
		byDay[start[:10]]++
	}

	trend := make([]TrendPoint, 0, len(byDay))
	for day, count := range byDay {
		trend = append(trend, TrendPoint{Date: day, Count: count})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

var trendPage = template.Must(template.New("trend").Parse(`<!DOCTYPE html>
<html><head><title>Ad delivery start trend</title></head><body>
<h1>Ads by delivery start date</h1>
<table border="1" cellpadding="4">
<tr><th>Date</th><th>Ads</th></tr>
{{range .}}<tr><td>{{.Date}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
</body></html>
`))
