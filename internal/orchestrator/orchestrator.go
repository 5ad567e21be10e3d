// Package orchestrator fans one query out across its search terms. Terms
// run strictly in submission order, one traversal at a time; every record
// is tagged with its originating term and appended to a single ordered
// aggregate. A traversal failure on any term aborts the whole run and
// discards what was gathered so far.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adarchive/adlib/internal/domain"
	"github.com/adarchive/adlib/internal/query"
	"github.com/adarchive/adlib/internal/traversal"
)

// Cursor is a single-use producer of record batches for one term.
// *traversal.Cursor implements it.
type Cursor interface {
	Next(ctx context.Context) (batch []domain.Record, ok bool, err error)
}

// Searcher is the traversal collaborator: one Search call per term,
// producing a single-use cursor over that term's record batches.
type Searcher interface {
	Search(req traversal.Request) Cursor
}

// clientSearcher adapts *traversal.Client to the Searcher interface.
type clientSearcher struct {
	c *traversal.Client
}

func (s clientSearcher) Search(req traversal.Request) Cursor {
	return s.c.Search(req)
}

// NewForClient creates an orchestrator backed by the real archive client.
func NewForClient(c *traversal.Client, logger *slog.Logger) *Orchestrator {
	return New(clientSearcher{c: c}, logger)
}

// Orchestrator drives the per-term traversals and owns the aggregate
// until it is handed to an action.
type Orchestrator struct {
	searcher Searcher
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates an orchestrator on top of the given traversal client.
func New(searcher Searcher, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		logger:   logger,
		tracer:   otel.Tracer("adlib/orchestrator"),
	}
}

// Run executes every traversal the configuration calls for and returns
// the ordered aggregate. Records keep (term order, batch order, in-batch
// order); there is no dedup across terms and no parallelism.
func (o *Orchestrator) Run(ctx context.Context, cfg *query.Config) (domain.Aggregate, error) {
	var all domain.Aggregate

	for _, term := range cfg.SearchTerms {
		term = strings.TrimSpace(term)

		n, err := o.runTerm(ctx, cfg, term, &all)
		if err != nil {
			o.logger.Error("traversal failed, aborting run",
				slog.String("search_term", term),
				slog.Int("records_discarded", len(all)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		o.logger.Debug("search term complete",
			slog.String("search_term", term),
			slog.Int("records", n),
		)
	}

	o.logger.Debug("all search terms complete", slog.Int("records", len(all)))
	return all, nil
}

// runTerm drives a single term's cursor to exhaustion, tagging and
// appending records as batches arrive. Returns how many records the term
// contributed.
func (o *Orchestrator) runTerm(ctx context.Context, cfg *query.Config, term string, all *domain.Aggregate) (int, error) {
	ctx, span := o.tracer.Start(ctx, "traversal",
		trace.WithAttributes(attribute.String("search_term", term)))
	defer span.End()

	cursor := o.searcher.Search(traversal.Request{
		AccessToken:  cfg.AccessToken,
		FieldSpec:    cfg.FieldSpec(),
		SearchTerm:   term,
		Countries:    cfg.Countries,
		PageIDs:      cfg.PageIDs,
		ActiveStatus: cfg.ActiveStatus,
		AfterDate:    cfg.AfterDate,
		BatchSize:    cfg.BatchSize,
		RetryLimit:   cfg.RetryLimit,
	})

	count := 0
	for {
		batch, ok, err := cursor.Next(ctx)
		if err != nil {
			span.RecordError(err)
			return count, err
		}
		if !ok {
			span.SetAttributes(attribute.Int("records", count))
			return count, nil
		}
		for _, rec := range batch {
			rec[domain.SearchTermField] = term
			*all = append(*all, rec)
		}
		count += len(batch)
	}
}
