// adlib is a command-line client for the Ad Library archive API: it fans
// one query out across search terms, aggregates the matching ads and
// hands them to an output action (CSV, count summary, trend server,
// SQLite export).
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adarchive/adlib/internal/action"
	"github.com/adarchive/adlib/internal/config"
	"github.com/adarchive/adlib/internal/orchestrator"
	"github.com/adarchive/adlib/internal/query"
	"github.com/adarchive/adlib/internal/telemetry"
	"github.com/adarchive/adlib/internal/traversal"
	"github.com/adarchive/adlib/internal/vocab"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCommand builds the CLI surface. Vocabulary validation runs at flag
// parse time, so no network call happens on bad input.
func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "adlib",
		Usage:     "The Ad Library archive API CLI utility",
		ArgsUsage: "action [args...]  (actions: " + strings.Join(action.Names(), ", ") + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "access-token",
				Aliases:  []string{"t"},
				Usage:    "the API access token",
				Required: true,
				Sources:  cli.EnvVars("ADLIB_ACCESS_TOKEN"),
			},
			&cli.StringFlag{
				Name:     "fields",
				Aliases:  []string{"f"},
				Usage:    "comma-separated fields to retrieve from the archive API",
				Required: true,
				Validator: func(v string) error {
					_, err := vocab.Fields(v)
					return err
				},
			},
			&cli.StringFlag{
				Name:    "search-terms",
				Aliases: []string{"s"},
				Usage:   "multiple search terms separated by commas",
			},
			&cli.StringFlag{
				Name:     "country",
				Aliases:  []string{"c"},
				Usage:    "comma-separated country codes or names",
				Required: true,
				Validator: func(v string) error {
					_, err := vocab.CountryCodes(v)
					return err
				},
			},
			&cli.StringFlag{
				Name:  "search-page-ids",
				Usage: "restrict the search to specific page ids",
			},
			&cli.StringFlag{
				Name:  "ad-active-status",
				Usage: "filter by the current status of the ads",
			},
			&cli.StringFlag{
				Name:  "after-date",
				Usage: "only return ads that started delivery after this date (YYYY-MM-DD)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "records requested per API call",
				Validator: func(v int) error {
					if v <= 0 {
						return fmt.Errorf("batch-size must be a positive integer, got %d", v)
					}
					return nil
				},
			},
			&cli.IntFlag{
				Name:  "retry-limit",
				Value: -1,
				Usage: "retries per failing batch before the run aborts",
				Validator: func(v int) error {
					if v < 0 {
						return fmt.Errorf("retry-limit must be non-negative, got %d", v)
					}
					return nil
				},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, stdout)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, stdout io.Writer) error {
	verbose := cmd.Bool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The validators already ran at parse time; rerun them here for
	// their normalized outputs.
	fields, err := vocab.Fields(cmd.String("fields"))
	if err != nil {
		return err
	}
	countries, err := vocab.CountryCodes(cmd.String("country"))
	if err != nil {
		return err
	}

	batchSize := cmd.Int("batch-size")
	if batchSize == 0 {
		batchSize = cfg.API.BatchSize
	}
	retryLimit := cmd.Int("retry-limit")
	if retryLimit < 0 {
		retryLimit = cfg.API.RetryLimit
	}

	q, err := query.New(query.Params{
		AccessToken:  cmd.String("access-token"),
		Fields:       fields,
		Countries:    countries,
		SearchTerms:  cmd.String("search-terms"),
		PageIDs:      cmd.String("search-page-ids"),
		ActiveStatus: cmd.String("ad-active-status"),
		AfterDate:    cmd.String("after-date"),
		BatchSize:    batchSize,
		RetryLimit:   retryLimit,
		Verbose:      verbose,
	})
	if err != nil {
		return err
	}

	args := cmd.Args()
	if args.Len() == 0 {
		return fmt.Errorf("missing action (known actions: %s)", strings.Join(action.Names(), ", "))
	}
	kind, err := action.Parse(args.First())
	if err != nil {
		return err
	}

	if cfg.Trace.Enabled {
		shutdown, err := telemetry.InitTracer("adlib", logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	runID := uuid.NewString()
	logger.Debug("starting run",
		slog.String("run_id", runID),
		slog.String("action", kind.String()),
		slog.Int("search_terms", len(q.SearchTerms)),
	)

	client := traversal.NewClient(
		traversal.WithBaseURL(cfg.API.BaseURL),
		traversal.WithVersion(cfg.API.Version),
		traversal.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
		traversal.WithLogger(logger),
	)

	records, err := orchestrator.NewForClient(client, logger).Run(ctx, q)
	if err != nil {
		return err
	}

	return action.Dispatch(ctx, kind, records, action.Env{
		Args:      args.Tail(),
		FieldSpec: q.FieldSpec(),
		Verbose:   verbose,
		RunID:     runID,
		Logger:    logger,
		Stdout:    stdout,
	})
}
