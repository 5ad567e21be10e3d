package action

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adarchive/adlib/internal/domain"
)

const defaultDBPath = "adlib.db"

// saveToDB persists the aggregate into a SQLite database, one row per
// record, stamped with the invocation run id. The database path is the
// first positional arg when given.
func saveToDB(ctx context.Context, records domain.Aggregate, env Env) error {
	path := defaultDBPath
	if len(env.Args) > 0 && env.Args[0] != "" {
		path = env.Args[0]
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	now := time.Now().UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, field_spec, record_count, created_at) VALUES (?, ?, ?, ?)`,
		env.RunID, env.FieldSpec, len(records), now,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ads (run_id, seq, ad_id, search_term, page_id, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", seq, err)
		}
		adID, _ := rec["id"].(string)
		pageID, _ := rec["page_id"].(string)
		if _, err := stmt.ExecContext(ctx,
			env.RunID, seq, adID, rec.SearchTerm(), pageID, string(raw), now,
		); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if env.Verbose {
		env.Logger.Info("records persisted",
			slog.String("path", path),
			slog.String("run_id", env.RunID),
			slog.Int("rows", len(records)),
		)
	}
	fmt.Fprintf(env.Stdout, "Successfully saved %d ads to %s (run %s)\n", len(records), path, env.RunID)
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			field_spec TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ads (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			ad_id TEXT,
			search_term TEXT NOT NULL,
			page_id TEXT,
			record TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ads_search_term ON ads(search_term)`,
		`CREATE INDEX IF NOT EXISTS idx_ads_ad_id ON ads(ad_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
