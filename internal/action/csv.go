package action

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/adarchive/adlib/internal/domain"
)

const defaultCSVPath = "out.csv"

// saveToCSV writes the aggregate to a CSV file. Columns come from the
// original field spec, in spec order; the output path is the first
// positional arg when given.
func saveToCSV(records domain.Aggregate, env Env) error {
	path := defaultCSVPath
	if len(env.Args) > 0 && env.Args[0] != "" {
		path = env.Args[0]
	}
	columns := strings.Split(env.FieldSpec, ",")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellValue(rec[col])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	if env.Verbose {
		env.Logger.Info("csv written",
			slog.String("path", path),
			slog.Int("rows", len(records)),
		)
	}
	fmt.Fprintf(env.Stdout, "Successfully wrote %d ads to %s\n", len(records), path)
	return nil
}

// cellValue renders one record value into a CSV cell. Strings pass
// through; absent fields become empty cells; structured values are
// JSON-encoded so nothing is lost.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" the default formatting would add.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
