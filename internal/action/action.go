// Package action routes the aggregated records to one of a closed set of
// output handlers. The set is enumerated at compile time and dispatched
// through an exhaustive switch; resolving the user-supplied name is the
// only stringly-typed step, and an unknown name is a clean user error.
package action

import (
	"context"
	"io"
	"log/slog"

	"github.com/adarchive/adlib/internal/domain"
)

// Kind identifies one output handler.
type Kind int

const (
	// KindSaveToCSV writes the aggregate to a CSV file with columns
	// derived from the field spec.
	KindSaveToCSV Kind = iota

	// KindPrintCount prints total and per-term record counts.
	KindPrintCount

	// KindStartTimeTrending serves a per-day delivery-start trend over a
	// local HTTP endpoint.
	KindStartTimeTrending

	// KindSaveToDB persists the aggregate into a SQLite database.
	KindSaveToDB
)

// kindNames fixes the public name of each kind. Order matters: it is the
// order names are listed in help output.
var kindNames = []struct {
	kind Kind
	name string
}{
	{KindSaveToCSV, "save_to_csv"},
	{KindPrintCount, "print_count"},
	{KindStartTimeTrending, "start_time_trending"},
	{KindSaveToDB, "save_to_db"},
}

// Names returns every action name in declaration order.
func Names() []string {
	names := make([]string, len(kindNames))
	for i, kn := range kindNames {
		names[i] = kn.name
	}
	return names
}

// Parse resolves an action name to its kind. Unknown names fail with
// domain.UnknownActionError listing the valid set.
func Parse(name string) (Kind, error) {
	for _, kn := range kindNames {
		if kn.name == name {
			return kn.kind, nil
		}
	}
	return 0, &domain.UnknownActionError{Name: name, Known: Names()}
}

// String returns the public name of the kind.
func (k Kind) String() string {
	for _, kn := range kindNames {
		if kn.kind == k {
			return kn.name
		}
	}
	return "unknown"
}

// Env carries the side-context an action may need: the positional args
// left after the action name, the original field spec (CSV derives its
// columns from it), verbosity, the invocation run id, and where to write
// human output.
type Env struct {
	Args      []string
	FieldSpec string
	Verbose   bool
	RunID     string
	Logger    *slog.Logger
	Stdout    io.Writer
}

// Dispatch invokes the handler for the kind. The switch is exhaustive
// over every declared kind; records content is the handler's business.
func Dispatch(ctx context.Context, kind Kind, records domain.Aggregate, env Env) error {
	switch kind {
	case KindSaveToCSV:
		return saveToCSV(records, env)
	case KindPrintCount:
		return printCount(records, env)
	case KindStartTimeTrending:
		return startTimeTrending(ctx, records, env)
	case KindSaveToDB:
		return saveToDB(ctx, records, env)
	}
	// Unreachable for kinds produced by Parse.
	return &domain.UnknownActionError{Name: kind.String(), Known: Names()}
}
