// Package store adapts logical time-record operations onto a tabular
// backend that only offers whole-row reads and writes.
package store

import (
	"context"
	"time"

	"github.com/launchtrack/timeclock/internal/model"
)

// User identifies a record owner. Name is the chat display name and is
// only stored, never used for routing.
type User struct {
	ID   int64
	Name string
}

// Tabular is the narrow surface the adapter needs from the spreadsheet
// client. sheets.Client satisfies it.
type Tabular interface {
	// ReadRows returns all populated rows of a worksheet, header first.
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	// UpdateRow overwrites the 1-based row.
	UpdateRow(ctx context.Context, sheet string, row int, values []string) error
	// AppendRow appends after the last populated row.
	AppendRow(ctx context.Context, sheet string, values []string) error
	// UpdateCell overwrites a single 1-based cell.
	UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
	// EnsureSheet creates the worksheet if absent and reports creation.
	EnsureSheet(ctx context.Context, title string) (bool, error)
}

// Store is the persistence contract the dispatcher programs against.
type Store interface {
	// UpsertDailyRecord finds today's row for the user and overwrites only
	// the fields the action affects, appending a sparse row when the day
	// has none yet. It returns the 1-based row index written.
	//
	// The find step and the write are separate calls against a backend
	// with no transactions: two concurrent upserts for the same user and
	// day can race, and the later write wins over a stale read. That is
	// accepted for a one-message-at-a-time conversational flow.
	UpsertDailyRecord(ctx context.Context, user User, action model.Action, at time.Time, coords model.Coordinates) (int, error)

	// LastAction inspects the user's newest row by calendar date and
	// reports clock-out when populated, else clock-in, else nil.
	LastAction(ctx context.Context, user User) (*model.LastAction, error)

	// RecentRecords returns up to limit rows, newest first.
	RecentRecords(ctx context.Context, user User, limit int) ([]model.TimesheetRow, error)

	// UpdateDescription appends text to the description of the row for
	// dateKey, joined with "; ". It reports false when no row exists.
	UpdateDescription(ctx context.Context, user User, dateKey, text string) (bool, error)

	// SaveUserConfig overwrites the user's config row in place, appending
	// when absent, and stamps Last Updated.
	SaveUserConfig(ctx context.Context, cfg model.UserConfig) error

	// UserConfig returns the user's config row, or nil when absent.
	UserConfig(ctx context.Context, userID int64) (*model.UserConfig, error)

	// AppendScanRows appends extracted table-scan rows to the user's
	// scan worksheet.
	AppendScanRows(ctx context.Context, user User, rows []model.ScanRow) error

	// EnsureSheets provisions every known worksheet with its header row.
	EnsureSheets(ctx context.Context) error
}
