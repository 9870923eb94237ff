package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/model"
	"github.com/launchtrack/timeclock/internal/sheets"
)

const configSheet = "User_Config"

// SheetStore implements Store against a spreadsheet. Known operators get
// a dedicated Timesheet_<label> worksheet; everyone else shares the
// fallback worksheet.
type SheetStore struct {
	tab       Tabular
	operators map[int64]string
	fallback  string
	now       func() time.Time
}

// Option tweaks a SheetStore.
type Option func(*SheetStore)

// WithNow overrides the timestamp source; tests pin it.
func WithNow(now func() time.Time) Option {
	return func(s *SheetStore) { s.now = now }
}

// New builds a SheetStore routing operator ids to their labeled
// worksheets and unknown users to fallbackSheet.
func New(tab Tabular, operators map[int64]string, fallbackSheet string, opts ...Option) *SheetStore {
	s := &SheetStore{
		tab:       tab,
		operators: operators,
		fallback:  fallbackSheet,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timesheetFor resolves the worksheet a user's records live in.
func (s *SheetStore) timesheetFor(user User) string {
	if label, ok := s.operators[user.ID]; ok {
		return "Timesheet_" + label
	}
	return s.fallback
}

// scanSheetFor resolves the worksheet a user's table scans live in.
func (s *SheetStore) scanSheetFor(user User) string {
	if label, ok := s.operators[user.ID]; ok {
		return "Scans_" + label
	}
	return "Scans_Unknown"
}

// readRecords loads a worksheet's data rows, creating the sheet with its
// header when it does not exist yet. A missing sheet is "no data yet",
// never an error.
func (s *SheetStore) readRecords(ctx context.Context, sheet string, header []string) ([][]string, error) {
	rows, err := s.tab.ReadRows(ctx, sheet)
	if errors.Is(err, sheets.ErrSheetNotFound) {
		if err := s.ensureSheet(ctx, sheet, header); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		// Sheet exists but is blank; restore the header row.
		if err := s.tab.UpdateRow(ctx, sheet, 1, header); err != nil {
			return nil, fmt.Errorf("writing %s header: %w", sheet, err)
		}
		return nil, nil
	}
	return rows[1:], nil
}

func (s *SheetStore) ensureSheet(ctx context.Context, sheet string, header []string) error {
	created, err := s.tab.EnsureSheet(ctx, sheet)
	if err != nil {
		return fmt.Errorf("creating %s: %w", sheet, err)
	}
	if created {
		if err := s.tab.UpdateRow(ctx, sheet, 1, header); err != nil {
			return fmt.Errorf("writing %s header: %w", sheet, err)
		}
	}
	return nil
}

func (s *SheetStore) UpsertDailyRecord(ctx context.Context, user User, action model.Action, at time.Time, coords model.Coordinates) (int, error) {
	sheet := s.timesheetFor(user)
	records, err := s.readRecords(ctx, sheet, model.TimesheetHeader)
	if err != nil {
		return 0, err
	}

	dateKey := clock.DateKey(at)
	clockStr := clock.ClockString(at)

	for i, cells := range records {
		row := model.TimesheetFromRow(cells)
		if row.Date != dateKey {
			continue
		}
		row.ApplyClock(action, clockStr, coords)
		rowIndex := i + 2
		if err := s.tab.UpdateRow(ctx, sheet, rowIndex, row.ToRow()); err != nil {
			return 0, fmt.Errorf("updating %s row %d: %w", sheet, rowIndex, err)
		}
		return rowIndex, nil
	}

	fresh := model.TimesheetRow{Date: dateKey}
	fresh.ApplyClock(action, clockStr, coords)
	rowIndex := len(records) + 2
	if err := s.tab.UpdateRow(ctx, sheet, rowIndex, fresh.ToRow()); err != nil {
		return 0, fmt.Errorf("appending to %s row %d: %w", sheet, rowIndex, err)
	}
	return rowIndex, nil
}

// latest picks the record with the newest parsed calendar date. Rows with
// unparsable dates are skipped.
func latest(records [][]string) *model.TimesheetRow {
	var best *model.TimesheetRow
	var bestDay time.Time
	for _, cells := range records {
		row := model.TimesheetFromRow(cells)
		day, err := clock.ParseDateKey(row.Date)
		if err != nil {
			continue
		}
		if best == nil || day.After(bestDay) {
			r := row
			best = &r
			bestDay = day
		}
	}
	return best
}

func (s *SheetStore) LastAction(ctx context.Context, user User) (*model.LastAction, error) {
	records, err := s.readRecords(ctx, s.timesheetFor(user), model.TimesheetHeader)
	if err != nil {
		return nil, err
	}

	row := latest(records)
	if row == nil {
		return nil, nil
	}
	switch {
	case row.ClockOut != "":
		return &model.LastAction{Action: model.ClockOut, Clock: row.ClockOut, Date: row.Date}, nil
	case row.ClockIn != "":
		return &model.LastAction{Action: model.ClockIn, Clock: row.ClockIn, Date: row.Date}, nil
	default:
		return nil, nil
	}
}

func (s *SheetStore) RecentRecords(ctx context.Context, user User, limit int) ([]model.TimesheetRow, error) {
	records, err := s.readRecords(ctx, s.timesheetFor(user), model.TimesheetHeader)
	if err != nil {
		return nil, err
	}

	type dated struct {
		row model.TimesheetRow
		day time.Time
	}
	out := make([]dated, 0, len(records))
	for _, cells := range records {
		row := model.TimesheetFromRow(cells)
		day, err := clock.ParseDateKey(row.Date)
		if err != nil {
			continue
		}
		out = append(out, dated{row: row, day: day})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.After(out[j].day) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	rows := make([]model.TimesheetRow, len(out))
	for i, d := range out {
		rows[i] = d.row
	}
	return rows, nil
}

func (s *SheetStore) UpdateDescription(ctx context.Context, user User, dateKey, text string) (bool, error) {
	sheet := s.timesheetFor(user)
	records, err := s.readRecords(ctx, sheet, model.TimesheetHeader)
	if err != nil {
		return false, err
	}

	for i, cells := range records {
		row := model.TimesheetFromRow(cells)
		if row.Date != dateKey {
			continue
		}
		desc := text
		if row.Description != "" {
			desc = row.Description + "; " + text
		}
		rowIndex := i + 2
		col := len(model.TimesheetHeader) // Description is the last column
		if err := s.tab.UpdateCell(ctx, sheet, rowIndex, col, desc); err != nil {
			return false, fmt.Errorf("updating %s description: %w", sheet, err)
		}
		return true, nil
	}
	return false, nil
}

func (s *SheetStore) SaveUserConfig(ctx context.Context, cfg model.UserConfig) error {
	records, err := s.readRecords(ctx, configSheet, model.ConfigHeader)
	if err != nil {
		return err
	}

	cfg.LastUpdated = clock.Stamp(s.now())
	rowIndex := len(records) + 2
	for i, cells := range records {
		existing := model.ConfigFromRow(cells)
		if existing.UserID == cfg.UserID {
			rowIndex = i + 2
			break
		}
	}
	if err := s.tab.UpdateRow(ctx, configSheet, rowIndex, cfg.ToRow()); err != nil {
		return fmt.Errorf("saving config for user %d: %w", cfg.UserID, err)
	}
	return nil
}

func (s *SheetStore) UserConfig(ctx context.Context, userID int64) (*model.UserConfig, error) {
	records, err := s.readRecords(ctx, configSheet, model.ConfigHeader)
	if err != nil {
		return nil, err
	}
	want := strconv.FormatInt(userID, 10)
	for _, cells := range records {
		if len(cells) > 0 && cells[0] == want {
			cfg := model.ConfigFromRow(cells)
			return &cfg, nil
		}
	}
	return nil, nil
}

func (s *SheetStore) AppendScanRows(ctx context.Context, user User, rows []model.ScanRow) error {
	sheet := s.scanSheetFor(user)
	if err := s.ensureSheet(ctx, sheet, model.ScanHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.tab.AppendRow(ctx, sheet, row.ToRow()); err != nil {
			return fmt.Errorf("appending scan row to %s: %w", sheet, err)
		}
	}
	return nil
}

func (s *SheetStore) EnsureSheets(ctx context.Context) error {
	for _, label := range s.operators {
		if err := s.ensureSheet(ctx, "Timesheet_"+label, model.TimesheetHeader); err != nil {
			return err
		}
	}
	if err := s.ensureSheet(ctx, s.fallback, model.TimesheetHeader); err != nil {
		return err
	}
	return s.ensureSheet(ctx, configSheet, model.ConfigHeader)
}
