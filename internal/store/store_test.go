package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/launchtrack/timeclock/internal/model"
	"github.com/launchtrack/timeclock/internal/sheets"
	"github.com/launchtrack/timeclock/internal/store"
)

// fakeTabular is an in-memory spreadsheet with the same whole-row
// semantics as the real backend.
type fakeTabular struct {
	sheets map[string][][]string
}

func newFakeTabular() *fakeTabular {
	return &fakeTabular{sheets: map[string][][]string{}}
}

func (f *fakeTabular) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	rows, ok := f.sheets[sheet]
	if !ok {
		return nil, sheets.ErrSheetNotFound
	}
	return rows, nil
}

func (f *fakeTabular) UpdateRow(ctx context.Context, sheet string, row int, values []string) error {
	rows, ok := f.sheets[sheet]
	if !ok {
		return sheets.ErrSheetNotFound
	}
	for len(rows) < row {
		rows = append(rows, nil)
	}
	rows[row-1] = append([]string(nil), values...)
	f.sheets[sheet] = rows
	return nil
}

func (f *fakeTabular) AppendRow(ctx context.Context, sheet string, values []string) error {
	rows, ok := f.sheets[sheet]
	if !ok {
		return sheets.ErrSheetNotFound
	}
	f.sheets[sheet] = append(rows, append([]string(nil), values...))
	return nil
}

func (f *fakeTabular) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	rows, ok := f.sheets[sheet]
	if !ok {
		return sheets.ErrSheetNotFound
	}
	for len(rows) < row {
		rows = append(rows, nil)
	}
	cells := rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	rows[row-1] = cells
	f.sheets[sheet] = rows
	return nil
}

func (f *fakeTabular) EnsureSheet(ctx context.Context, title string) (bool, error) {
	if _, ok := f.sheets[title]; ok {
		return false, nil
	}
	f.sheets[title] = [][]string{}
	return true, nil
}

var (
	shane   = store.User{ID: 1794622246, Name: "Shane_Hill"}
	stray   = store.User{ID: 42, Name: "somebody"}
	mapping = map[int64]string{1794622246: "Shane_Hill"}
)

func newStore(tab *fakeTabular) *store.SheetStore {
	fixed := time.Date(2026, 3, 9, 16, 45, 0, 0, time.UTC)
	return store.New(tab, mapping, "Timesheet_Unknown", store.WithNow(func() time.Time { return fixed }))
}

func at(h, m int) time.Time {
	return time.Date(2026, 3, 9, h, m, 0, 0, time.UTC)
}

func TestUpsertSingleRowPerDay(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)
	coords := model.Coordinates{Lat: 52.5, Lon: 13.4}

	row, err := s.UpsertDailyRecord(ctx, shane, model.ClockIn, at(8, 0), coords)
	if err != nil {
		t.Fatalf("clock-in upsert: %v", err)
	}
	if row != 2 {
		t.Errorf("clock-in row = %d, want 2", row)
	}

	row, err = s.UpsertDailyRecord(ctx, shane, model.ClockOut, at(16, 30), coords)
	if err != nil {
		t.Fatalf("clock-out upsert: %v", err)
	}
	if row != 2 {
		t.Errorf("clock-out row = %d, want 2 (in place)", row)
	}

	rows := tab.sheets["Timesheet_Shane_Hill"]
	if len(rows) != 2 {
		t.Fatalf("sheet has %d rows, want header + 1 record", len(rows))
	}
	rec := model.TimesheetFromRow(rows[1])
	if rec.Date != "09/03/2026" {
		t.Errorf("Date = %q", rec.Date)
	}
	if rec.ClockIn != "08:00:00" || rec.ClockOut != "16:30:00" {
		t.Errorf("clocks = %q / %q, fields did not accumulate", rec.ClockIn, rec.ClockOut)
	}
	if rec.LatIn == "" || rec.LatOut == "" {
		t.Errorf("coordinates missing: %+v", rec)
	}
}

func TestUpsertPreservesOppositeFields(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	if _, err := s.UpsertDailyRecord(ctx, shane, model.ClockIn, at(8, 0), model.Coordinates{Lat: 52.5, Lon: 13.4}); err != nil {
		t.Fatal(err)
	}
	// A second clock-in the same day overwrites only the in-fields.
	if _, err := s.UpsertDailyRecord(ctx, shane, model.ClockIn, at(9, 15), model.Coordinates{Lat: 48.1, Lon: 11.5}); err != nil {
		t.Fatal(err)
	}

	rec := model.TimesheetFromRow(tab.sheets["Timesheet_Shane_Hill"][1])
	if rec.ClockIn != "09:15:00" {
		t.Errorf("ClockIn = %q", rec.ClockIn)
	}
	if rec.ClockOut != "" || rec.LatOut != "" {
		t.Errorf("clock-out fields touched: %+v", rec)
	}
}

func TestUpsertLazyCreatesSheetWithHeader(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	if _, err := s.UpsertDailyRecord(ctx, shane, model.ClockIn, at(8, 0), model.Coordinates{}); err != nil {
		t.Fatalf("upsert on missing sheet: %v", err)
	}
	rows := tab.sheets["Timesheet_Shane_Hill"]
	if len(rows) != 2 {
		t.Fatalf("sheet rows = %d, want header + record", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Errorf("header row not provisioned: %v", rows[0])
	}
	if rows[1][0] != "09/03/2026" {
		t.Errorf("record row = %v", rows[1])
	}
}

func TestUnknownUserLandsInFallbackSheet(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	if _, err := s.UpsertDailyRecord(ctx, stray, model.ClockIn, at(8, 0), model.Coordinates{Lat: 52.5, Lon: 13.4}); err != nil {
		t.Fatal(err)
	}

	if _, ok := tab.sheets["Timesheet_Unknown"]; !ok {
		t.Error("fallback sheet not used")
	}
	if _, ok := tab.sheets["Timesheet_somebody"]; ok {
		t.Error("unknown user got a dedicated sheet")
	}
}

func TestLastAction(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	tab.sheets["Timesheet_Shane_Hill"] = [][]string{
		model.TimesheetHeader,
		{"30/01/2026", "08:00:00", "16:00:00", "", "", "", "", ""},
		// Lexically smaller date key, but the newer calendar day.
		{"02/02/2026", "07:30:00", "", "", "", "", "", ""},
	}
	s := newStore(tab)

	la, err := s.LastAction(ctx, shane)
	if err != nil {
		t.Fatalf("LastAction: %v", err)
	}
	if la == nil {
		t.Fatal("LastAction = nil")
	}
	if la.Action != model.ClockIn || la.Clock != "07:30:00" || la.Date != "02/02/2026" {
		t.Errorf("LastAction = %+v, lexical date ordering leaked through", la)
	}
}

func TestLastActionClockOutWins(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	tab.sheets["Timesheet_Shane_Hill"] = [][]string{
		model.TimesheetHeader,
		{"09/03/2026", "08:00:00", "16:30:00", "", "", "", "", ""},
	}
	s := newStore(tab)

	la, err := s.LastAction(ctx, shane)
	if err != nil {
		t.Fatal(err)
	}
	if la.Action != model.ClockOut || la.Clock != "16:30:00" {
		t.Errorf("LastAction = %+v", la)
	}
}

func TestLastActionEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeTabular())

	la, err := s.LastAction(ctx, shane)
	if err != nil {
		t.Fatal(err)
	}
	if la != nil {
		t.Errorf("LastAction on fresh sheet = %+v, want nil", la)
	}
}

func TestUpdateDescriptionAppends(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	tab.sheets["Timesheet_Shane_Hill"] = [][]string{
		model.TimesheetHeader,
		{"09/03/2026", "08:00:00", "", "", "", "", "", "welding done"},
	}
	s := newStore(tab)

	ok, err := s.UpdateDescription(ctx, shane, "09/03/2026", "cable check")
	if err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	if !ok {
		t.Fatal("UpdateDescription = false, want true")
	}
	rec := model.TimesheetFromRow(tab.sheets["Timesheet_Shane_Hill"][1])
	if rec.Description != "welding done; cable check" {
		t.Errorf("Description = %q", rec.Description)
	}

	ok, err = s.UpdateDescription(ctx, shane, "10/03/2026", "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("UpdateDescription for absent date = true, want false")
	}
}

func TestUserConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	saved := model.UserConfig{
		UserID:          shane.ID,
		Username:        "Shane_Hill",
		ProjectName:     "G50 Rework",
		ProjectLocation: "Dingolfing",
		ContractorName:  "Hill Industrial",
		LunchDuration:   "30 minutes",
	}
	if err := s.SaveUserConfig(ctx, saved); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	got, err := s.UserConfig(ctx, shane.ID)
	if err != nil {
		t.Fatalf("UserConfig: %v", err)
	}
	if got == nil {
		t.Fatal("UserConfig = nil after save")
	}
	if got.ProjectName != saved.ProjectName || got.LunchDuration != saved.LunchDuration {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.LastUpdated != "2026-03-09 16:45:00" {
		t.Errorf("LastUpdated = %q, not stamped by save", got.LastUpdated)
	}

	// Second save overwrites in place, no duplicate row.
	saved.ProjectName = "G50 Retrofit"
	if err := s.SaveUserConfig(ctx, saved); err != nil {
		t.Fatal(err)
	}
	if n := len(tab.sheets["User_Config"]); n != 2 {
		t.Errorf("config sheet has %d rows, want header + 1", n)
	}
	got, _ = s.UserConfig(ctx, shane.ID)
	if got.ProjectName != "G50 Retrofit" {
		t.Errorf("ProjectName after resave = %q", got.ProjectName)
	}
}

func TestUserConfigAbsent(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeTabular())
	got, err := s.UserConfig(ctx, 999)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("UserConfig for unknown user = %+v, want nil", got)
	}
}

func TestRecentRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	tab.sheets["Timesheet_Shane_Hill"] = [][]string{
		model.TimesheetHeader,
		{"30/01/2026", "08:00:00", "16:00:00", "", "", "", "", ""},
		{"02/02/2026", "08:10:00", "16:05:00", "", "", "", "", ""},
		{"01/02/2026", "08:20:00", "15:50:00", "", "", "", "", ""},
	}
	s := newStore(tab)

	rows, err := s.RecentRecords(ctx, shane, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Date != "02/02/2026" || rows[1].Date != "01/02/2026" {
		t.Errorf("order = %s, %s", rows[0].Date, rows[1].Date)
	}
}

func TestAppendScanRows(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	rows := []model.ScanRow{
		{Timestamp: "2026-03-09 16:45:00", Source: "table_scan", RawText: "| PLC status | x |", BatchID: "b1"},
		{Timestamp: "2026-03-09 16:45:01", Source: "table_scan", RawText: "| Robot programs | ✓ |", BatchID: "b1"},
	}
	if err := s.AppendScanRows(ctx, shane, rows); err != nil {
		t.Fatalf("AppendScanRows: %v", err)
	}

	sheet := tab.sheets["Scans_Shane_Hill"]
	if len(sheet) != 3 {
		t.Fatalf("scan sheet rows = %d, want header + 2", len(sheet))
	}
	if sheet[0][0] != "Timestamp" {
		t.Errorf("scan header = %v", sheet[0])
	}
}

func TestEnsureSheets(t *testing.T) {
	ctx := context.Background()
	tab := newFakeTabular()
	s := newStore(tab)

	if err := s.EnsureSheets(ctx); err != nil {
		t.Fatalf("EnsureSheets: %v", err)
	}
	for _, name := range []string{"Timesheet_Shane_Hill", "Timesheet_Unknown", "User_Config"} {
		rows, ok := tab.sheets[name]
		if !ok {
			t.Errorf("sheet %s not provisioned", name)
			continue
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			t.Errorf("sheet %s has no header", name)
		}
	}
}
