package model

import (
	"fmt"
	"strconv"
)

// Action is a clock event kind.
type Action int

const (
	ClockIn Action = iota
	ClockOut
)

// String returns the wire label used in sheets and callback data.
func (a Action) String() string {
	if a == ClockOut {
		return "clock_out"
	}
	return "clock_in"
}

// Coordinates is a latitude/longitude pair from a location share.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// LastAction is the most recent clock event found for a user.
type LastAction struct {
	Action Action
	Clock  string // wall-clock string HH:MM:SS
	Date   string // date key DD/MM/YYYY
}

// TimesheetHeader is the schema row of every timesheet worksheet.
var TimesheetHeader = []string{
	"Date", "clock_in", "clock_out",
	"Latitude In", "Longitude In", "Latitude Out", "Longitude Out",
	"Description",
}

// TimesheetRow is one daily record. Either clock field may be empty; a row
// accumulates clock-in and clock-out data over the course of its day.
type TimesheetRow struct {
	Date        string // DD/MM/YYYY
	ClockIn     string // HH:MM:SS, empty if not clocked in yet
	ClockOut    string
	LatIn       string
	LonIn       string
	LatOut      string
	LonOut      string
	Description string
}

// ToRow renders the record in TimesheetHeader column order.
func (r TimesheetRow) ToRow() []string {
	return []string{
		r.Date, r.ClockIn, r.ClockOut,
		r.LatIn, r.LonIn, r.LatOut, r.LonOut,
		r.Description,
	}
}

// TimesheetFromRow maps a sheet row onto a TimesheetRow. Short rows are
// padded: the external store trims trailing empty cells.
func TimesheetFromRow(cells []string) TimesheetRow {
	c := pad(cells, len(TimesheetHeader))
	return TimesheetRow{
		Date:        c[0],
		ClockIn:     c[1],
		ClockOut:    c[2],
		LatIn:       c[3],
		LonIn:       c[4],
		LatOut:      c[5],
		LonOut:      c[6],
		Description: c[7],
	}
}

// ApplyClock overwrites only the fields the action affects, leaving the
// opposite direction's fields untouched.
func (r *TimesheetRow) ApplyClock(action Action, clock string, coords Coordinates) {
	lat := strconv.FormatFloat(coords.Lat, 'f', -1, 64)
	lon := strconv.FormatFloat(coords.Lon, 'f', -1, 64)
	if action == ClockIn {
		r.ClockIn = clock
		r.LatIn = lat
		r.LonIn = lon
		return
	}
	r.ClockOut = clock
	r.LatOut = lat
	r.LonOut = lon
}

// ConfigHeader is the schema row of the user configuration worksheet.
var ConfigHeader = []string{
	"User ID", "Username", "Project Name", "Project Location",
	"Contractor Name", "Lunch Duration", "Last Updated",
}

// UserConfig is one user's project settings, at most one row per user.
type UserConfig struct {
	UserID          int64
	Username        string
	ProjectName     string
	ProjectLocation string
	ContractorName  string
	LunchDuration   string
	LastUpdated     string
}

func (c UserConfig) ToRow() []string {
	return []string{
		strconv.FormatInt(c.UserID, 10),
		c.Username, c.ProjectName, c.ProjectLocation,
		c.ContractorName, c.LunchDuration, c.LastUpdated,
	}
}

func ConfigFromRow(cells []string) UserConfig {
	c := pad(cells, len(ConfigHeader))
	id, _ := strconv.ParseInt(c[0], 10, 64)
	return UserConfig{
		UserID:          id,
		Username:        c[1],
		ProjectName:     c[2],
		ProjectLocation: c[3],
		ContractorName:  c[4],
		LunchDuration:   c[5],
		LastUpdated:     c[6],
	}
}

// ScanHeader is the schema row of the per-user table scan worksheet.
var ScanHeader = []string{
	"Timestamp", "Source", "Raw Text", "Table Headers",
	"All Cells", "Marks Detected", "Marked Positions", "Batch ID",
}

// ScanRow is one extracted table line from a photographed checklist.
type ScanRow struct {
	Timestamp string
	Source    string
	RawText   string
	Headers   string
	Cells     string
	Marks     string
	Positions string
	BatchID   string
}

func (s ScanRow) ToRow() []string {
	return []string{
		s.Timestamp, s.Source, s.RawText, s.Headers,
		s.Cells, s.Marks, s.Positions, s.BatchID,
	}
}

func pad(cells []string, n int) []string {
	if len(cells) >= n {
		return cells
	}
	out := make([]string, n)
	copy(out, cells)
	return out
}
