// Package media holds the voice-note and table-photo side pipelines.
// They enrich today's record but are fully isolated from the clock flow:
// a failure here degrades to an apology message and nothing else.
package media

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/model"
)

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TableParser extracts a markdown rendition of a photographed document.
type TableParser interface {
	Parse(ctx context.Context, image []byte) (string, error)
}

// markSymbols are the glyphs OCR produces for crosses and ticks on a
// paper checklist.
var markSymbols = []string{"x", "X", "×", "✓", "✔", "☑", "☐", "■", "▪", "□", "+", "*", "◯", "●", "○"}

var tableSeparator = regexp.MustCompile(`^[|\s\-:]+$`)

func hasMark(cell string) bool {
	for _, sym := range markSymbols {
		if strings.Contains(cell, sym) {
			return true
		}
	}
	return false
}

func splitCells(line string) []string {
	var cells []string
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// ExtractMarked walks parsed markdown and keeps every table row (or bare
// line) carrying at least one mark symbol, producing scan rows stamped
// with the batch id.
func ExtractMarked(parsed, batchID string, at time.Time) []model.ScanRow {
	var out []model.ScanRow
	var headers []string
	inTable := false

	stamp := clock.Stamp(at)
	for _, raw := range strings.Split(parsed, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.Contains(line, "|") {
			if !inTable {
				headers = splitCells(line)
				inTable = true
				continue
			}
			if tableSeparator.MatchString(line) {
				continue
			}
			cells := splitCells(line)
			row := markedRow(cells, line, headers, stamp, batchID)
			if row != nil {
				out = append(out, *row)
			}
			continue
		}

		inTable = false
		headers = nil
		if hasMark(line) {
			row := markedRow(strings.Fields(line), line, nil, stamp, batchID)
			if row != nil {
				out = append(out, *row)
			}
		}
	}
	return out
}

func markedRow(cells []string, raw string, headers []string, stamp, batchID string) *model.ScanRow {
	var marks []string
	var positions []string
	for i, cell := range cells {
		if hasMark(cell) {
			marks = append(marks, cell)
			positions = append(positions, strconv.Itoa(i))
		}
	}
	if len(marks) == 0 {
		return nil
	}
	return &model.ScanRow{
		Timestamp: stamp,
		Source:    "table_scan",
		RawText:   raw,
		Headers:   strings.Join(headers, ", "),
		Cells:     strings.Join(cells, ", "),
		Marks:     strings.Join(marks, ", "),
		Positions: strings.Join(positions, ", "),
		BatchID:   batchID,
	}
}
