package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateLabelLayout is how date-formatted month or plant cells are labelled
const DateLabelLayout = "2006-01-02"

// formatDateLabels replaces the serial numbers that raw reads return for
// date-formatted label cells with ISO dates. Consumption cells are left
// raw so their full precision is kept.
func formatDateLabels(f *excelize.File, sheet string, rows [][]string, headerIdx int, labelCols ...int) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		for _, j := range labelCols {
			if j >= len(rows[i]) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(rows[i][j]), 64)
			if err != nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil || !isDateCell(f, sheet, axis) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[i][j] = dateLabel(t)
		}
	}
}

func dateLabel(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(DateLabelLayout)
	}
	return t.Format(DateLabelLayout + " 15:04:05")
}

// isDateCell reports whether the cell's number format renders a date or time
func isDateCell(f *excelize.File, sheet, axis string) bool {
	idx, err := f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return isDateNumFmt(style.NumFmt)
}

// isDateNumFmt covers the built-in date and time formats, including the
// East Asian locale variants
func isDateNumFmt(id int) bool {
	switch {
	case 14 <= id && id <= 22,
		27 <= id && id <= 36,
		45 <= id && id <= 47,
		50 <= id && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode looks for date tokens outside quoted literals,
// bracketed sections and escaped characters
func isDateFormatCode(code string) bool {
	var (
		inQuote   bool
		inBracket bool
		escaped   bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == 'y' || r == 'd' || r == 'm' || r == 'h' || r == 's':
			return true
		}
	}
	return false
}
