package core

// convert.go turns raw CSV cells into typed pgtype values.
//
// Exports carry whatever the source tool wrote for "no value", so a fixed set
// of null markers is recognised before any conversion. All ToPg* functions
// return Valid=false for null markers and for text that does not parse.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var intRegex = regexp.MustCompile(`^[+-]?\d+$`)

// nullMarkers are cell values read as missing. Matching is exact.
var nullMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// StrictDateLayout is day.month.year, e.g. "01.08.2023" or "1.8.2023".
const StrictDateLayout = "2.1.2006"

// Best-effort layouts tried when the strict layout fails. Four-digit years
// come first since they are unambiguous.
var (
	fourDigitYearLayouts = []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"02.01.2006 15:04:05", "2.1.2006 15:04",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"1/2/2006 15:04:05", "1/2/2006 3:04 PM",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"Mon, 02 Jan 2006 15:04:05 MST",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// IsNullMarker reports whether s stands for a missing value.
func IsNullMarker(s string) bool {
	_, ok := nullMarkers[s]
	return ok
}

// ToPgText converts a cell to pgtype.Text. The value is kept verbatim;
// only null markers are rejected.
func ToPgText(s string) pgtype.Text {
	if IsNullMarker(s) {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt8 converts a cell holding a whole number to pgtype.Int8.
func ToPgInt8(s string) pgtype.Int8 {
	s = strings.TrimSpace(s)
	if IsNullMarker(s) || !intRegex.MatchString(s) {
		return pgtype.Int8{Valid: false}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// ToPgFloat8 converts a numeric cell to pgtype.Float8. NaN is null.
func ToPgFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if IsNullMarker(s) || !numericRegex.MatchString(s) {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgDate converts a cell to pgtype.Date. The strict day.month.year layout
// is tried first; values it rejects get a best-effort parse of their own.
// Anything left over is null.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if IsNullMarker(s) {
		return pgtype.Date{Valid: false}
	}
	if t, err := time.Parse(StrictDateLayout, s); err == nil {
		return pgtype.Date{Time: t, Valid: true}
	}
	if t, ok := parseDateFlexible(s); ok {
		return pgtype.Date{Time: t, Valid: true}
	}
	return pgtype.Date{Valid: false}
}

// parseDateFlexible tries the generic layouts, then 2-digit years with the
// pivot adjustment. Times are dropped; the calendar day is kept as written.
func parseDateFlexible(s string) (time.Time, bool) {
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

// inferColumn picks the narrowest kind that holds every non-null cell:
// int, then float, then text. A column without values is float.
func inferColumn(name string, cells []string) *Column {
	isInt, isFloat := true, true
	for _, s := range cells {
		if IsNullMarker(s) {
			continue
		}
		v := strings.TrimSpace(s)
		if isInt && !intRegex.MatchString(v) {
			isInt = false
		}
		if !numericRegex.MatchString(v) {
			isFloat = false
			break
		}
	}

	if isInt {
		ints := make([]pgtype.Int8, len(cells))
		overflow := false
		for i, s := range cells {
			ints[i] = ToPgInt8(s)
			if !ints[i].Valid && !IsNullMarker(strings.TrimSpace(s)) {
				overflow = true
				break
			}
		}
		if !overflow {
			hasValue := false
			for _, v := range ints {
				if v.Valid {
					hasValue = true
					break
				}
			}
			if hasValue {
				return NewIntColumn(name, ints)
			}
		}
	}

	if isFloat {
		floats := make([]pgtype.Float8, len(cells))
		for i, s := range cells {
			floats[i] = ToPgFloat8(s)
		}
		return NewFloatColumn(name, floats)
	}

	texts := make([]pgtype.Text, len(cells))
	for i, s := range cells {
		texts[i] = ToPgText(s)
	}
	return NewTextColumn(name, texts)
}
