package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"baul-admin-api/internal/models"
)

// DateLayout is the layout of range bounds.
const DateLayout = "2006-01-02"

// Preset is a quick-range selection.
type Preset string

const (
	PresetLast7Days    Preset = "7d"
	PresetLast30Days   Preset = "30d"
	PresetLast90Days   Preset = "90d"
	PresetYearToDate   Preset = "ytd"
	PresetCurrentMonth Preset = "month"
	PresetCustom       Preset = "custom"
)

// DefaultPreset is used when no range is requested.
const DefaultPreset = PresetLast30Days

// ParsePreset validates a preset name. An empty name yields DefaultPreset.
func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPreset, nil
	case PresetLast7Days, PresetLast30Days, PresetLast90Days, PresetYearToDate, PresetCurrentMonth, PresetCustom:
		return p, nil
	default:
		return "", fmt.Errorf("invalid range preset: %q", s)
	}
}

// Range holds the operator-facing date bounds as YYYY-MM-DD text.
type Range struct {
	From string `json:"desde"`
	To   string `json:"hasta"`
}

// Selection is the range state driving one aggregation run: a preset, and
// for PresetCustom the operator-supplied bounds.
type Selection struct {
	Preset Preset
	Custom Range
}

// Bounds resolves the selection to concrete bounds relative to now in loc.
// Custom selections are returned untouched.
func (s Selection) Bounds(now time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := dayStart(now)

	var from time.Time
	switch s.Preset {
	case PresetCustom:
		return s.Custom
	case PresetLast7Days:
		from = today.AddDate(0, 0, -7)
	case PresetLast90Days:
		from = today.AddDate(0, 0, -90)
	case PresetYearToDate:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	case PresetCurrentMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	default:
		from = today.AddDate(0, 0, -30)
	}

	return Range{From: from.Format(DateLayout), To: today.Format(DateLayout)}
}

// ParseTimestamp converts a stored date to a time in loc. ISO strings
// (containing "T") are parsed as such; other strings must be Y-M-D with
// non-zero parts. ok is false for missing or malformed values.
func ParseTimestamp(ts models.Timestamp, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if ts.Text == "" {
		if ts.Time.IsZero() {
			return time.Time{}, false
		}
		return ts.Time.In(loc), true
	}
	return parseDateText(ts.Text, loc)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func parseDateText(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), true
			}
		}
		return time.Time{}, false
	}

	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil || y == 0 || m == 0 || d == 0 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc), true
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateFilter admits records whose calendar day lies within an inclusive range.
type DateFilter struct {
	from time.Time
	to   time.Time
	open bool
	loc  *time.Location
}

// NewDateFilter parses r in loc. When either bound fails to parse the
// filter is open and admits every record with a readable date.
func NewDateFilter(r Range, loc *time.Location) DateFilter {
	if loc == nil {
		loc = time.Local
	}
	from, okFrom := parseDateText(r.From, loc)
	to, okTo := parseDateText(r.To, loc)
	if !okFrom || !okTo {
		return DateFilter{open: true, loc: loc}
	}
	return DateFilter{
		from: dayStart(from),
		to:   dayStart(to).Add(24*time.Hour - time.Second),
		loc:  loc,
	}
}

// Open reports whether the filter admits all dated records.
func (f DateFilter) Open() bool { return f.open }

// Contains reports whether ts falls on a day within the range.
func (f DateFilter) Contains(ts models.Timestamp) bool {
	t, ok := ParseTimestamp(ts, f.loc)
	if !ok {
		return false
	}
	if f.open {
		return true
	}
	day := dayStart(t)
	return !day.Before(f.from) && !day.After(f.to)
}

// FilterSales returns the sales whose effective date is within the range.
func (f DateFilter) FilterSales(sales []*models.Sale) []*models.Sale {
	return filterDated(f, sales, func(s *models.Sale) models.Timestamp { return s.EffectiveDate() })
}

// FilterQuotes returns the quotes whose effective date is within the range.
func (f DateFilter) FilterQuotes(quotes []*models.Quote) []*models.Quote {
	return filterDated(f, quotes, func(q *models.Quote) models.Timestamp { return q.EffectiveDate() })
}

func filterDated[T any](f DateFilter, items []*T, date func(*T) models.Timestamp) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if f.Contains(date(item)) {
			out = append(out, item)
		}
	}
	return out
}
