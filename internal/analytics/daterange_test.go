package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baul-admin-api/internal/models"
)

var buenosAires = time.FixedZone("ART", -3*60*60)

func TestDateFilter_InclusiveBounds(t *testing.T) {
	filter := NewDateFilter(Range{From: "2024-03-01", To: "2024-03-31"}, buenosAires)

	cases := []struct {
		name string
		ts   models.Timestamp
		want bool
	}{
		{"lower bound date", models.DateText("2024-03-01"), true},
		{"lower bound late evening", models.DateText("2024-03-01T23:59:00-03:00"), true},
		{"upper bound date", models.DateText("2024-03-31"), true},
		{"upper bound last second", models.DateText("2024-03-31T23:59:59-03:00"), true},
		{"native upper bound", models.NativeTime(time.Date(2024, 3, 31, 22, 0, 0, 0, buenosAires)), true},
		{"day before", models.DateText("2024-02-29"), false},
		{"day after", models.DateText("2024-04-01T00:00:00-03:00"), false},
		{"missing date", models.Timestamp{}, false},
		{"malformed date", models.DateText("ayer"), false},
		{"zero month", models.DateText("2024-00-10"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filter.Contains(tc.ts))
		})
	}
}

func TestDateFilter_FailOpen(t *testing.T) {
	for _, r := range []Range{
		{From: "", To: "2024-03-31"},
		{From: "2024-03-01", To: "not-a-date"},
	} {
		filter := NewDateFilter(r, buenosAires)
		assert.True(t, filter.Open())
		assert.True(t, filter.Contains(models.DateText("1999-12-31")))
		assert.True(t, filter.Contains(models.DateText("2030-01-01T10:00:00Z")))
		assert.False(t, filter.Contains(models.DateText("garbage")), "unreadable record dates stay excluded")
	}
}

func TestDateFilter_RefilterIsNoOp(t *testing.T) {
	sales := []*models.Sale{
		{ID: "a", Date: models.DateText("2024-03-01")},
		{ID: "b", Date: models.DateText("2024-05-01")},
		{ID: "c", CreatedAt: models.DateText("2024-03-15T12:00:00Z")},
		{ID: "d"},
	}
	filter := NewDateFilter(Range{From: "2024-03-01", To: "2024-03-31"}, buenosAires)

	once := filter.FilterSales(sales)
	twice := filter.FilterSales(once)

	require.Len(t, once, 2)
	assert.ElementsMatch(t, once, twice)
}

func TestSelection_Bounds(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, buenosAires)

	cases := []struct {
		sel  Selection
		want Range
	}{
		{Selection{Preset: PresetLast7Days}, Range{From: "2024-03-08", To: "2024-03-15"}},
		{Selection{Preset: PresetLast30Days}, Range{From: "2024-02-14", To: "2024-03-15"}},
		{Selection{Preset: PresetLast90Days}, Range{From: "2023-12-16", To: "2024-03-15"}},
		{Selection{Preset: PresetYearToDate}, Range{From: "2024-01-01", To: "2024-03-15"}},
		{Selection{Preset: PresetCurrentMonth}, Range{From: "2024-03-01", To: "2024-03-15"}},
		{Selection{Preset: PresetCustom, Custom: Range{From: "2023-01-01", To: "2023-02-01"}}, Range{From: "2023-01-01", To: "2023-02-01"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.sel.Preset), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sel.Bounds(now, buenosAires))
		})
	}
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreset, p)

	p, err = ParsePreset("YTD")
	require.NoError(t, err)
	assert.Equal(t, PresetYearToDate, p)

	_, err = ParsePreset("lastweek")
	assert.Error(t, err)
}
