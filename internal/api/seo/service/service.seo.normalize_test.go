package seosvc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_dashboard/internal/api/seo/models"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-01-05", "2024-01-05", true},
		{"2024/01/05", "2024-01-05", true},
		{"05-01-2024", "2024-01-05", true},
		{"01/05/2024", "2024-01-05", true},
		{"2024.01.05", "2024-01-05", true},
		{"2024-01-05T10:00:00Z", "2024-01-05", true},
		{"2024-01-05 10:00:00", "2024-01-05", true},
		{" 2024-01-05 ", "2024-01-05", true},
		{"", "", false},
		{"yesterday", "", false},
		{"2024-13-40", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestNormalizeGSCRows_FourMetricsShareKey(t *testing.T) {
	rows := []models.GSCRow{gscRow("2024-01-01", "seo tips", "https://a.com/x", 10, 100, 0.1, 3.5)}

	metrics, skipped := NormalizeGSCRows(rows)

	assert.Equal(t, 0, skipped)
	require.Len(t, metrics, 4)
	types := make([]models.MetricType, 0, 4)
	for _, m := range metrics {
		assert.Equal(t, "2024-01-01", m.Date)
		assert.Equal(t, "seo tips", m.Query)
		assert.Equal(t, "https://a.com/x", m.URL)
		assert.Equal(t, models.SourceGSC, m.Source)
		require.NotNil(t, m.Metrics.Clicks)
		assert.Equal(t, 10.0, *m.Metrics.Clicks)
		types = append(types, m.MetricType)
	}
	assert.Equal(t, []models.MetricType{models.MetricClicks, models.MetricImpressions, models.MetricCTR, models.MetricPosition}, types)
}

func TestNormalizeGSCRows_SkipsBadDatesAndMissingValues(t *testing.T) {
	nan := math.NaN()
	rows := []models.GSCRow{
		{Date: "", Clicks: models.Float(1)},
		{Date: "not-a-date", Clicks: models.Float(1)},
		{Date: "2024-01-02", Clicks: models.Float(5), CTR: &nan},
		{Date: "2024-01-03", CTR: &nan},
	}

	metrics, skipped := NormalizeGSCRows(rows)

	assert.Equal(t, 3, skipped)
	require.Len(t, metrics, 1)
	assert.Equal(t, models.MetricClicks, metrics[0].MetricType)
	assert.True(t, metrics[0].IsTimeSeries())
	assert.Nil(t, metrics[0].Metrics.CTR)
}

func TestNormalizeAhrefsRows(t *testing.T) {
	rows := []models.AhrefsRow{
		{
			Keyword:         "seo tips",
			URL:             "https://a.com/x",
			Position:        models.Float(4),
			Volume:          models.Float(1000),
			Traffic:         models.Float(120),
			Difficulty:      models.Float(35),
			PreviousTraffic: models.Float(100),
			PreviousDate:    "2023/12/01",
		},
		{Keyword: "", URL: "", Volume: models.Float(5)},
		{Keyword: "no metrics", Date: "2024-01-03"},
		{Keyword: "bad date", Date: "someday", Volume: models.Float(1)},
	}

	metrics, skipped := NormalizeAhrefsRows(rows, "2024-01-10")

	assert.Equal(t, 3, skipped)
	require.Len(t, metrics, 2)
	assert.Equal(t, models.MetricVolume, metrics[0].MetricType)
	assert.Equal(t, 1000.0, metrics[0].Value)
	assert.Equal(t, models.MetricTraffic, metrics[1].MetricType)
	for _, m := range metrics {
		assert.Equal(t, "2024-01-10", m.Date)
		assert.Equal(t, models.SourceAhrefs, m.Source)
		require.NotNil(t, m.Metrics.Position)
		assert.Equal(t, 4.0, *m.Metrics.Position)
		require.NotNil(t, m.Comparison)
		assert.Equal(t, 100.0, *m.Comparison.PreviousTraffic)
		assert.Equal(t, 35.0, *m.Comparison.Difficulty)
		assert.Equal(t, "2023-12-01", m.Comparison.PreviousDate)
	}
}

func TestNormalizeAhrefsRows_PositionOnlyRow(t *testing.T) {
	rows := []models.AhrefsRow{
		{Keyword: "rank-only", URL: "https://a.com/p", Position: models.Float(3)},
		{Keyword: "full", URL: "https://a.com/q", Position: models.Float(5), Volume: models.Float(100), Traffic: models.Float(10)},
	}

	metrics, skipped := NormalizeAhrefsRows(rows, "2024-01-10")

	assert.Zero(t, skipped)
	require.Len(t, metrics, 3)
	assert.Equal(t, "rank-only", metrics[0].Query)
	assert.Equal(t, models.MetricPosition, metrics[0].MetricType)
	assert.Equal(t, 3.0, metrics[0].Value)
	assert.Equal(t, models.MetricVolume, metrics[1].MetricType)
	assert.Equal(t, models.MetricTraffic, metrics[2].MetricType)
}

func TestEntryMetrics(t *testing.T) {
	assert.Equal(t, []models.MetricType{models.MetricPosition},
		models.EntryMetrics(models.SourceAhrefs, models.MetricValues{Position: models.Float(3)}))
	assert.Equal(t, []models.MetricType{models.MetricVolume},
		models.EntryMetrics(models.SourceAhrefs, models.MetricValues{Position: models.Float(3), Volume: models.Float(9)}))
	assert.Empty(t, models.EntryMetrics(models.SourceAhrefs, models.MetricValues{}))
	assert.Equal(t, []models.MetricType{models.MetricClicks},
		models.EntryMetrics(models.SourceGSC, models.MetricValues{Clicks: models.Float(1)}))
}
