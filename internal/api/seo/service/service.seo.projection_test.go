package seosvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_dashboard/internal/api/seo/models"
)

type valueKey struct {
	date, query, url string
	source           models.Source
	metric           models.MetricType
}

func valuesByKey(metrics []models.NormalizedMetric) map[valueKey]float64 {
	out := make(map[valueKey]float64, len(metrics))
	for _, m := range metrics {
		out[valueKey{m.Date, m.Query, m.URL, m.Source, m.MetricType}] = m.Value
	}
	return out
}

func TestWriteDocuments_SplitsGSCAndGroupsAhrefs(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{gscRow("2024-01-01", "q", "https://a.com", 10, 100, 0.1, 2)})
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{{
		Keyword: "q", URL: "https://a.com", Volume: models.Float(500), Traffic: models.Float(40), Position: models.Float(3),
	}}, "2024-01-05")
	now := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	docs := WriteDocuments(append(gsc, ahrefs...), "imp-1", "https://a.com/", now)

	require.Len(t, docs, 5)
	for _, d := range docs[:4] {
		assert.Equal(t, models.SourceGSC, d.Source)
		require.NotNil(t, d.Value)
		assert.Equal(t, *d.Value, *d.MetricValues.Get(d.MetricType))
		populated := 0
		for _, mt := range models.MetricOrder {
			if d.MetricValues.Get(mt) != nil {
				populated++
			}
		}
		assert.Equal(t, 1, populated, "document GSC chỉ có một cột chỉ số")
		assert.Equal(t, "imp-1", d.ImportID)
		assert.Equal(t, now.Unix(), d.CreatedAt)
	}

	ah := docs[4]
	assert.Equal(t, models.SourceAhrefs, ah.Source)
	assert.Empty(t, ah.MetricType)
	assert.Equal(t, 500.0, *ah.Volume)
	assert.Equal(t, 40.0, *ah.Traffic)
	assert.Equal(t, 3.0, *ah.Position)
	assert.False(t, ah.IsTimeSeries)
}

func TestReadWriteRoundTrip(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 30, 300, 0.1, 5),
		gscRow("2024-01-01", "a", "https://a.com/1", 10, 100, 0.1, 2),
		gscRow("2024-01-02", "b", "https://a.com/2", 20, 200, 0.1, 7.5),
	})
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "a", URL: "https://a.com/1", Volume: models.Float(900), Traffic: models.Float(80), PreviousTraffic: models.Float(60)},
		{Keyword: "c", URL: "https://a.com/3", Volume: models.Float(10)},
	}, "2024-01-05")
	original := append(gsc, ahrefs...)

	read := ReadDocuments(WriteDocuments(original, "imp", "site", time.Now()))

	assert.Len(t, read, len(original))
	assert.Equal(t, valuesByKey(original), valuesByKey(read))

	for _, m := range read {
		if m.Source == models.SourceGSC && m.Query == "b" {
			require.NotNil(t, m.Metrics.Clicks)
			require.NotNil(t, m.Metrics.Position)
			assert.Equal(t, 20.0, *m.Metrics.Clicks)
			assert.Equal(t, 7.5, *m.Metrics.Position)
		}
		if m.Source == models.SourceAhrefs && m.Query == "a" {
			require.NotNil(t, m.Comparison)
			assert.Equal(t, 60.0, *m.Comparison.PreviousTraffic)
		}
	}
}

func TestReadDocuments_UsesMetricTypeWhenColumnMissing(t *testing.T) {
	docs := []models.ReportingDocument{
		{Source: models.SourceGSC, Date: "2024-01-01", MetricType: models.MetricClicks, Value: models.Float(4)},
		{Source: models.SourceGSC, Date: "2024-01-01", MetricType: models.MetricImpressions, Value: models.Float(40)},
	}

	metrics := ReadDocuments(docs)

	require.Len(t, metrics, 2)
	assert.Equal(t, 4.0, *metrics[1].Metrics.Clicks)
	assert.Equal(t, 40.0, *metrics[0].Metrics.Impressions)
}

func TestReadWriteRoundTrip_AhrefsPositionOnly(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{gscRow("2024-01-05", "full", "https://a.com/q", 4, 40, 0.1, 8)})
	ahrefs, skipped := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "rank-only", URL: "https://a.com/p", Position: models.Float(3)},
		{Keyword: "full", URL: "https://a.com/q", Position: models.Float(5), Volume: models.Float(100), Traffic: models.Float(10)},
	}, "2024-01-10")
	require.Zero(t, skipped)

	docs := WriteDocuments(ahrefs, "imp", "", time.Now())
	require.Len(t, docs, 2)
	require.NotNil(t, docs[0].MetricValues.Position)
	assert.Equal(t, 3.0, *docs[0].MetricValues.Position)
	assert.Nil(t, docs[0].MetricValues.Volume)

	read := ReadDocuments(docs)
	assert.Equal(t, valuesByKey(ahrefs), valuesByKey(read))

	all := append(gsc, read...)
	f := models.FilterOptions{DateRange: models.DateRange{Start: "2024-01-01", End: "2024-01-31"}}
	rows := BuildTable(all, f)
	require.Len(t, rows, 2)
	assert.Equal(t, "full", rows[0].Query)
	assert.Equal(t, models.PositionFromGSC, rows[0].PositionSource)

	rankOnly := rows[1]
	assert.Equal(t, "rank-only", rankOnly.Query)
	require.NotNil(t, rankOnly.Position)
	assert.Equal(t, 3.0, *rankOnly.Position)
	assert.Equal(t, models.PositionFromAhrefs, rankOnly.PositionSource)
	assert.Nil(t, rankOnly.Volume)

	stats := Summarize(all, f.DateRange, f)
	assert.Equal(t, 8.0, stats.AvgPosition)
	assert.Equal(t, 100.0, stats.TotalVolume)
	assert.Equal(t, 10.0, stats.TotalTraffic)
}
