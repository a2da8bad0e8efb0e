package seosvc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_dashboard/internal/api/seo/models"
)

func fullRange() models.FilterOptions {
	return models.FilterOptions{DateRange: models.DateRange{Start: "2024-01-01", End: "2024-01-31"}}
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 50.0, PercentChange(150, 100))
	assert.Equal(t, -25.0, PercentChange(75, 100))
	assert.Equal(t, 0.0, PercentChange(10, 0))
	assert.Equal(t, 0.0, PercentChange(0, 0))
	assert.Equal(t, 0.0, PercentChange(10, -5))
	assert.Equal(t, 0.0, PercentChange(math.NaN(), 10))
	assert.Equal(t, 0.0, PercentChange(10, math.Inf(1)))
}

func TestPositionChange_InvertsSign(t *testing.T) {
	// Vị trí từ 10 xuống 5 là cải thiện
	assert.Equal(t, 50.0, PositionChange(5, 10))
	assert.Equal(t, -50.0, PositionChange(15, 10))
	assert.Equal(t, 0.0, PositionChange(5, 0))
	assert.Equal(t, 0.0, PositionChange(0, 10))

	assert.Equal(t, -PercentChange(5, 10), PositionChange(5, 10))
}

func TestSummarize_Scenario(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		{Date: "2024-01-01", Clicks: models.Float(10), Impressions: models.Float(100)},
		{Date: "2024-01-02", Clicks: models.Float(20), Impressions: models.Float(100)},
	})

	stats := Summarize(metrics, fullRange().DateRange, fullRange())

	assert.Equal(t, 30.0, stats.TotalClicks)
	assert.Equal(t, 200.0, stats.TotalImpressions)
	assert.InDelta(t, 0.15, stats.AvgCTR, 1e-9)
}

func TestSummarize_CTRFallsBackToMeanWithoutImpressions(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		{Date: "2024-01-01", CTR: models.Float(0.1)},
		{Date: "2024-01-02", CTR: models.Float(0.3)},
	})

	stats := Summarize(metrics, fullRange().DateRange, fullRange())

	assert.InDelta(t, 0.2, stats.AvgCTR, 1e-9)
}

func TestSummarize_AvgPositionIgnoresNonPositive(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		{Date: "2024-01-01", Position: models.Float(4)},
		{Date: "2024-01-02", Position: models.Float(0)},
		{Date: "2024-01-03", Position: models.Float(-1)},
		{Date: "2024-01-04", Position: models.Float(8)},
		{Date: "2024-01-05", Clicks: models.Float(1)},
	})

	stats := Summarize(metrics, fullRange().DateRange, fullRange())

	assert.Equal(t, 6.0, stats.AvgPosition)
}

func TestSummarize_AhrefsPositionNeverMixedIn(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{{Date: "2024-01-01", Position: models.Float(10)}})
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "k", URL: "https://a.com", Position: models.Float(1), Volume: models.Float(100)},
	}, "2024-01-01")

	stats := Summarize(append(gsc, ahrefs...), fullRange().DateRange, fullRange())

	assert.Equal(t, 10.0, stats.AvgPosition)
	assert.Equal(t, 100.0, stats.TotalVolume)
}

func TestSummarize_PrefersTotalsUnlessDimensionFiltered(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 100, 1000, 0.1, 5),
		gscRow("2024-01-01", "a", "https://a.com/1", 30, 300, 0.1, 3),
		gscRow("2024-01-01", "b", "https://a.com/2", 20, 200, 0.1, 6),
	})

	f := fullRange()
	stats := Summarize(metrics, f.DateRange, f)
	assert.Equal(t, 100.0, stats.TotalClicks, "không đếm trùng dòng tổng và dòng chi tiết")

	f.URLs = []string{"https://a.com/2"}
	stats = Summarize(metrics, f.DateRange, f)
	assert.Equal(t, 20.0, stats.TotalClicks)
	assert.Equal(t, 6.0, stats.AvgPosition)

	// Không có dòng tổng: cộng dòng chi tiết
	details, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "a", "https://a.com/1", 30, 300, 0.1, 3),
		gscRow("2024-01-01", "b", "https://a.com/2", 20, 200, 0.1, 6),
	})
	stats = Summarize(details, fullRange().DateRange, fullRange())
	assert.Equal(t, 50.0, stats.TotalClicks)
}

func TestSummarize_VolumeNotDateFilteredButURLFiltered(t *testing.T) {
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "a", URL: "https://a.com/1", Volume: models.Float(100), Traffic: models.Float(10)},
		{Keyword: "b", URL: "https://a.com/2", Volume: models.Float(50), Traffic: models.Float(5)},
	}, "2023-06-01")

	f := fullRange()
	stats := Summarize(ahrefs, f.DateRange, f)
	assert.Equal(t, 150.0, stats.TotalVolume)
	assert.Equal(t, 15.0, stats.TotalTraffic)

	f.URLs = []string{"https://a.com/2"}
	stats = Summarize(ahrefs, f.DateRange, f)
	assert.Equal(t, 50.0, stats.TotalVolume)

	f.Sources = []models.Source{models.SourceGSC}
	stats = Summarize(ahrefs, f.DateRange, f)
	assert.Zero(t, stats.TotalVolume)
}

func TestSummarize_OnlySelectedMetrics(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 10, 100, 0.1, 4),
	})
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "a", URL: "https://a.com/1", Volume: models.Float(100), Traffic: models.Float(10)},
	}, "2024-01-01")

	f := fullRange()
	f.Metrics = []models.MetricType{models.MetricCTR, models.MetricVolume}
	stats := Summarize(append(gsc, ahrefs...), f.DateRange, f)

	assert.InDelta(t, 0.1, stats.AvgCTR, 1e-9, "CTR vẫn tính từ clicks/impressions")
	assert.Equal(t, 100.0, stats.TotalVolume)
	assert.Zero(t, stats.TotalClicks)
	assert.Zero(t, stats.TotalImpressions)
	assert.Zero(t, stats.AvgPosition)
	assert.Zero(t, stats.TotalTraffic)
}

func TestBuildChart_OnlySelectedMetrics(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 10, 100, 0.1, 4),
	})
	rng := models.DateRange{Start: "2024-01-01", End: "2024-01-01"}
	f := models.FilterOptions{DateRange: rng, Metrics: []models.MetricType{models.MetricClicks}}

	points := BuildChart(metrics, rng, f)

	require.Len(t, points, 1)
	assert.Equal(t, 10.0, points[0].Clicks)
	assert.Zero(t, points[0].Impressions)
	assert.Zero(t, points[0].CTR)
	assert.Nil(t, points[0].Position)
}

func TestBuildComparisonSummary(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 10, 100, 0.1, 10),
		gscRow("2024-01-08", "", "", 15, 150, 0.1, 5),
	})
	f := models.FilterOptions{
		DateRange:       models.DateRange{Start: "2024-01-08", End: "2024-01-14"},
		ComparisonRange: &models.DateRange{Start: "2024-01-01", End: "2024-01-07"},
	}

	summary := BuildComparisonSummary(metrics, f)

	assert.Equal(t, 15.0, summary.Current.TotalClicks)
	require.NotNil(t, summary.Previous)
	assert.Equal(t, 10.0, summary.Previous.TotalClicks)
	require.NotNil(t, summary.Changes)
	assert.Equal(t, 50.0, summary.Changes.Clicks)
	assert.Equal(t, 50.0, summary.Changes.Impressions)
	assert.Equal(t, 0.0, summary.Changes.CTR)
	assert.Equal(t, 50.0, summary.Changes.Position)

	f.ComparisonRange = nil
	summary = BuildComparisonSummary(metrics, f)
	assert.Nil(t, summary.Previous)
	assert.Nil(t, summary.Changes)
}

func TestBuildChart_FillsMissingDates(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 10, 100, 0.1, 4),
		gscRow("2024-01-03", "", "", 20, 100, 0.2, 6),
	})
	rng := models.DateRange{Start: "2024-01-01", End: "2024-01-04"}

	points := BuildChart(metrics, rng, models.FilterOptions{DateRange: rng})

	require.Len(t, points, 4)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, 10.0, points[0].Clicks)
	assert.InDelta(t, 0.1, points[0].CTR, 1e-9)
	require.NotNil(t, points[0].Position)
	assert.Equal(t, 4.0, *points[0].Position)
	assert.Equal(t, "2024-01-02", points[1].Date)
	assert.Zero(t, points[1].Clicks)
	assert.Nil(t, points[1].Position)
	assert.Equal(t, 20.0, points[2].Clicks)
	assert.Equal(t, "2024-01-04", points[3].Date)
}

func TestBuildChartSeries_WithComparison(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 1, 10, 0.1, 4),
		gscRow("2024-01-08", "", "", 2, 10, 0.2, 3),
	})
	f := models.FilterOptions{
		DateRange:       models.DateRange{Start: "2024-01-08", End: "2024-01-09"},
		ComparisonRange: &models.DateRange{Start: "2024-01-01", End: "2024-01-02"},
	}

	series := BuildChartSeries(metrics, f)

	require.Len(t, series.Current, 2)
	require.Len(t, series.Previous, 2)
	assert.Equal(t, 2.0, series.Current[0].Clicks)
	assert.Equal(t, 1.0, series.Previous[0].Clicks)
}

func TestBuildTable(t *testing.T) {
	gsc, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "", "", 999, 9999, 0.1, 9),
		gscRow("2024-01-01", "a", "https://a.com/1", 10, 100, 0.1, 2),
		gscRow("2024-01-02", "a", "https://a.com/1", 10, 300, 0.03, 6),
		gscRow("2024-01-01", "b", "https://a.com/2", 30, 100, 0.3, 1),
	})
	ahrefs, _ := NormalizeAhrefsRows([]models.AhrefsRow{
		{Keyword: "a", URL: "https://a.com/1", Volume: models.Float(500), Traffic: models.Float(20), Difficulty: models.Float(12)},
		{Keyword: "c", URL: "https://a.com/3", Volume: models.Float(800), Position: models.Float(7)},
		{Keyword: "c", URL: "https://a.com/3", Volume: models.Float(900), Position: models.Float(4), Date: "2024-01-20"},
	}, "2024-01-10")

	rows := BuildTable(append(gsc, ahrefs...), fullRange())

	require.Len(t, rows, 3)

	assert.Equal(t, "b", rows[0].Query)
	assert.Equal(t, 30.0, rows[0].Clicks)
	assert.Equal(t, models.PositionFromGSC, rows[0].PositionSource)

	a := rows[1]
	assert.Equal(t, "a", a.Query)
	assert.Equal(t, 20.0, a.Clicks)
	assert.Equal(t, 400.0, a.Impressions)
	assert.InDelta(t, 0.05, a.CTR, 1e-9)
	require.NotNil(t, a.Position)
	// (2*100 + 6*300) / 400
	assert.InDelta(t, 5.0, *a.Position, 1e-9)
	assert.Equal(t, 500.0, *a.Volume)
	assert.Equal(t, 12.0, *a.Difficulty)
	assert.Nil(t, a.ClicksChange)

	c := rows[2]
	assert.Equal(t, "c", c.Query)
	assert.Zero(t, c.Clicks)
	require.NotNil(t, c.Position)
	assert.Equal(t, 4.0, *c.Position, "snapshot mới nhất thắng")
	assert.Equal(t, models.PositionFromAhrefs, c.PositionSource)
	assert.Equal(t, 900.0, *c.Volume)
}

func TestBuildTable_Comparison(t *testing.T) {
	metrics, _ := NormalizeGSCRows([]models.GSCRow{
		gscRow("2024-01-01", "a", "https://a.com/1", 10, 100, 0.1, 8),
		gscRow("2024-01-08", "a", "https://a.com/1", 20, 100, 0.2, 4),
		gscRow("2024-01-08", "new", "https://a.com/9", 5, 50, 0.1, 3),
	})
	f := models.FilterOptions{
		DateRange:       models.DateRange{Start: "2024-01-08", End: "2024-01-14"},
		ComparisonRange: &models.DateRange{Start: "2024-01-01", End: "2024-01-07"},
	}

	rows := BuildTable(metrics, f)

	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].ClicksChange)
	assert.Equal(t, 100.0, *rows[0].ClicksChange)
	require.NotNil(t, rows[0].PositionChange)
	assert.Equal(t, 50.0, *rows[0].PositionChange)

	assert.Equal(t, "new", rows[1].Query)
	assert.Equal(t, 0.0, *rows[1].ClicksChange)
	assert.Nil(t, rows[1].PositionChange)
}
