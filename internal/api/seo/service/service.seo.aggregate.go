package seosvc

import (
	"math"
	"sort"
	"time"

	"seo_dashboard/internal/api/seo/models"
)

// PercentChange = (cur - prev) / prev * 100 khi prev > 0, ngược lại 0. Không bao giờ trả NaN/Inf.
func PercentChange(cur, prev float64) float64 {
	if !(prev > 0) || math.IsInf(prev, 0) || math.IsNaN(cur) || math.IsInf(cur, 0) {
		return 0
	}
	return (cur - prev) / prev * 100
}

// PositionChange đảo dấu so với PercentChange: vị trí giảm (tốt hơn) cho kết quả dương.
// Kỳ hiện tại không có vị trí (cur <= 0) cho kết quả 0.
func PositionChange(cur, prev float64) float64 {
	if !(cur > 0) {
		return 0
	}
	return -PercentChange(cur, prev)
}

// inRange lọc entry theo nguồn, khoảng ngày và tập url/query đã chọn
func inRange(metrics []models.NormalizedMetric, src models.Source, rng models.DateRange, f models.FilterOptions) []models.NormalizedMetric {
	out := make([]models.NormalizedMetric, 0, len(metrics))
	for _, m := range metrics {
		if m.Source != src || !rng.Contains(m.Date) {
			continue
		}
		if !m.IsTimeSeries() && (!f.MatchesURL(m.URL) || !f.MatchesQuery(m.Query)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// gscRowsForTotals chọn tập dòng GSC để tính tổng mà không đếm trùng:
// có lọc url/query thì dùng dòng chi tiết; không lọc thì ưu tiên dòng tổng theo ngày,
// rơi về dòng chi tiết khi không có dòng tổng.
func gscRowsForTotals(metrics []models.NormalizedMetric, rng models.DateRange, f models.FilterOptions) []models.NormalizedMetric {
	rows := inRange(metrics, models.SourceGSC, rng, f)
	var totals, details []models.NormalizedMetric
	for _, m := range rows {
		if m.IsTimeSeries() {
			totals = append(totals, m)
		} else {
			details = append(details, m)
		}
	}
	if f.HasDimensionFilter() || len(totals) == 0 {
		return details
	}
	return totals
}

// accumulator cộng dồn chỉ số GSC
type accumulator struct {
	clicks, impressions float64
	ctrSum              float64
	ctrCount            int
	posSum              float64
	posCount            int
}

func (a *accumulator) add(m models.NormalizedMetric) {
	switch m.MetricType {
	case models.MetricClicks:
		a.clicks += m.Value
	case models.MetricImpressions:
		a.impressions += m.Value
	case models.MetricCTR:
		a.ctrSum += m.Value
		a.ctrCount++
	case models.MetricPosition:
		if m.Value > 0 {
			a.posSum += m.Value
			a.posCount++
		}
	}
}

// ctr: clicks/impressions khi có impressions, ngược lại trung bình các giá trị CTR
func (a *accumulator) ctr() float64 {
	if a.impressions > 0 {
		return a.clicks / a.impressions
	}
	if a.ctrCount > 0 {
		return a.ctrSum / float64(a.ctrCount)
	}
	return 0
}

func (a *accumulator) position() float64 {
	if a.posCount == 0 {
		return 0
	}
	return a.posSum / float64(a.posCount)
}

// Summarize tính thống kê tổng hợp cho một kỳ.
// Volume/traffic Ahrefs là snapshot nên chỉ lọc theo url/query, không lọc theo ngày.
func Summarize(metrics []models.NormalizedMetric, rng models.DateRange, f models.FilterOptions) models.SummaryStats {
	var stats models.SummaryStats

	if f.HasSource(models.SourceGSC) {
		var acc accumulator
		for _, m := range gscRowsForTotals(metrics, rng, f) {
			acc.add(m)
		}
		stats.TotalClicks = acc.clicks
		stats.TotalImpressions = acc.impressions
		stats.AvgCTR = acc.ctr()
		stats.AvgPosition = acc.position()
	}

	if f.HasSource(models.SourceAhrefs) {
		for _, m := range metrics {
			if m.Source != models.SourceAhrefs || !f.MatchesURL(m.URL) || !f.MatchesQuery(m.Query) {
				continue
			}
			switch m.MetricType {
			case models.MetricVolume:
				stats.TotalVolume += m.Value
			case models.MetricTraffic:
				stats.TotalTraffic += m.Value
			}
		}
	}
	return selectStats(stats, f)
}

// selectStats đưa về 0 các chỉ số không được chọn trong f.Metrics.
// CTR vẫn được tính từ clicks/impressions trước khi lọc.
func selectStats(stats models.SummaryStats, f models.FilterOptions) models.SummaryStats {
	if !f.HasMetric(models.MetricClicks) {
		stats.TotalClicks = 0
	}
	if !f.HasMetric(models.MetricImpressions) {
		stats.TotalImpressions = 0
	}
	if !f.HasMetric(models.MetricCTR) {
		stats.AvgCTR = 0
	}
	if !f.HasMetric(models.MetricPosition) {
		stats.AvgPosition = 0
	}
	if !f.HasMetric(models.MetricVolume) {
		stats.TotalVolume = 0
	}
	if !f.HasMetric(models.MetricTraffic) {
		stats.TotalTraffic = 0
	}
	return stats
}

// Compare tính phần trăm thay đổi giữa hai kỳ
func Compare(current, previous models.SummaryStats) models.SummaryChanges {
	return models.SummaryChanges{
		Clicks:      PercentChange(current.TotalClicks, previous.TotalClicks),
		Impressions: PercentChange(current.TotalImpressions, previous.TotalImpressions),
		CTR:         PercentChange(current.AvgCTR, previous.AvgCTR),
		Position:    PositionChange(current.AvgPosition, previous.AvgPosition),
	}
}

// BuildComparisonSummary tính quick view cho kỳ chính và kỳ so sánh (nếu có)
func BuildComparisonSummary(metrics []models.NormalizedMetric, f models.FilterOptions) models.ComparisonSummary {
	out := models.ComparisonSummary{Current: Summarize(metrics, f.DateRange, f)}
	if f.ComparisonRange != nil {
		prev := Summarize(metrics, *f.ComparisonRange, f)
		changes := Compare(out.Current, prev)
		out.Previous = &prev
		out.Changes = &changes
	}
	return out
}

// BuildChart trả về một điểm cho mỗi ngày trong khoảng; ngày không có dữ liệu có giá trị 0.
func BuildChart(metrics []models.NormalizedMetric, rng models.DateRange, f models.FilterOptions) []models.ChartPoint {
	byDate := make(map[string]*accumulator)
	for _, m := range gscRowsForTotals(metrics, rng, f) {
		acc, ok := byDate[m.Date]
		if !ok {
			acc = &accumulator{}
			byDate[m.Date] = acc
		}
		acc.add(m)
	}

	dates := datesInRange(rng)
	if dates == nil {
		// Khoảng không hợp lệ: chỉ trả các ngày có dữ liệu
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Strings(dates)
	}

	points := make([]models.ChartPoint, 0, len(dates))
	for _, d := range dates {
		point := models.ChartPoint{Date: d}
		if acc, ok := byDate[d]; ok {
			if f.HasMetric(models.MetricClicks) {
				point.Clicks = acc.clicks
			}
			if f.HasMetric(models.MetricImpressions) {
				point.Impressions = acc.impressions
			}
			if f.HasMetric(models.MetricCTR) {
				point.CTR = acc.ctr()
			}
			if acc.posCount > 0 && f.HasMetric(models.MetricPosition) {
				point.Position = models.Float(acc.position())
			}
		}
		points = append(points, point)
	}
	return points
}

// maxChartDays giới hạn số điểm sinh ra cho một khoảng ngày
const maxChartDays = 731

func datesInRange(rng models.DateRange) []string {
	n := rng.Days()
	if n == 0 || n > maxChartDays {
		return nil
	}
	start, _ := time.Parse(models.DateLayout, rng.Start)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(models.DateLayout))
	}
	return dates
}

// BuildChartSeries tính chuỗi kỳ chính và kỳ so sánh
func BuildChartSeries(metrics []models.NormalizedMetric, f models.FilterOptions) models.ChartSeries {
	series := models.ChartSeries{Current: BuildChart(metrics, f.DateRange, f)}
	if f.ComparisonRange != nil {
		series.Previous = BuildChart(metrics, *f.ComparisonRange, f)
	}
	return series
}

type tableKey struct {
	query, url string
}

// tableAcc cộng dồn chỉ số GSC của một (query, url)
type tableAcc struct {
	clicks, impressions float64
	weightedPos         float64 // tổng position * impressions
	weight              float64
	posSum              float64
	posCount            int
}

func (t *tableAcc) add(m models.NormalizedMetric) {
	switch m.MetricType {
	case models.MetricClicks:
		t.clicks += m.Value
	case models.MetricImpressions:
		t.impressions += m.Value
	case models.MetricPosition:
		if m.Value <= 0 {
			return
		}
		t.posSum += m.Value
		t.posCount++
		if m.Metrics.Impressions != nil && *m.Metrics.Impressions > 0 {
			t.weightedPos += m.Value * *m.Metrics.Impressions
			t.weight += *m.Metrics.Impressions
		}
	}
}

// position trung bình có trọng số theo impressions, rơi về trung bình thường khi không có trọng số
func (t *tableAcc) position() (float64, bool) {
	if t.weight > 0 {
		return t.weightedPos / t.weight, true
	}
	if t.posCount > 0 {
		return t.posSum / float64(t.posCount), true
	}
	return 0, false
}

func aggregateDetails(metrics []models.NormalizedMetric, rng models.DateRange, f models.FilterOptions) (map[tableKey]*tableAcc, []tableKey) {
	accs := make(map[tableKey]*tableAcc)
	var order []tableKey
	for _, m := range inRange(metrics, models.SourceGSC, rng, f) {
		if m.IsTimeSeries() {
			continue
		}
		k := tableKey{query: m.Query, url: m.URL}
		acc, ok := accs[k]
		if !ok {
			acc = &tableAcc{}
			accs[k] = acc
			order = append(order, k)
		}
		acc.add(m)
	}
	return accs, order
}

// BuildTable gom dòng chi tiết theo (query, url). Vị trí GSC tính theo trọng số impressions,
// thiếu GSC thì lấy vị trí Ahrefs. Volume/traffic lấy từ snapshot Ahrefs.
func BuildTable(metrics []models.NormalizedMetric, f models.FilterOptions) []models.TableRow {
	var current map[tableKey]*tableAcc
	var order []tableKey
	if f.HasSource(models.SourceGSC) {
		current, order = aggregateDetails(metrics, f.DateRange, f)
	}

	var previous map[tableKey]*tableAcc
	if f.ComparisonRange != nil && f.HasSource(models.SourceGSC) {
		previous, _ = aggregateDetails(metrics, *f.ComparisonRange, f)
	}

	ahrefs := make(map[tableKey]models.MetricValues)
	ahrefsDates := make(map[tableKey]string)
	difficulty := make(map[tableKey]*float64)
	if f.HasSource(models.SourceAhrefs) {
		for _, m := range metrics {
			if m.Source != models.SourceAhrefs || !f.MatchesURL(m.URL) || !f.MatchesQuery(m.Query) {
				continue
			}
			k := tableKey{query: m.Query, url: m.URL}
			if _, ok := ahrefs[k]; !ok {
				if _, inGSC := current[k]; !inGSC {
					order = append(order, k)
				}
			}
			// Snapshot mới nhất thắng khi một keyword có nhiều ngày
			existing, ok := ahrefs[k]
			if !ok || m.Date >= ahrefsDates[k] {
				merged := existing
				merged.Merge(m.Metrics)
				ahrefs[k] = merged
				ahrefsDates[k] = m.Date
				if m.Comparison != nil && m.Comparison.Difficulty != nil {
					difficulty[k] = m.Comparison.Difficulty
				}
			}
		}
	}

	rows := make([]models.TableRow, 0, len(order))
	for _, k := range order {
		row := models.TableRow{Query: k.query, URL: k.url}
		if acc, ok := current[k]; ok {
			row.Clicks = acc.clicks
			row.Impressions = acc.impressions
			if acc.impressions > 0 {
				row.CTR = acc.clicks / acc.impressions
			}
			if pos, ok := acc.position(); ok {
				row.Position = models.Float(pos)
				row.PositionSource = models.PositionFromGSC
			}
		}
		if snap, ok := ahrefs[k]; ok {
			row.Volume = snap.Volume
			row.Traffic = snap.Traffic
			row.Difficulty = difficulty[k]
			if row.Position == nil && snap.Position != nil && *snap.Position > 0 {
				row.Position = snap.Position
				row.PositionSource = models.PositionFromAhrefs
			}
		}
		if previous != nil {
			var prev tableAcc
			if p, ok := previous[k]; ok {
				prev = *p
			}
			row.ClicksChange = models.Float(PercentChange(row.Clicks, prev.clicks))
			row.ImpressionsChange = models.Float(PercentChange(row.Impressions, prev.impressions))
			if prevPos, ok := prev.position(); ok && row.PositionSource == models.PositionFromGSC {
				row.PositionChange = models.Float(PositionChange(*row.Position, prevPos))
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Clicks != rows[j].Clicks {
			return rows[i].Clicks > rows[j].Clicks
		}
		if rows[i].Impressions != rows[j].Impressions {
			return rows[i].Impressions > rows[j].Impressions
		}
		vi, vj := valueOr(rows[i].Volume), valueOr(rows[j].Volume)
		if vi != vj {
			return vi > vj
		}
		if rows[i].Query != rows[j].Query {
			return rows[i].Query < rows[j].Query
		}
		return rows[i].URL < rows[j].URL
	})
	return rows
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
