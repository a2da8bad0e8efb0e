// Package seosvc chứa pipeline chuẩn hóa, lưu trữ và tổng hợp dữ liệu SEO.
package seosvc

import (
	"math"
	"strings"
	"time"

	"seo_dashboard/internal/api/seo/models"
)

// dateLayouts là các định dạng ngày chấp nhận khi đọc dữ liệu thô
var dateLayouts = []string{
	models.DateLayout,
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	"2006.01.02",
}

// NormalizeDate chuyển ngày thô về YYYY-MM-DD. ok = false nếu rỗng hoặc không đọc được.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	// RFC3339 / datetime: chỉ lấy phần ngày
	if len(raw) > 10 && (raw[10] == 'T' || raw[10] == ' ') {
		raw = raw[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(models.DateLayout), true
		}
	}
	return "", false
}

// finite trả về nil cho giá trị NaN/Inf
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// NormalizeGSCRows bung mỗi dòng GSC thành một entry cho mỗi chỉ số có giá trị.
// Dòng thiếu ngày, ngày không hợp lệ hoặc không có chỉ số nào bị bỏ qua và được đếm vào skipped.
func NormalizeGSCRows(rows []models.GSCRow) (metrics []models.NormalizedMetric, skipped int) {
	metrics = make([]models.NormalizedMetric, 0, len(rows)*4)
	for _, row := range rows {
		date, ok := NormalizeDate(row.Date)
		if !ok {
			skipped++
			continue
		}

		values := models.MetricValues{
			Clicks:      finite(row.Clicks),
			Impressions: finite(row.Impressions),
			CTR:         finite(row.CTR),
			Position:    finite(row.Position),
		}
		query := strings.TrimSpace(row.Query)
		page := strings.TrimSpace(row.Page)

		emitted := models.EntryMetrics(models.SourceGSC, values)
		if len(emitted) == 0 {
			skipped++
			continue
		}
		for _, mt := range emitted {
			v := values.Get(mt)
			metrics = append(metrics, models.NormalizedMetric{
				Date:       date,
				Source:     models.SourceGSC,
				Query:      query,
				URL:        page,
				MetricType: mt,
				Value:      *v,
				Metrics:    values,
			})
		}
	}
	return metrics, skipped
}

// NormalizeAhrefsRows bung mỗi dòng Ahrefs thành entry volume/traffic, mang theo các cột so sánh.
// Dòng chỉ có vị trí sinh một entry position. snapshotDate được dùng khi dòng không có cột ngày.
// Dòng không có keyword lẫn url, sai ngày hoặc không có chỉ số nào bị đếm vào skipped.
func NormalizeAhrefsRows(rows []models.AhrefsRow, snapshotDate string) (metrics []models.NormalizedMetric, skipped int) {
	metrics = make([]models.NormalizedMetric, 0, len(rows)*2)
	for _, row := range rows {
		rawDate := row.Date
		if strings.TrimSpace(rawDate) == "" {
			rawDate = snapshotDate
		}
		date, ok := NormalizeDate(rawDate)
		keyword := strings.TrimSpace(row.Keyword)
		url := strings.TrimSpace(row.URL)
		if !ok || (keyword == "" && url == "") {
			skipped++
			continue
		}

		values := models.MetricValues{
			Position: finite(row.Position),
			Volume:   finite(row.Volume),
			Traffic:  finite(row.Traffic),
		}
		comparison := models.AhrefsComparison{
			PreviousTraffic:  finite(row.PreviousTraffic),
			PreviousPosition: finite(row.PreviousPosition),
			TrafficChange:    finite(row.TrafficChange),
			PositionChange:   finite(row.PositionChange),
			Difficulty:       finite(row.Difficulty),
			CPC:              finite(row.CPC),
		}
		if prev, ok := NormalizeDate(row.PreviousDate); ok {
			comparison.PreviousDate = prev
		}

		emitted := models.EntryMetrics(models.SourceAhrefs, values)
		if len(emitted) == 0 {
			skipped++
			continue
		}
		for _, mt := range emitted {
			v := values.Get(mt)
			entry := models.NormalizedMetric{
				Date:       date,
				Source:     models.SourceAhrefs,
				Query:      keyword,
				URL:        url,
				MetricType: mt,
				Value:      *v,
				Metrics:    values,
			}
			if !comparison.IsZero() {
				c := comparison
				entry.Comparison = &c
			}
			metrics = append(metrics, entry)
		}
	}
	return metrics, skipped
}
