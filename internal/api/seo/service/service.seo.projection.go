package seosvc

import (
	"time"

	"seo_dashboard/internal/api/seo/models"
)

// WriteDocuments dựng document lưu trữ từ các entry đã chuẩn hóa.
// GSC: một document cho mỗi entry (metric_type/value + đúng cột đó).
// Ahrefs: gộp các entry cùng key thành một document. Thứ tự theo lần xuất hiện đầu tiên.
func WriteDocuments(metrics []models.NormalizedMetric, importID, siteURL string, now time.Time) []models.ReportingDocument {
	createdAt := now.Unix()
	docs := make([]models.ReportingDocument, 0, len(metrics))
	ahrefsIndex := make(map[models.MetricKey]int)

	for _, m := range metrics {
		value := m.Value
		switch m.Source {
		case models.SourceAhrefs:
			key := m.Key()
			idx, seen := ahrefsIndex[key]
			if !seen {
				doc := models.ReportingDocument{
					ImportID:     importID,
					SiteURL:      siteURL,
					Source:       m.Source,
					Date:         m.Date,
					Query:        m.Query,
					URL:          m.URL,
					IsTimeSeries: m.IsTimeSeries(),
					CreatedAt:    createdAt,
				}
				docs = append(docs, doc)
				idx = len(docs) - 1
				ahrefsIndex[key] = idx
			}
			doc := &docs[idx]
			doc.MetricValues.Merge(m.Metrics)
			doc.MetricValues.Set(m.MetricType, &value)
			if m.Comparison != nil {
				mergeComparison(&doc.AhrefsComparison, *m.Comparison)
			}

		default:
			doc := models.ReportingDocument{
				ImportID:     importID,
				SiteURL:      siteURL,
				Source:       m.Source,
				Date:         m.Date,
				Query:        m.Query,
				URL:          m.URL,
				MetricType:   m.MetricType,
				Value:        &value,
				IsTimeSeries: m.IsTimeSeries(),
				CreatedAt:    createdAt,
			}
			doc.MetricValues.Set(m.MetricType, &value)
			docs = append(docs, doc)
		}
	}
	return docs
}

// ReadDocuments gom document theo (date, query, url, source), cộng dồn mọi cột chỉ số
// rồi bung lại thành một entry cho mỗi chỉ số có giá trị, kèm giá trị các chỉ số anh em.
func ReadDocuments(docs []models.ReportingDocument) []models.NormalizedMetric {
	type group struct {
		key        models.MetricKey
		values     models.MetricValues
		comparison models.AhrefsComparison
	}

	var order []*group
	groups := make(map[models.MetricKey]*group)

	for i := range docs {
		d := &docs[i]
		key := models.MetricKey{Date: d.Date, Query: d.Query, URL: d.URL, Source: d.Source}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, g)
		}
		if d.MetricType != "" && d.Value != nil {
			v := *d.Value
			g.values.Set(d.MetricType, &v)
		}
		g.values.Merge(d.MetricValues)
		mergeComparison(&g.comparison, d.AhrefsComparison)
	}

	metrics := make([]models.NormalizedMetric, 0, len(docs))
	for _, g := range order {
		var comparison *models.AhrefsComparison
		if !g.comparison.IsZero() {
			c := g.comparison
			comparison = &c
		}
		for _, mt := range models.EntryMetrics(g.key.Source, g.values) {
			v := g.values.Get(mt)
			metrics = append(metrics, models.NormalizedMetric{
				Date:       g.key.Date,
				Source:     g.key.Source,
				Query:      g.key.Query,
				URL:        g.key.URL,
				MetricType: mt,
				Value:      *v,
				Metrics:    g.values,
				Comparison: comparison,
			})
		}
	}
	return metrics
}

// mergeComparison chép các cột khác rỗng từ src sang dst
func mergeComparison(dst *models.AhrefsComparison, src models.AhrefsComparison) {
	if src.PreviousTraffic != nil {
		dst.PreviousTraffic = src.PreviousTraffic
	}
	if src.PreviousPosition != nil {
		dst.PreviousPosition = src.PreviousPosition
	}
	if src.TrafficChange != nil {
		dst.TrafficChange = src.TrafficChange
	}
	if src.PositionChange != nil {
		dst.PositionChange = src.PositionChange
	}
	if src.PreviousDate != "" {
		dst.PreviousDate = src.PreviousDate
	}
	if src.Difficulty != nil {
		dst.Difficulty = src.Difficulty
	}
	if src.CPC != nil {
		dst.CPC = src.CPC
	}
}
