package seosvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	basemodels "seo_dashboard/internal/api/base/models"
	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/telemetry"
)

// Tên section trên dashboard
const (
	SectionQuickView = "quickView"
	SectionChart     = "chart"
	SectionTable     = "table"
	SectionQuery     = "query"
)

// MetricsQuery là tham số của endpoint truy vấn metric đã chuẩn hóa
type MetricsQuery struct {
	SiteURL    string
	StartDate  string
	EndDate    string
	Dimensions []string // query/page/url => dòng chi tiết; chỉ date => dòng tổng; rỗng => tất cả
	Source     models.Source
	Page       int64
	Limit      int64
}

// DashboardService đọc document, chuyển về NormalizedMetric và tổng hợp cho từng section.
// Mỗi section gọi độc lập với bộ lọc riêng.
type DashboardService struct {
	store   MetricStore
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewDashboardService tạo DashboardService; now nil = time.Now
func NewDashboardService(store MetricStore, metrics *telemetry.Metrics, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{store: store, metrics: metrics, now: now}
}

// Presets trả về các preset đã tính theo ngày hiện tại
func (s *DashboardService) Presets() []PresetRanges {
	return ListPresets(s.now())
}

// ResolveFilters áp dụng preset và kiểm tra bộ lọc theo ngày hiện tại
func (s *DashboardService) ResolveFilters(f models.FilterOptions) (models.FilterOptions, error) {
	return ResolveFilters(f, s.now())
}

// load đọc dữ liệu cần cho một section: GSC của site trong hợp hai khoảng ngày,
// Ahrefs toàn bộ snapshot (không lọc ngày).
func (s *DashboardService) load(ctx context.Context, f models.FilterOptions) ([]models.NormalizedMetric, error) {
	var docs []models.ReportingDocument

	if f.HasSource(models.SourceGSC) {
		span := f.DateRange
		if f.ComparisonRange != nil {
			if f.ComparisonRange.Start < span.Start {
				span.Start = f.ComparisonRange.Start
			}
			if f.ComparisonRange.End > span.End {
				span.End = f.ComparisonRange.End
			}
		}
		gsc, err := s.store.FindDocuments(ctx, DocumentFilter{
			Source:  models.SourceGSC,
			SiteURL: f.SiteURL,
			Start:   span.Start,
			End:     span.End,
		})
		if err != nil {
			return nil, fmt.Errorf("đọc dữ liệu GSC: %w", err)
		}
		docs = append(docs, gsc...)
	}

	if f.HasSource(models.SourceAhrefs) {
		ahrefs, err := s.store.FindDocuments(ctx, DocumentFilter{Source: models.SourceAhrefs})
		if err != nil {
			return nil, fmt.Errorf("đọc dữ liệu Ahrefs: %w", err)
		}
		docs = append(docs, ahrefs...)
	}

	return ReadDocuments(docs), nil
}

// Summary tính quick view cho kỳ chính và kỳ so sánh
func (s *DashboardService) Summary(ctx context.Context, f models.FilterOptions) (models.FilterOptions, models.ComparisonSummary, error) {
	s.metrics.ObserveDashboard(SectionQuickView)
	f, err := s.ResolveFilters(f)
	if err != nil {
		return f, models.ComparisonSummary{}, err
	}
	metrics, err := s.load(ctx, f)
	if err != nil {
		return f, models.ComparisonSummary{}, err
	}
	return f, BuildComparisonSummary(metrics, f), nil
}

// Chart tính chuỗi điểm theo ngày
func (s *DashboardService) Chart(ctx context.Context, f models.FilterOptions) (models.FilterOptions, models.ChartSeries, error) {
	s.metrics.ObserveDashboard(SectionChart)
	f, err := s.ResolveFilters(f)
	if err != nil {
		return f, models.ChartSeries{}, err
	}
	metrics, err := s.load(ctx, f)
	if err != nil {
		return f, models.ChartSeries{}, err
	}
	return f, BuildChartSeries(metrics, f), nil
}

// Table tính bảng chi tiết (query, url) có phân trang
func (s *DashboardService) Table(ctx context.Context, f models.FilterOptions, page, limit int64) (models.FilterOptions, *basemodels.PaginateResult[models.TableRow], error) {
	s.metrics.ObserveDashboard(SectionTable)
	f, err := s.ResolveFilters(f)
	if err != nil {
		return f, nil, err
	}
	metrics, err := s.load(ctx, f)
	if err != nil {
		return f, nil, err
	}
	page, limit = basemodels.NormalizePage(page, limit, 50, 1000)
	return f, basemodels.Paginate(BuildTable(metrics, f), page, limit), nil
}

// timeSeriesSelector chuyển danh sách dimensions thành bộ lọc dòng tổng/chi tiết
func timeSeriesSelector(dimensions []string) *bool {
	if len(dimensions) == 0 {
		return nil
	}
	detail := false
	for _, d := range dimensions {
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "query", "page", "url":
			detail = true
		}
	}
	ts := !detail
	return &ts
}

// QueryMetrics trả về các entry đã chuẩn hóa có phân trang.
// siteUrl chỉ giới hạn dữ liệu GSC vì snapshot Ahrefs không gắn với property.
func (s *DashboardService) QueryMetrics(ctx context.Context, q MetricsQuery) (*basemodels.PaginateResult[models.NormalizedMetric], error) {
	s.metrics.ObserveDashboard(SectionQuery)

	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if iso, ok := NormalizeDate(d); !ok || iso != d {
			return nil, common.WithDetails(common.ErrInvalidDate, d)
		}
	}
	if q.StartDate != "" && q.EndDate != "" && q.EndDate < q.StartDate {
		return nil, common.WithDetails(common.ErrInvalidRange, models.DateRange{Start: q.StartDate, End: q.EndDate})
	}
	if q.Source != "" && !q.Source.Valid() {
		return nil, common.WithDetails(common.ErrInvalidSource, string(q.Source))
	}

	sources := models.Sources
	if q.Source != "" {
		sources = []models.Source{q.Source}
	}
	ts := timeSeriesSelector(q.Dimensions)

	var docs []models.ReportingDocument
	for _, src := range sources {
		filter := DocumentFilter{
			Source:     src,
			Start:      q.StartDate,
			End:        q.EndDate,
			TimeSeries: ts,
		}
		if src == models.SourceGSC {
			filter.SiteURL = q.SiteURL
		}
		part, err := s.store.FindDocuments(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("đọc dữ liệu %s: %w", src, err)
		}
		docs = append(docs, part...)
	}

	page, limit := basemodels.NormalizePage(q.Page, q.Limit, 100, 1000)
	return basemodels.Paginate(ReadDocuments(docs), page, limit), nil
}
