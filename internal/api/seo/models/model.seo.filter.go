package models

import (
	"time"

	"seo_dashboard/internal/utility"
)

// DateLayout là định dạng ngày dùng trong toàn domain
const DateLayout = "2006-01-02"

// DateRange là khoảng ngày đóng [Start, End], dạng YYYY-MM-DD
type DateRange struct {
	Start string `json:"start" validate:"omitempty,date_ymd"`
	End   string `json:"end" validate:"omitempty,date_ymd"`
}

// Contains kiểm tra date (YYYY-MM-DD) có nằm trong khoảng
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// IsZero cho biết khoảng chưa được đặt
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Days trả về số ngày của khoảng (tính cả hai đầu), 0 nếu không hợp lệ
func (r DateRange) Days() int {
	start, err1 := time.Parse(DateLayout, r.Start)
	end, err2 := time.Parse(DateLayout, r.End)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// FilterOptions là bộ lọc của một section trên dashboard
type FilterOptions struct {
	DateRange       DateRange    `json:"dateRange"`
	ComparisonRange *DateRange   `json:"comparisonRange,omitempty"`
	Preset          string       `json:"preset,omitempty"`
	Metrics         []MetricType `json:"metrics,omitempty"`
	Sources         []Source     `json:"sources,omitempty"`
	SiteURL         string       `json:"siteUrl,omitempty"`
	URLs            []string     `json:"urls,omitempty"`    // Giới hạn theo trang đã chọn
	Queries         []string     `json:"queries,omitempty"` // Giới hạn theo từ khóa đã chọn
}

// HasSource cho biết nguồn có được chọn (rỗng = tất cả)
func (f FilterOptions) HasSource(s Source) bool {
	return len(f.Sources) == 0 || utility.Contains(f.Sources, s)
}

// HasMetric cho biết chỉ số có được chọn (rỗng = tất cả)
func (f FilterOptions) HasMetric(m MetricType) bool {
	return len(f.Metrics) == 0 || utility.Contains(f.Metrics, m)
}

// MatchesURL kiểm tra url có thuộc tập URL đã chọn (rỗng = tất cả)
func (f FilterOptions) MatchesURL(url string) bool {
	return len(f.URLs) == 0 || utility.Contains(f.URLs, url)
}

// MatchesQuery kiểm tra query có thuộc tập từ khóa đã chọn (rỗng = tất cả)
func (f FilterOptions) MatchesQuery(query string) bool {
	return len(f.Queries) == 0 || utility.Contains(f.Queries, query)
}

// HasDimensionFilter cho biết có giới hạn theo url/query không.
// Khi có, dòng tổng theo ngày không dùng được vì không mang url/query.
func (f FilterOptions) HasDimensionFilter() bool {
	return len(f.URLs) > 0 || len(f.Queries) > 0
}

// SectionFilters gom bộ lọc riêng của từng section
type SectionFilters struct {
	QuickView FilterOptions `json:"quickView"`
	Chart     FilterOptions `json:"chart"`
	Table     FilterOptions `json:"table"`
}
