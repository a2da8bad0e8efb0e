package seosvc

import (
	"fmt"
	"time"

	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
)

// Tên các preset khoảng so sánh
const (
	PresetLast7Days          = "last-7-days"
	PresetLast28Days         = "last-28-days"
	PresetLast3Months        = "last-3-months"
	PresetLast7VsPrevious    = "last-7-days-vs-previous"
	PresetLast28VsPrevious   = "last-28-days-vs-previous"
	PresetLast3MVsPrevious   = "last-3-months-vs-previous"
	PresetLast7YearOverYear  = "last-7-days-yoy"
	PresetLast28YearOverYear = "last-28-days-yoy"
	PresetLast3MYearOverYear = "last-3-months-yoy"
	PresetCustom             = "custom"
)

type presetDef struct {
	days       int
	comparison string // "", "previous", "yoy"
	label      string
}

var presets = map[string]presetDef{
	PresetLast7Days:          {7, "", "Last 7 days"},
	PresetLast28Days:         {28, "", "Last 28 days"},
	PresetLast3Months:        {90, "", "Last 3 months"},
	PresetLast7VsPrevious:    {7, "previous", "Last 7 days vs previous period"},
	PresetLast28VsPrevious:   {28, "previous", "Last 28 days vs previous period"},
	PresetLast3MVsPrevious:   {90, "previous", "Last 3 months vs previous period"},
	PresetLast7YearOverYear:  {7, "yoy", "Last 7 days year over year"},
	PresetLast28YearOverYear: {28, "yoy", "Last 28 days year over year"},
	PresetLast3MYearOverYear: {90, "yoy", "Last 3 months year over year"},
}

// presetOrder là thứ tự hiển thị
var presetOrder = []string{
	PresetLast7Days, PresetLast28Days, PresetLast3Months,
	PresetLast7VsPrevious, PresetLast28VsPrevious, PresetLast3MVsPrevious,
	PresetLast7YearOverYear, PresetLast28YearOverYear, PresetLast3MYearOverYear,
}

// PresetRanges là kết quả của một preset
type PresetRanges struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Primary    models.DateRange  `json:"primary"`
	Comparison *models.DateRange `json:"comparison,omitempty"`
}

// ResolvePreset ánh xạ tên preset thành khoảng chính và khoảng so sánh, tính theo ngày của now.
// Khoảng chính kết thúc hôm qua vì dữ liệu GSC của ngày hiện tại chưa đầy đủ.
func ResolvePreset(name string, now time.Time) (PresetRanges, error) {
	def, ok := presets[name]
	if !ok {
		return PresetRanges{}, common.WithDetails(common.ErrUnknownPreset, name)
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(def.days - 1))

	out := PresetRanges{
		Name:    name,
		Label:   def.label,
		Primary: dateRange(start, end),
	}

	switch def.comparison {
	case "previous":
		prevEnd := start.AddDate(0, 0, -1)
		prevStart := prevEnd.AddDate(0, 0, -(def.days - 1))
		r := dateRange(prevStart, prevEnd)
		out.Comparison = &r
	case "yoy":
		r := dateRange(start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0))
		out.Comparison = &r
	}
	return out, nil
}

// ListPresets trả về tất cả preset đã tính theo now
func ListPresets(now time.Time) []PresetRanges {
	out := make([]PresetRanges, 0, len(presetOrder))
	for _, name := range presetOrder {
		r, _ := ResolvePreset(name, now)
		out = append(out, r)
	}
	return out
}

func dateRange(start, end time.Time) models.DateRange {
	return models.DateRange{Start: start.Format(models.DateLayout), End: end.Format(models.DateLayout)}
}

// ResolveFilters áp dụng preset (nếu có) và kiểm tra các khoảng ngày.
// Preset rỗng hoặc "custom" yêu cầu caller tự truyền DateRange.
func ResolveFilters(f models.FilterOptions, now time.Time) (models.FilterOptions, error) {
	if f.Preset != "" && f.Preset != PresetCustom {
		r, err := ResolvePreset(f.Preset, now)
		if err != nil {
			return f, err
		}
		f.DateRange = r.Primary
		f.ComparisonRange = r.Comparison
	}

	if err := validateRange(f.DateRange); err != nil {
		return f, fmt.Errorf("dateRange: %w", err)
	}
	if f.ComparisonRange != nil {
		if f.ComparisonRange.IsZero() {
			f.ComparisonRange = nil
		} else if err := validateRange(*f.ComparisonRange); err != nil {
			return f, fmt.Errorf("comparisonRange: %w", err)
		}
	}
	for _, src := range f.Sources {
		if !src.Valid() {
			return f, common.WithDetails(common.ErrInvalidSource, string(src))
		}
	}
	if len(f.Metrics) > 0 {
		selected := make([]models.MetricType, 0, len(f.Metrics))
		for _, raw := range f.Metrics {
			m, err := models.ParseMetricType(string(raw))
			if err != nil {
				return f, common.WithDetails(common.ErrInvalidMetric, string(raw))
			}
			selected = append(selected, m)
		}
		f.Metrics = selected
	}
	return f, nil
}

func validateRange(r models.DateRange) error {
	start, ok1 := NormalizeDate(r.Start)
	end, ok2 := NormalizeDate(r.End)
	if !ok1 || !ok2 || start != r.Start || end != r.End {
		return common.WithDetails(common.ErrInvalidDate, r)
	}
	if r.End < r.Start {
		return common.WithDetails(common.ErrInvalidRange, r)
	}
	return nil
}
