// Package models chứa các model thuộc domain SEO (GSC + Ahrefs).
package models

import (
	"fmt"
	"strings"
)

// Source là nguồn dữ liệu SEO
type Source string

const (
	SourceGSC    Source = "gsc"
	SourceAhrefs Source = "ahrefs"
)

// Sources là danh sách nguồn hợp lệ
var Sources = []Source{SourceGSC, SourceAhrefs}

// Valid kiểm tra nguồn có được hỗ trợ
func (s Source) Valid() bool {
	return s == SourceGSC || s == SourceAhrefs
}

// ParseSource chuyển chuỗi thành Source (không phân biệt hoa thường)
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown source %q", raw)
	}
	return s, nil
}

// MetricType là loại chỉ số
type MetricType string

const (
	MetricClicks      MetricType = "clicks"
	MetricImpressions MetricType = "impressions"
	MetricCTR         MetricType = "ctr"
	MetricPosition    MetricType = "position"
	MetricVolume      MetricType = "volume"
	MetricTraffic     MetricType = "traffic"
)

// MetricOrder là thứ tự cố định khi bung một key thành nhiều entry
var MetricOrder = []MetricType{MetricClicks, MetricImpressions, MetricCTR, MetricPosition, MetricVolume, MetricTraffic}

// EmittedMetrics trả về các loại chỉ số được phát thành entry riêng cho mỗi nguồn.
// Position của Ahrefs chỉ đi kèm dạng sibling nên không lẫn vào trung bình vị trí GSC.
func EmittedMetrics(src Source) []MetricType {
	switch src {
	case SourceGSC:
		return []MetricType{MetricClicks, MetricImpressions, MetricCTR, MetricPosition}
	case SourceAhrefs:
		return []MetricType{MetricVolume, MetricTraffic}
	}
	return nil
}

// EntryMetrics trả về các chỉ số có giá trị sẽ được bung thành entry.
// Dòng Ahrefs chỉ có vị trí (không volume/traffic) giữ một entry position để bảng
// còn dùng được vị trí Ahrefs khi thiếu GSC; entry này không tính vào tổng hợp GSC.
func EntryMetrics(src Source, values MetricValues) []MetricType {
	var out []MetricType
	for _, mt := range EmittedMetrics(src) {
		if values.Get(mt) != nil {
			out = append(out, mt)
		}
	}
	if len(out) == 0 && src == SourceAhrefs && values.Position != nil {
		out = append(out, MetricPosition)
	}
	return out
}

// ParseMetricType chuyển chuỗi thành MetricType
func ParseMetricType(raw string) (MetricType, error) {
	m := MetricType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range MetricOrder {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric type %q", raw)
}

// MetricValues chứa toàn bộ giá trị chỉ số của cùng một key (date, query, url, source)
type MetricValues struct {
	Clicks      *float64 `json:"clicks,omitempty" bson:"clicks,omitempty"`
	Impressions *float64 `json:"impressions,omitempty" bson:"impressions,omitempty"`
	CTR         *float64 `json:"ctr,omitempty" bson:"ctr,omitempty"`
	Position    *float64 `json:"position,omitempty" bson:"position,omitempty"`
	Volume      *float64 `json:"volume,omitempty" bson:"volume,omitempty"`
	Traffic     *float64 `json:"traffic,omitempty" bson:"traffic,omitempty"`
}

// Get trả về giá trị của một loại chỉ số (nil nếu không có)
func (v MetricValues) Get(m MetricType) *float64 {
	switch m {
	case MetricClicks:
		return v.Clicks
	case MetricImpressions:
		return v.Impressions
	case MetricCTR:
		return v.CTR
	case MetricPosition:
		return v.Position
	case MetricVolume:
		return v.Volume
	case MetricTraffic:
		return v.Traffic
	}
	return nil
}

// Set gán giá trị cho một loại chỉ số
func (v *MetricValues) Set(m MetricType, value *float64) {
	switch m {
	case MetricClicks:
		v.Clicks = value
	case MetricImpressions:
		v.Impressions = value
	case MetricCTR:
		v.CTR = value
	case MetricPosition:
		v.Position = value
	case MetricVolume:
		v.Volume = value
	case MetricTraffic:
		v.Traffic = value
	}
}

// Merge lấy các giá trị khác nil từ other
func (v *MetricValues) Merge(other MetricValues) {
	for _, m := range MetricOrder {
		if val := other.Get(m); val != nil {
			v.Set(m, val)
		}
	}
}

// AhrefsComparison chứa các cột so sánh / bổ sung của export Ahrefs
type AhrefsComparison struct {
	PreviousTraffic  *float64 `json:"previousTraffic,omitempty" bson:"previousTraffic,omitempty"`
	PreviousPosition *float64 `json:"previousPosition,omitempty" bson:"previousPosition,omitempty"`
	TrafficChange    *float64 `json:"trafficChange,omitempty" bson:"trafficChange,omitempty"`
	PositionChange   *float64 `json:"positionChange,omitempty" bson:"positionChange,omitempty"`
	PreviousDate     string   `json:"previousDate,omitempty" bson:"previousDate,omitempty"`
	Difficulty       *float64 `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	CPC              *float64 `json:"cpc,omitempty" bson:"cpc,omitempty"`
}

// IsZero cho biết không có cột nào được điền
func (c AhrefsComparison) IsZero() bool {
	return c.PreviousTraffic == nil && c.PreviousPosition == nil && c.TrafficChange == nil &&
		c.PositionChange == nil && c.PreviousDate == "" && c.Difficulty == nil && c.CPC == nil
}

// MetricKey là khóa nhóm (date, query, url, source)
type MetricKey struct {
	Date   string
	Query  string
	URL    string
	Source Source
}

// NormalizedMetric là một entry chỉ số đã chuẩn hóa.
// Không có query và url nghĩa là dòng tổng theo ngày (time-series).
type NormalizedMetric struct {
	Date       string            `json:"date"`
	Source     Source            `json:"source"`
	Query      string            `json:"query,omitempty"`
	URL        string            `json:"url,omitempty"`
	MetricType MetricType        `json:"metricType"`
	Value      float64           `json:"value"`
	Metrics    MetricValues      `json:"metrics"`
	Comparison *AhrefsComparison `json:"comparison,omitempty"`
}

// IsTimeSeries cho biết đây là dòng tổng theo ngày
func (m NormalizedMetric) IsTimeSeries() bool {
	return m.Query == "" && m.URL == ""
}

// Key trả về khóa nhóm của entry
func (m NormalizedMetric) Key() MetricKey {
	return MetricKey{Date: m.Date, Query: m.Query, URL: m.URL, Source: m.Source}
}

// Float trả về con trỏ tới bản sao của v
func Float(v float64) *float64 {
	return &v
}
