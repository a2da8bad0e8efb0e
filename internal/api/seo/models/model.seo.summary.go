package models

// SummaryStats là thống kê tổng hợp của một kỳ
type SummaryStats struct {
	TotalClicks      float64 `json:"totalClicks"`
	TotalImpressions float64 `json:"totalImpressions"`
	AvgCTR           float64 `json:"avgCTR"`
	AvgPosition      float64 `json:"avgPosition"`
	TotalVolume      float64 `json:"totalVolume"`
	TotalTraffic     float64 `json:"totalTraffic"`
}

// SummaryChanges là phần trăm thay đổi so với kỳ so sánh.
// Position dương nghĩa là thứ hạng cải thiện.
type SummaryChanges struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// ComparisonSummary là kết quả quick view cho kỳ chính và kỳ so sánh (nếu có)
type ComparisonSummary struct {
	Current  SummaryStats    `json:"current"`
	Previous *SummaryStats   `json:"previous,omitempty"`
	Changes  *SummaryChanges `json:"changes,omitempty"`
}

// ChartPoint là một điểm theo ngày trên biểu đồ
type ChartPoint struct {
	Date        string   `json:"date"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    *float64 `json:"position,omitempty"`
}

// ChartSeries là chuỗi điểm của kỳ chính và kỳ so sánh
type ChartSeries struct {
	Current  []ChartPoint `json:"current"`
	Previous []ChartPoint `json:"previous,omitempty"`
}

// PositionSource cho biết vị trí hiển thị lấy từ nguồn nào
type PositionSource string

const (
	PositionFromGSC    PositionSource = "gsc"
	PositionFromAhrefs PositionSource = "ahrefs"
	PositionNone       PositionSource = ""
)

// TableRow là một dòng của bảng chi tiết (query, url)
type TableRow struct {
	Query          string         `json:"query"`
	URL            string         `json:"url"`
	Clicks         float64        `json:"clicks"`
	Impressions    float64        `json:"impressions"`
	CTR            float64        `json:"ctr"`
	Position       *float64       `json:"position,omitempty"`
	PositionSource PositionSource `json:"positionSource,omitempty"`
	Volume         *float64       `json:"volume,omitempty"`
	Traffic        *float64       `json:"traffic,omitempty"`
	Difficulty     *float64       `json:"difficulty,omitempty"`

	// Chỉ có khi section có kỳ so sánh
	ClicksChange      *float64 `json:"clicksChange,omitempty"`
	ImpressionsChange *float64 `json:"impressionsChange,omitempty"`
	PositionChange    *float64 `json:"positionChange,omitempty"`
}
