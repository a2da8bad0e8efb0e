package models

// GSCRow là một dòng Search Analytics sau khi đã tách keys theo dimension.
// Dòng tổng theo ngày có Query và Page rỗng.
type GSCRow struct {
	Date        string
	Query       string
	Page        string
	Clicks      *float64
	Impressions *float64
	CTR         *float64
	Position    *float64
}

// AhrefsRow là một dòng export Ahrefs (CSV/XLSX) sau khi map header
type AhrefsRow struct {
	Keyword          string
	URL              string
	Position         *float64
	Volume           *float64
	Difficulty       *float64
	CPC              *float64
	Traffic          *float64
	Date             string
	PreviousTraffic  *float64
	PreviousPosition *float64
	PreviousDate     string
	TrafficChange    *float64
	PositionChange   *float64
}
