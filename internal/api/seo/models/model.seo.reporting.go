package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ReportingDocument là document phẳng lưu trong seo_reporting_data.
// GSC: mỗi document một metric_type/value kèm đúng cột đó. Ahrefs: một document gộp cho mỗi dòng.
type ReportingDocument struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ImportID     string             `json:"importId" bson:"importId" index:"single:1"`                                        // Import đã ghi document
	SiteURL      string             `json:"siteUrl,omitempty" bson:"siteUrl,omitempty" index:"compound:seo_source_site_date"` // GSC property (Ahrefs để trống)
	Source       Source             `json:"source" bson:"source" index:"compound:seo_source_site_date"`                       // gsc | ahrefs
	Date         string             `json:"date" bson:"date" index:"compound:seo_source_site_date"`                           // YYYY-MM-DD
	Query        string             `json:"query,omitempty" bson:"query,omitempty"`                                           // Từ khóa
	URL          string             `json:"url,omitempty" bson:"url,omitempty" index:"single:1"`                              // Trang
	MetricType   MetricType         `json:"metric_type,omitempty" bson:"metric_type,omitempty"`                               // Loại chỉ số của document (GSC)
	Value        *float64           `json:"value,omitempty" bson:"value,omitempty"`                                           // Giá trị ứng với metric_type
	IsTimeSeries bool               `json:"isTimeSeries" bson:"isTimeSeries"`                                                 // Dòng tổng theo ngày
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`                                                       // Unix seconds

	MetricValues     `bson:",inline"` // Các cột chỉ số
	AhrefsComparison `bson:",inline"` // Các cột so sánh Ahrefs
}
