package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ImportStatus là trạng thái của một lần import
type ImportStatus string

const (
	ImportPending   ImportStatus = "pending"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// ImportRecord lưu lịch sử import (seo_imports)
type ImportRecord struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Source       Source             `json:"source" bson:"source" index:"compound:seo_import_source_created"`
	SiteURL      string             `json:"siteUrl,omitempty" bson:"siteUrl,omitempty"`
	FileName     string             `json:"fileName,omitempty" bson:"fileName,omitempty"`
	StartDate    string             `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate      string             `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Status       ImportStatus       `json:"status" bson:"status" index:"single:1"`
	RecordCount  int64              `json:"recordCount" bson:"recordCount"`   // Số document đã ghi
	SkippedCount int64              `json:"skippedCount" bson:"skippedCount"` // Số dòng bị bỏ qua (thiếu/sai ngày)
	DeletedCount int64              `json:"deletedCount" bson:"deletedCount"` // Số document cũ bị thay thế
	ErrorMessage string             `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt" index:"compound:seo_import_source_created,compound_order:-1"` // Unix seconds
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
	CompletedAt  int64              `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
