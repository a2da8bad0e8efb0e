// Package seodto chứa input/output của các endpoint SEO.
package seodto

import "seo_dashboard/internal/api/seo/models"

// ImportGSCInput là body của POST /seo/import/gsc
type ImportGSCInput struct {
	SiteURL   string `json:"siteUrl" validate:"required,site_url"`
	StartDate string `json:"startDate" validate:"required,date_ymd"`
	EndDate   string `json:"endDate" validate:"required,date_ymd"`
}

// ImportResponse là kết quả import trả về client
type ImportResponse struct {
	Success      bool   `json:"success"`
	ImportID     string `json:"importId"`
	RecordCount  int64  `json:"recordCount"`
	SkippedCount int64  `json:"skippedCount"`
	DeletedCount int64  `json:"deletedCount"`
}

// MetricsQueryParams là query string của GET /seo/metrics.
// Dimensions phân cách bởi dấu phẩy (vd: "date,query").
type MetricsQueryParams struct {
	SiteURL    string `query:"siteUrl" validate:"omitempty,site_url"`
	StartDate  string `query:"startDate" validate:"omitempty,date_ymd"`
	EndDate    string `query:"endDate" validate:"omitempty,date_ymd"`
	Dimensions string `query:"dimensions"`
	Source     string `query:"source" validate:"omitempty,oneof=gsc ahrefs"`
	Page       int64  `query:"page" validate:"omitempty,min=1"`
	Limit      int64  `query:"limit" validate:"omitempty,min=1"`
}

// MetricsResponse là dữ liệu của GET /seo/metrics
type MetricsResponse struct {
	Data       []models.NormalizedMetric `json:"data"`
	Pagination Pagination                `json:"pagination"`
}

// Pagination là thông tin phân trang
type Pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// ClearInput là body của POST /seo/clear
type ClearInput struct {
	Source  string `json:"source" validate:"required,oneof=gsc ahrefs all"`
	SiteURL string `json:"siteUrl" validate:"omitempty,site_url"`
}

// ClearResponse là số document đã xóa theo nguồn
type ClearResponse struct {
	Deleted map[models.Source]int64 `json:"deleted"`
	Total   int64                   `json:"total"`
}

// DashboardSectionInput là body của POST /seo/dashboard/{summary,chart,table}.
// RequestID được trả lại nguyên vẹn để client bỏ response cũ.
type DashboardSectionInput struct {
	RequestID string               `json:"requestId" validate:"omitempty,max=128"`
	Filters   models.FilterOptions `json:"filters"`
	Page      int64                `json:"page" validate:"omitempty,min=1"`
	Limit     int64                `json:"limit" validate:"omitempty,min=1"`
}

// DashboardSectionResponse là dữ liệu trả về của một section, kèm bộ lọc đã áp dụng
type DashboardSectionResponse struct {
	RequestID string               `json:"requestId,omitempty"`
	Section   string               `json:"section"`
	Filters   models.FilterOptions `json:"filters"`
	Data      interface{}          `json:"data"`
}

// ImportsQueryParams là query string của GET /seo/imports
type ImportsQueryParams struct {
	Source string `query:"source" validate:"omitempty,oneof=gsc ahrefs"`
	Page   int64  `query:"page" validate:"omitempty,min=1"`
	Limit  int64  `query:"limit" validate:"omitempty,min=1"`
}
