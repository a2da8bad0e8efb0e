// Package models chứa các kiểu dùng chung cho layer repository/base (kết quả phân trang).
package models

// PaginateResult đại diện cho kết quả phân trang
type PaginateResult[T any] struct {
	Page       int64 `json:"page" bson:"page"`             // Trang hiện tại (bắt đầu từ 1)
	Limit      int64 `json:"limit" bson:"limit"`           // Số lượng mục trên mỗi trang
	Items      []T   `json:"items" bson:"items"`           // Danh sách các mục
	Total      int64 `json:"total" bson:"total"`           // Tổng số mục
	TotalPages int64 `json:"totalPages" bson:"totalPages"` // Tổng số trang
	HasMore    bool  `json:"hasMore" bson:"hasMore"`       // Còn trang sau hay không
}

// NormalizePage chuẩn hóa page/limit: page >= 1, 0 < limit <= maxLimit
func NormalizePage(page, limit, defaultLimit, maxLimit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Paginate cắt một trang từ danh sách đã có trong bộ nhớ
func Paginate[T any](all []T, page, limit int64) *PaginateResult[T] {
	total := int64(len(all))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	var totalPages int64
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	items := make([]T, 0, end-start)
	items = append(items, all[start:end]...)
	return &PaginateResult[T]{
		Page:       page,
		Limit:      limit,
		Items:      items,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    end < total,
	}
}
