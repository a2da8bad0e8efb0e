// package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB
package basesvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "seo_dashboard/internal/api/base/models"
	"seo_dashboard/internal/common"
)

// BaseServiceMongoImpl triển khai các thao tác cơ bản trên một collection cho model T
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB (khi cần truy cập trực tiếp)
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// ====================================
// INSERT
// ====================================

// InsertOne tạo mới một bản ghi
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) error {
	if _, err := s.collection.InsertOne(ctx, data); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// InsertMany chèn data theo từng batch batchSize document (ordered).
// Trả về số document đã ghi thành công; batch đã ghi không bị rollback khi batch sau lỗi.
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var inserted int64
	for start := 0; start < len(data); start += batchSize {
		end := start + batchSize
		if end > len(data) {
			end = len(data)
		}

		docs := make([]interface{}, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, data[i])
		}

		result, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		if err != nil {
			// Ordered insert dừng ở write error đầu tiên, các document trước đó đã được ghi
			var bulkErr mongo.BulkWriteException
			if errors.As(err, &bulkErr) && len(bulkErr.WriteErrors) > 0 {
				inserted += int64(bulkErr.WriteErrors[0].Index)
			}
			return inserted, fmt.Errorf("insert batch %d-%d: %w", start, end, common.ConvertMongoError(err))
		}
		inserted += int64(len(result.InsertedIDs))
	}
	return inserted, nil
}

// ====================================
// FIND
// ====================================

// FindOne tìm một document theo điều kiện lọc
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var result T
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}

	if err := s.collection.FindOne(ctx, filter, opts).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return result, common.ErrNotFound
		}
		return result, common.ConvertMongoError(err)
	}
	return result, nil
}

// Find tìm tất cả bản ghi theo điều kiện lọc, luôn trả về slice khác nil
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindWithPagination tìm bản ghi với phân trang phía server
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}
	page, limit = basemodels.NormalizePage(page, limit, 10, 0)
	opts.SetSkip((page - 1) * limit)
	opts.SetLimit(limit)

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	items, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var totalPages int64
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &basemodels.PaginateResult[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page*limit < total,
	}, nil
}

// CountDocuments đếm số lượng document
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// ====================================
// UPDATE / DELETE
// ====================================

// UpdateOne cập nhật một document, trả về ErrNotFound nếu không khớp document nào
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}) error {
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// UpdateMany cập nhật nhiều document, trả về số document đã sửa
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	result, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.ModifiedCount, nil
}

// DeleteMany xóa nhiều document, trả về số document đã xóa
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.DeletedCount, nil
}
