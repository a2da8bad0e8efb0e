package seosvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "seo_dashboard/internal/api/base/models"
	basesvc "seo_dashboard/internal/api/base/service"
	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/global"
)

// ImportRecordStore lưu lịch sử import
type ImportRecordStore interface {
	Create(ctx context.Context, rec *models.ImportRecord) error
	Complete(ctx context.Context, id primitive.ObjectID, recordCount, skipped, deleted int64, at time.Time) error
	Fail(ctx context.Context, id primitive.ObjectID, message string, recordCount, deleted int64, at time.Time) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.ImportRecord, error)
	List(ctx context.Context, source models.Source, page, limit int64) (*basemodels.PaginateResult[models.ImportRecord], error)
	// FailStale chuyển các import pending tạo trước olderThan sang failed
	FailStale(ctx context.Context, olderThan time.Time, message string, at time.Time) (int64, error)
}

// MongoImportRecordStore lưu ImportRecord trong collection seo_imports
type MongoImportRecordStore struct {
	*basesvc.BaseServiceMongoImpl[models.ImportRecord]
}

// NewMongoImportRecordStore lấy collection từ registry
func NewMongoImportRecordStore() (*MongoImportRecordStore, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Imports)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Imports, common.ErrNotFound)
	}
	return NewMongoImportRecordStoreWithCollection(col), nil
}

// NewMongoImportRecordStoreWithCollection tạo store với collection cho trước
func NewMongoImportRecordStoreWithCollection(col *mongo.Collection) *MongoImportRecordStore {
	return &MongoImportRecordStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.ImportRecord](col),
	}
}

// Create chèn record mới (ID được sinh phía client nếu chưa có)
func (s *MongoImportRecordStore) Create(ctx context.Context, rec *models.ImportRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	return s.InsertOne(ctx, *rec)
}

// Complete đánh dấu import thành công
func (s *MongoImportRecordStore) Complete(ctx context.Context, id primitive.ObjectID, recordCount, skipped, deleted int64, at time.Time) error {
	return s.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       models.ImportCompleted,
		"recordCount":  recordCount,
		"skippedCount": skipped,
		"deletedCount": deleted,
		"updatedAt":    at.Unix(),
		"completedAt":  at.Unix(),
	}})
}

// Fail đánh dấu import thất bại, giữ lại số document đã ghi
func (s *MongoImportRecordStore) Fail(ctx context.Context, id primitive.ObjectID, message string, recordCount, deleted int64, at time.Time) error {
	return s.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       models.ImportFailed,
		"errorMessage": message,
		"recordCount":  recordCount,
		"deletedCount": deleted,
		"updatedAt":    at.Unix(),
		"completedAt":  at.Unix(),
	}})
}

// Get lấy record theo ID
func (s *MongoImportRecordStore) Get(ctx context.Context, id primitive.ObjectID) (*models.ImportRecord, error) {
	rec, err := s.FindOne(ctx, bson.M{"_id": id}, nil)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List liệt kê import mới nhất trước; source rỗng = tất cả nguồn
func (s *MongoImportRecordStore) List(ctx context.Context, source models.Source, page, limit int64) (*basemodels.PaginateResult[models.ImportRecord], error) {
	filter := bson.M{}
	if source != "" {
		filter["source"] = source
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// FailStale chuyển các import pending quá hạn sang failed
func (s *MongoImportRecordStore) FailStale(ctx context.Context, olderThan time.Time, message string, at time.Time) (int64, error) {
	return s.UpdateMany(ctx,
		bson.M{"status": models.ImportPending, "createdAt": bson.M{"$lt": olderThan.Unix()}},
		bson.M{"$set": bson.M{
			"status":       models.ImportFailed,
			"errorMessage": message,
			"updatedAt":    at.Unix(),
			"completedAt":  at.Unix(),
		}},
	)
}
