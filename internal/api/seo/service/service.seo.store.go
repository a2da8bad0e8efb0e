package seosvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "seo_dashboard/internal/api/base/service"
	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/global"
)

// DocumentFilter là điều kiện đọc document lưu trữ
type DocumentFilter struct {
	Source     models.Source
	SiteURL    string
	Start      string // YYYY-MM-DD, rỗng = không giới hạn
	End        string
	TimeSeries *bool // nil = cả dòng tổng và dòng chi tiết
}

// ReplaceResult là kết quả của một lần replace-on-import
type ReplaceResult struct {
	Deleted  int64
	Inserted int64
}

// MetricStore là kho document SEO
type MetricStore interface {
	// ReplaceSource xóa toàn bộ document của nguồn (và site với GSC) rồi chèn docs theo batch.
	// Khi lỗi giữa chừng, Inserted là số document đã ghi ở các batch trước.
	ReplaceSource(ctx context.Context, source models.Source, siteURL string, docs []models.ReportingDocument) (ReplaceResult, error)
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]models.ReportingDocument, error)
	Clear(ctx context.Context, source models.Source, siteURL string) (int64, error)
}

// scopeFilter là điều kiện phạm vi replace/clear: Ahrefs theo nguồn, GSC theo nguồn + site
func scopeFilter(source models.Source, siteURL string) bson.M {
	filter := bson.M{"source": source}
	if source == models.SourceGSC && siteURL != "" {
		filter["siteUrl"] = siteURL
	}
	return filter
}

// buildDocumentFilter dựng filter MongoDB từ DocumentFilter
func buildDocumentFilter(f DocumentFilter) bson.M {
	filter := bson.M{}
	if f.Source != "" {
		filter["source"] = f.Source
	}
	if f.SiteURL != "" {
		filter["siteUrl"] = f.SiteURL
	}
	dateCond := bson.M{}
	if f.Start != "" {
		dateCond["$gte"] = f.Start
	}
	if f.End != "" {
		dateCond["$lte"] = f.End
	}
	if len(dateCond) > 0 {
		filter["date"] = dateCond
	}
	if f.TimeSeries != nil {
		filter["isTimeSeries"] = *f.TimeSeries
	}
	return filter
}

// MongoMetricStore lưu document trong collection seo_reporting_data
type MongoMetricStore struct {
	*basesvc.BaseServiceMongoImpl[models.ReportingDocument]
	batchSize int
}

// NewMongoMetricStore lấy collection từ registry
func NewMongoMetricStore(batchSize int) (*MongoMetricStore, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ReportingData)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ReportingData, common.ErrNotFound)
	}
	return NewMongoMetricStoreWithCollection(col, batchSize), nil
}

// NewMongoMetricStoreWithCollection tạo store với collection cho trước
func NewMongoMetricStoreWithCollection(col *mongo.Collection, batchSize int) *MongoMetricStore {
	return &MongoMetricStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.ReportingDocument](col),
		batchSize:            batchSize,
	}
}

// ReplaceSource thực hiện replace-on-import. Không có transaction: batch đã ghi giữ nguyên khi batch sau lỗi.
func (s *MongoMetricStore) ReplaceSource(ctx context.Context, source models.Source, siteURL string, docs []models.ReportingDocument) (ReplaceResult, error) {
	var res ReplaceResult
	deleted, err := s.DeleteMany(ctx, scopeFilter(source, siteURL))
	if err != nil {
		return res, fmt.Errorf("xóa dữ liệu cũ của %s: %w", source, err)
	}
	res.Deleted = deleted

	inserted, err := s.InsertMany(ctx, docs, s.batchSize)
	res.Inserted = inserted
	if err != nil {
		return res, err
	}
	return res, nil
}

// FindDocuments đọc document theo filter, sắp xếp theo ngày
func (s *MongoMetricStore) FindDocuments(ctx context.Context, f DocumentFilter) ([]models.ReportingDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	return s.Find(ctx, buildDocumentFilter(f), opts)
}

// Clear xóa document của một nguồn (site chỉ áp dụng cho GSC)
func (s *MongoMetricStore) Clear(ctx context.Context, source models.Source, siteURL string) (int64, error) {
	return s.DeleteMany(ctx, scopeFilter(source, siteURL))
}
