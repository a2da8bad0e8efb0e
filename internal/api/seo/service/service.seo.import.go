package seosvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "seo_dashboard/internal/api/base/models"
	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"
	"seo_dashboard/internal/registry"
	"seo_dashboard/internal/telemetry"
)

// GSC dimensions cho hai truy vấn của một lần import
var (
	GSCTotalDimensions  = []string{"date"}
	GSCDetailDimensions = []string{"date", "query", "page"}
)

// GSCFetcher lấy dữ liệu Search Analytics (đã phân trang hết) cho một property
type GSCFetcher interface {
	QueryRows(ctx context.Context, siteURL, startDate, endDate string, dimensions []string) ([]models.GSCRow, error)
}

// ImportOptions cấu hình ImportService
type ImportOptions struct {
	Timeout time.Duration      // Thời gian tối đa của một import
	Metrics *telemetry.Metrics // Có thể nil
	Now     func() time.Time   // Mặc định time.Now
}

// ImportResult là kết quả trả về cho caller
type ImportResult struct {
	ImportID     string `json:"importId"`
	RecordCount  int64  `json:"recordCount"`
	SkippedCount int64  `json:"skippedCount"`
	DeletedCount int64  `json:"deletedCount"`
}

// ImportService điều phối import: tạo ImportRecord, lấy/parse dữ liệu, chuẩn hóa,
// replace-on-import và cập nhật trạng thái. Import cùng (nguồn, site) chạy tuần tự trong tiến trình.
type ImportService struct {
	store   MetricStore
	records ImportRecordStore
	locks   *registry.Registry[*sync.Mutex]
	timeout time.Duration
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewImportService tạo ImportService
func NewImportService(store MetricStore, records ImportRecordStore, opts ImportOptions) *ImportService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ImportService{
		store:   store,
		records: records,
		locks:   registry.NewRegistry[*sync.Mutex](),
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// Timeout trả về thời gian tối đa của một import
func (s *ImportService) Timeout() time.Duration {
	return s.timeout
}

// lock khóa theo (nguồn, site); Ahrefs dùng chung một khóa
func (s *ImportService) lock(source models.Source, siteURL string) func() {
	key := string(source)
	if source == models.SourceGSC {
		key += "|" + siteURL
	}
	mu, _ := s.locks.GetOrCreate(key, func() (*sync.Mutex, error) { return &sync.Mutex{}, nil })
	mu.Lock()
	return mu.Unlock
}

// importJob là dữ liệu chung của một lần import
type importJob struct {
	record  *models.ImportRecord
	siteURL string
	load    func(ctx context.Context) ([]models.NormalizedMetric, int, error)
}

// ImportGSC lấy dữ liệu GSC (dòng tổng theo ngày + dòng chi tiết query/page) và thay thế dữ liệu của site.
func (s *ImportService) ImportGSC(ctx context.Context, fetcher GSCFetcher, siteURL, startDate, endDate string) (*ImportResult, error) {
	if siteURL == "" {
		return nil, common.WithDetails(common.ErrRequiredField, "siteUrl")
	}
	if err := validateRange(models.DateRange{Start: startDate, End: endDate}); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, common.ErrGSCNotConnected
	}

	job := importJob{
		siteURL: siteURL,
		record: &models.ImportRecord{
			Source:    models.SourceGSC,
			SiteURL:   siteURL,
			StartDate: startDate,
			EndDate:   endDate,
		},
		load: func(ctx context.Context) ([]models.NormalizedMetric, int, error) {
			var rows []models.GSCRow
			for _, dims := range [][]string{GSCTotalDimensions, GSCDetailDimensions} {
				part, err := fetcher.QueryRows(ctx, siteURL, startDate, endDate, dims)
				if err != nil {
					return nil, 0, err
				}
				rows = append(rows, part...)
			}
			metrics, skipped := NormalizeGSCRows(rows)
			return metrics, skipped, nil
		},
	}
	return s.run(ctx, job)
}

// ImportAhrefs parse file export Ahrefs và thay thế toàn bộ snapshot Ahrefs.
// snapshotDate dùng cho các dòng không có cột ngày; rỗng = ngày import.
func (s *ImportService) ImportAhrefs(ctx context.Context, fileName string, r io.Reader, snapshotDate string) (*ImportResult, error) {
	if snapshotDate == "" {
		snapshotDate = s.now().Format(models.DateLayout)
	} else if d, ok := NormalizeDate(snapshotDate); ok {
		snapshotDate = d
	} else {
		return nil, common.WithDetails(common.ErrInvalidDate, snapshotDate)
	}

	job := importJob{
		record: &models.ImportRecord{
			Source:    models.SourceAhrefs,
			FileName:  fileName,
			StartDate: snapshotDate,
			EndDate:   snapshotDate,
		},
		load: func(ctx context.Context) ([]models.NormalizedMetric, int, error) {
			rows, err := ParseAhrefsFile(fileName, r)
			if err != nil {
				return nil, 0, err
			}
			metrics, skipped := NormalizeAhrefsRows(rows, snapshotDate)
			return metrics, skipped, nil
		},
	}
	return s.run(ctx, job)
}

// run chạy một import dưới khóa (nguồn, site) và context có timeout
func (s *ImportService) run(parent context.Context, job importJob) (*ImportResult, error) {
	rec := job.record
	source := string(rec.Source)

	unlock := s.lock(rec.Source, job.siteURL)
	defer unlock()
	done := s.metrics.ImportStarted(source)
	defer done()

	started := s.now()
	rec.ID = primitive.NewObjectID()
	rec.Status = models.ImportPending
	rec.CreatedAt = started.Unix()
	rec.UpdatedAt = started.Unix()
	if err := s.records.Create(parent, rec); err != nil {
		return nil, fmt.Errorf("tạo import record: %w", err)
	}

	importID := rec.ID.Hex()
	log := logger.WithImport(importID, source)
	log.WithField("site_url", job.siteURL).Info("📥 [IMPORT] Bắt đầu import")

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	result := &ImportResult{ImportID: importID}
	metrics, skipped, err := job.load(ctx)
	if err == nil {
		result.SkippedCount = int64(skipped)
		docs := WriteDocuments(metrics, importID, job.siteURL, s.now())

		var replaced ReplaceResult
		replaced, err = s.store.ReplaceSource(ctx, rec.Source, job.siteURL, docs)
		result.RecordCount = replaced.Inserted
		result.DeletedCount = replaced.Deleted
		s.metrics.ObserveDeleted(source, "replace", replaced.Deleted)
	}

	// Cập nhật trạng thái cuối không phụ thuộc context của import (có thể đã hết hạn)
	finishCtx, finishCancel := context.WithTimeout(context.WithoutCancel(parent), 10*time.Second)
	defer finishCancel()
	finished := s.now()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = common.WithDetails(common.ErrImportTimeout, err)
		}
		if ferr := s.records.Fail(finishCtx, rec.ID, err.Error(), result.RecordCount, result.DeletedCount, finished); ferr != nil {
			log.WithError(ferr).Error("Không cập nhật được trạng thái failed")
		}
		s.metrics.ObserveImport(source, string(models.ImportFailed), finished.Sub(started), result.RecordCount, result.SkippedCount)
		log.WithError(err).WithField("record_count", result.RecordCount).Error("❌ [IMPORT] Import thất bại")
		return result, wrapImportError(err)
	}

	if err := s.records.Complete(finishCtx, rec.ID, result.RecordCount, result.SkippedCount, result.DeletedCount, finished); err != nil {
		return result, fmt.Errorf("cập nhật import record: %w", err)
	}
	s.metrics.ObserveImport(source, string(models.ImportCompleted), finished.Sub(started), result.RecordCount, result.SkippedCount)
	log.WithFields(logrus.Fields{
		"record_count":  result.RecordCount,
		"skipped_count": result.SkippedCount,
		"deleted_count": result.DeletedCount,
		"took":          finished.Sub(started).String(),
	}).Info("✅ [IMPORT] Import hoàn tất")
	return result, nil
}

// wrapImportError giữ nguyên lỗi đã phân loại, lỗi khác được gói thành ErrImportFailed
func wrapImportError(err error) error {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		return err
	}
	return common.WithDetails(common.ErrImportFailed, err)
}

// ClearResult là số document đã xóa theo nguồn
type ClearResult map[models.Source]int64

// Clear xóa dữ liệu của gsc, ahrefs hoặc all. siteURL chỉ giới hạn phần GSC.
func (s *ImportService) Clear(ctx context.Context, target, siteURL string) (ClearResult, error) {
	var sources []models.Source
	if target == "all" {
		sources = models.Sources
	} else {
		src, err := models.ParseSource(target)
		if err != nil {
			return nil, common.WithDetails(common.ErrInvalidSource, target)
		}
		sources = []models.Source{src}
	}

	result := ClearResult{}
	for _, src := range sources {
		unlock := s.lock(src, siteURL)
		n, err := s.store.Clear(ctx, src, siteURL)
		unlock()
		if err != nil {
			return result, fmt.Errorf("xóa dữ liệu %s: %w", src, err)
		}
		result[src] = n
		s.metrics.ObserveDeleted(string(src), "clear", n)
	}
	logger.WithModule("import").WithFields(logrus.Fields{
		"target":   target,
		"site_url": siteURL,
		"deleted":  result,
	}).Info("🧹 [CLEAR] Đã xóa dữ liệu")
	return result, nil
}

// GetImport lấy một ImportRecord theo ID dạng hex
func (s *ImportService) GetImport(ctx context.Context, id string) (*models.ImportRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidInput, "id")
	}
	return s.records.Get(ctx, oid)
}

// ListImports liệt kê lịch sử import
func (s *ImportService) ListImports(ctx context.Context, source models.Source, page, limit int64) (*basemodels.PaginateResult[models.ImportRecord], error) {
	page, limit = basemodels.NormalizePage(page, limit, 20, 200)
	return s.records.List(ctx, source, page, limit)
}

// FailStaleImports đánh dấu failed các import pending lâu hơn timeout (tiến trình chết giữa chừng)
func (s *ImportService) FailStaleImports(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.records.FailStale(ctx, now.Add(-s.timeout), common.ErrImportTimeout.Error(), now)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveStale(n)
	return n, nil
}
