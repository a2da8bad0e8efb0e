package worker

import (
	"context"
	"time"

	"seo_dashboard/internal/logger"
)

// StaleImportMarker đánh dấu failed các import pending quá thời gian cho phép
type StaleImportMarker interface {
	FailStaleImports(ctx context.Context) (int64, error)
}

// ImportTimeoutWorker dọn các import bị treo ở trạng thái pending (tiến trình chết giữa chừng, mất kết nối DB...).
// Chạy một lần khi khởi động rồi lặp lại mỗi interval.
type ImportTimeoutWorker struct {
	imports  StaleImportMarker
	interval time.Duration // Khoảng thời gian giữa các lần chạy
}

// NewImportTimeoutWorker tạo mới ImportTimeoutWorker.
// Tham số:
//   - imports: service đánh dấu import quá hạn (seosvc.ImportService)
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 5 phút)
func NewImportTimeoutWorker(imports StaleImportMarker, interval time.Duration) *ImportTimeoutWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ImportTimeoutWorker{
		imports:  imports,
		interval: interval,
	}
}

// RunOnce chạy một lượt, panic được bắt lại để lượt sau vẫn chạy
func (w *ImportTimeoutWorker) RunOnce(ctx context.Context) (marked int64) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("⏱️ [IMPORT_TIMEOUT] Panic khi dọn import treo, sẽ tiếp tục ở lần chạy tiếp theo")
		}
	}()

	marked, err := w.imports.FailStaleImports(ctx)
	if err != nil {
		log.WithError(err).Error("⏱️ [IMPORT_TIMEOUT] Lỗi đánh dấu import quá hạn")
		return 0
	}
	if marked > 0 {
		log.WithFields(map[string]interface{}{
			"marked": marked,
		}).Warn("⏱️ [IMPORT_TIMEOUT] Đã chuyển import treo sang failed")
	}
	return marked
}

// Start chạy worker trong vòng lặp cho tới khi ctx bị hủy
func (w *ImportTimeoutWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("⏱️ [IMPORT_TIMEOUT] Starting Import Timeout Worker...")

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("⏱️ [IMPORT_TIMEOUT] Import Timeout Worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
