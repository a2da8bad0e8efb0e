package utility

import (
	"runtime/debug"

	"seo_dashboard/internal/logger"
)

// GoProtect chạy f và bắt panic nếu có, ghi log kèm stack thay vì làm dừng cả tiến trình.
// name dùng để nhận biết goroutine trong log.
func GoProtect(name string, f func()) {
	defer func() {
		if err := recover(); err != nil {
			logger.GetAppLogger().WithFields(map[string]interface{}{
				"goroutine": name,
				"panic":     err,
				"stack":     string(debug.Stack()),
			}).Error("Đã bắt lỗi panic")
		}
	}()

	f()
}
