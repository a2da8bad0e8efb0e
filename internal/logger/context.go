package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ContextKey là type cho context keys
type ContextKey string

const (
	// RequestIDKey là key cho request ID trong context
	RequestIDKey ContextKey = "requestID"
	// ImportIDKey là key cho import ID trong context
	ImportIDKey ContextKey = "importID"
	// SiteURLKey là key cho GSC property đang xử lý
	SiteURLKey ContextKey = "siteURL"
)

// WithContext trả về logger entry với các field lấy từ context
func WithContext(ctx context.Context) *logrus.Entry {
	entry := GetAppLogger().WithContext(ctx)

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		entry = entry.WithField("request_id", requestID)
	}
	if importID := ctx.Value(ImportIDKey); importID != nil {
		entry = entry.WithField("import_id", importID)
	}
	if siteURL := ctx.Value(SiteURLKey); siteURL != nil {
		entry = entry.WithField("site_url", siteURL)
	}

	return entry
}

// WithRequest trả về logger entry với request context từ Fiber
func WithRequest(c fiber.Ctx) *logrus.Entry {
	entry := GetAppLogger().WithContext(c.Context())

	var requestID string
	if rid, ok := c.Locals("requestid").(string); ok {
		requestID = rid
	}
	if requestID == "" {
		requestID = c.Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = c.GetRespHeader("X-Request-ID")
	}
	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	return entry.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
}

// WithModule trả về logger entry với module name (ví dụ: "import", "gsc", "dashboard")
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// WithImport trả về logger import gắn import ID và nguồn dữ liệu
func WithImport(importID, source string) *logrus.Entry {
	return GetImportLogger().WithFields(logrus.Fields{
		"import_id": importID,
		"source":    source,
	})
}
