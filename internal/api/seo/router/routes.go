// Package router đăng ký các route SEO: import, metrics, clear, dashboard, lịch sử import.
package router

import (
	"github.com/gofiber/fiber/v3"

	gscsvc "seo_dashboard/internal/api/gsc/service"
	"seo_dashboard/internal/api/middleware"
	apirouter "seo_dashboard/internal/api/router"
	seohdl "seo_dashboard/internal/api/seo/handler"
)

// Register trả về hàm đăng ký route /seo lên v1.
// Import GSC cần phiên đã kết nối nên nằm dưới prefix riêng /seo/import/gsc.
func Register(h *seohdl.SEOHandler, sessions *gscsvc.SessionService) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		connected := middleware.GSCSessionMiddleware(sessions)

		apirouter.RegisterRouteWithMiddleware(v1, "/seo/import/gsc", "POST", "", []fiber.Handler{connected}, h.HandleImportGSC)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "POST", "/import/ahrefs", nil, h.HandleImportAhrefs)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "GET", "/metrics", nil, h.HandleMetrics)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "POST", "/clear", nil, h.HandleClear)

		// Dashboard: mỗi section một request độc lập
		apirouter.RegisterRouteWithMiddleware(v1, "/seo/dashboard", "POST", "/summary", nil, h.HandleSummary)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo/dashboard", "POST", "/chart", nil, h.HandleChart)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo/dashboard", "POST", "/table", nil, h.HandleTable)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "GET", "/presets", nil, h.HandlePresets)

		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "GET", "/imports", nil, h.HandleListImports)
		apirouter.RegisterRouteWithMiddleware(v1, "/seo", "GET", "/imports/:id", nil, h.HandleGetImport)
		return nil
	}
}
