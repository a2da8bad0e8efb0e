// Package router đăng ký các route kết nối Google Search Console.
package router

import (
	"github.com/gofiber/fiber/v3"

	gschdl "seo_dashboard/internal/api/gsc/handler"
	"seo_dashboard/internal/api/middleware"
	apirouter "seo_dashboard/internal/api/router"
)

// Register trả về hàm đăng ký route /gsc lên v1.
// Middleware gắn qua group.Use áp dụng cho mọi path con của prefix, nên route cần phiên
// đã kết nối được đăng ký dưới prefix riêng.
func Register(h *gschdl.GSCHandler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		session := middleware.OptionalGSCSession()
		connected := middleware.GSCSessionMiddleware(h.Sessions)

		// session gắn một lần, có hiệu lực cho cả prefix /gsc
		apirouter.RegisterRouteWithMiddleware(v1, "/gsc", "GET", "/auth-url", []fiber.Handler{session}, h.HandleAuthURL)
		apirouter.RegisterRouteWithMiddleware(v1, "/gsc", "GET", "/callback", nil, h.HandleCallback)
		apirouter.RegisterRouteWithMiddleware(v1, "/gsc", "GET", "/status", nil, h.HandleStatus)
		apirouter.RegisterRouteWithMiddleware(v1, "/gsc", "POST", "/disconnect", nil, h.HandleDisconnect)
		apirouter.RegisterRouteWithMiddleware(v1, "/gsc/sites", "GET", "", []fiber.Handler{connected}, h.HandleSites)
		return nil
	}
}
