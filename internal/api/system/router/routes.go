// Package router đăng ký các route hệ thống: health check và Prometheus metrics.
package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	basehdl "seo_dashboard/internal/api/base/handler"
	apirouter "seo_dashboard/internal/api/router"
	"seo_dashboard/internal/telemetry"
)

// Register đăng ký /health, /api/v1/system/health và /metrics
func Register(system *basehdl.SystemHandler, metrics *telemetry.Metrics) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		v1.Get("/system/health", system.HandleHealth)
		r.App().Get("/health", system.HandleHealth)
		if metrics != nil {
			r.App().Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
		}
		return nil
	}
}
