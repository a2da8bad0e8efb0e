package basehdl

import (
	"context"
	"time"

	"seo_dashboard/internal/common"
	"seo_dashboard/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Pinger là dependency có thể kiểm tra sống/chết (session store, ...)
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	deps map[string]Pinger
}

// NewSystemHandler tạo SystemHandler; deps là các dependency phụ cần báo trạng thái
func NewSystemHandler(deps map[string]Pinger) *SystemHandler {
	return &SystemHandler{deps: deps}
}

// HandleHealth kiểm tra tình trạng API, MongoDB và các dependency phụ
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthy := true

	if global.MongoDB_Session == nil {
		services["database"] = "not_initialized"
		healthy = false
	} else if err := global.MongoDB_Session.Ping(ctx, nil); err != nil {
		services["database"] = "error: " + err.Error()
		healthy = false
	} else {
		services["database"] = "ok"
	}

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			services[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		services[name] = "ok"
	}

	data := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}
	if !healthy {
		data["status"] = "degraded"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    data,
			"status":  "error",
		})
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}
