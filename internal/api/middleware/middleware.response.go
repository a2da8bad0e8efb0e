package middleware

import (
	"github.com/gofiber/fiber/v3"

	basehdl "seo_dashboard/internal/api/base/handler"
	"seo_dashboard/internal/common"
)

// HandleErrorResponse trả về error response chuẩn cho lỗi phát sinh trong middleware
func HandleErrorResponse(c fiber.Ctx, err error) {
	_ = basehdl.HandleError(c, err)
}

// NotFound trả về 404 theo format chung cho route không tồn tại
func NotFound() fiber.Handler {
	return func(c fiber.Ctx) error {
		return basehdl.JSONResponse(c, common.StatusNotFound, fiber.Map{
			"code":    common.ErrCodeValidationInput.Code,
			"message": "Không tìm thấy endpoint " + c.Method() + " " + c.Path(),
			"status":  "error",
		})
	}
}
