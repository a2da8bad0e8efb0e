package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandlerWrapper chạy fn, bắt panic và chuyển lỗi thành response chuẩn.
// Server luôn trả về response cho client, kể cả khi handler panic.
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("panic", r).Error("Handler panic")
			debug.PrintStack()
			err = HandleError(c, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	if err := fn(); err != nil {
		return HandleError(c, err)
	}
	return nil
}

// HandleResponse trả về response thành công hoặc lỗi theo format thống nhất.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleError(c, err)
	}
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// HandleError ghi log và trả về error response. Lỗi không thuộc *common.Error được coi là 500.
func HandleError(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		entry := logger.WithRequest(c).WithField("code", customErr.Code.Code)
		if customErr.StatusCode >= common.StatusInternalServerError {
			entry.WithError(err).Error("Request failed")
		} else {
			entry.Debug(customErr.Message)
		}
		body := fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"status":  "error",
		}
		if customErr.Details != nil {
			if inner, ok := customErr.Details.(error); ok {
				body["error"] = inner.Error()
			} else {
				body["details"] = customErr.Details
			}
		}
		return JSONResponse(c, customErr.StatusCode, body)
	}

	logger.WithRequest(c).WithError(err).Error("Request failed")
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"error":   err.Error(),
		"status":  "error",
	})
}
