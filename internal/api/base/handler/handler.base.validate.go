package basehdl

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"seo_dashboard/internal/common"
	"seo_dashboard/internal/global"
)

// ValidateStruct kiểm tra struct bằng validator toàn cục.
// Lỗi trả về là ErrInvalidInput với danh sách field sai trong Details.
func ValidateStruct(input interface{}) error {
	if global.Validate == nil {
		global.InitValidator()
	}
	err := global.Validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.WithDetails(common.ErrInvalidInput, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields[fe.Field()] = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		} else {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return common.WithDetails(common.ErrInvalidInput, fields)
}

// ParseRequestBody đọc JSON body rồi validate
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Body(input); err != nil {
		return common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err))
	}
	return ValidateStruct(input)
}

// ParseRequestQuery đọc query string rồi validate
func ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	return ValidateStruct(input)
}
