package global

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("date_ymd", validateDateYMD)
	_ = Validate.RegisterValidation("site_url", validateSiteURL)
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
}

// validateDateYMD kiểm tra ngày dạng YYYY-MM-DD
func validateDateYMD(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // để tag required xử lý
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// validateSiteURL chấp nhận URL-prefix property (https://example.com/) hoặc domain property (sc-domain:example.com)
func validateSiteURL(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	if strings.HasPrefix(value, "sc-domain:") {
		return len(value) > len("sc-domain:") && !strings.ContainsAny(value, " /")
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}
