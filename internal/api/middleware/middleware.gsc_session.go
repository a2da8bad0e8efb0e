package middleware

import (
	"github.com/gofiber/fiber/v3"

	gscsvc "seo_dashboard/internal/api/gsc/service"
)

const (
	// SessionCookieName là cookie giữ session ID của phiên GSC
	SessionCookieName = "seo_session"
	// SessionHeaderName cho client không dùng cookie (CLI, test)
	SessionHeaderName = "X-GSC-Session"
	// LocalsSessionID là key Locals chứa session ID đã xác thực
	LocalsSessionID = "gscSessionID"
)

// SessionIDFromRequest đọc session ID từ cookie hoặc header; rỗng nếu không có hoặc sai định dạng
func SessionIDFromRequest(c fiber.Ctx) string {
	id := c.Cookies(SessionCookieName)
	if id == "" {
		id = c.Get(SessionHeaderName)
	}
	if id == "" || !gscsvc.ValidSessionID(id) {
		return ""
	}
	return id
}

// GSCSessionMiddleware yêu cầu phiên đã kết nối GSC.
// Credentials được gắn vào context của request, handler lấy lại bằng gscsvc.CredentialsFrom.
// Chưa kết nối => 401.
func GSCSessionMiddleware(sessions *gscsvc.SessionService) fiber.Handler {
	return func(c fiber.Ctx) error {
		sessionID := SessionIDFromRequest(c)
		creds, err := sessions.Credentials(c.Context(), sessionID)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}
		c.Locals(LocalsSessionID, sessionID)
		c.SetContext(gscsvc.WithCredentials(c.Context(), sessionID, creds))
		return c.Next()
	}
}

// OptionalGSCSession gắn session ID (nếu có) mà không yêu cầu đã kết nối
func OptionalGSCSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		if sessionID := SessionIDFromRequest(c); sessionID != "" {
			c.Locals(LocalsSessionID, sessionID)
		}
		return c.Next()
	}
}

