package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction mô tả một thao tác làm thay đổi dữ liệu hoặc phiên kết nối
type AuditAction struct {
	Action    string         `json:"action"`     // Tên hành động (ví dụ: "seo_clear", "gsc_connect")
	SessionID string         `json:"session_id"` // Phiên GSC thực hiện (nếu có)
	IP        string         `json:"ip"`
	UserAgent string         `json:"user_agent"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// LogAction ghi một hành động audit từ request Fiber
func LogAction(action string, c fiber.Ctx, details map[string]any) {
	audit := AuditAction{
		Action:    action,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	}
	if sid, ok := c.Locals("gscSessionID").(string); ok {
		audit.SessionID = sid
	}

	GetAuditLogger().WithFields(logrus.Fields{
		"action":     audit.Action,
		"session_id": audit.SessionID,
		"ip":         audit.IP,
		"user_agent": audit.UserAgent,
		"details":    audit.Details,
		"timestamp":  audit.Timestamp,
	}).Info("Audit action")
}
