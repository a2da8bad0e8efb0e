package utility

import (
	"fmt"
	"strings"
)

// FormatBytes chuyển đổi số bytes thành chuỗi dễ đọc (KB, MB, GB)
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// SplitList tách chuỗi phân tách bằng dấu phẩy, trim và lowercase từng phần, bỏ phần rỗng và trùng
// Vd: "Date, query,,DATE" -> ["date", "query"]
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}
