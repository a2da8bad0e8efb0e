package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Nó chứa thông tin cơ sở dữ liệu, Google OAuth và tham số import
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName_Data   string `env:"MONGODB_DBNAME_DATA,required"`              // Tên cơ sở dữ liệu chứa dữ liệu SEO
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials (cookie phiên GSC)
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting
	// Google Search Console OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`     // OAuth client ID
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"` // OAuth client secret
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/v1/gsc/callback"`
	// Session store cho token GSC. REDIS_ADDR rỗng = lưu trong bộ nhớ tiến trình
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"720"` // Thời gian sống của phiên GSC
	SessionSecure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	// Import
	ImportTimeoutMinutes int `env:"IMPORT_TIMEOUT_MINUTES" envDefault:"30"` // Quá thời gian này import bị hủy
	ImportBatchSize      int `env:"IMPORT_BATCH_SIZE" envDefault:"1000"`    // Số document mỗi lần insert
	GSCRowLimit          int `env:"GSC_ROW_LIMIT" envDefault:"25000"`       // rowLimit mỗi trang Search Analytics
	// Frontend URL (redirect sau khi kết nối GSC)
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env, đi dần lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp.
// Nếu không tìm thấy file env, biến môi trường của tiến trình vẫn được dùng.
func NewConfig(files ...string) *Configuration {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			files = append(files, envPath)
		}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			fmt.Printf("Bỏ qua file env không tồn tại: %s\n", f)
			continue
		}
		if err := godotenv.Load(f); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", f, err)
			return nil
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}
	if cfg.ImportBatchSize <= 0 {
		cfg.ImportBatchSize = 1000
	}
	if cfg.ImportTimeoutMinutes <= 0 {
		cfg.ImportTimeoutMinutes = 30
	}

	return &cfg
}

// GSCConfigured cho biết đã cấu hình đủ OAuth client để kết nối Google Search Console.
func (c *Configuration) GSCConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
