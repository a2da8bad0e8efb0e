package logger

import (
	"os"
	"strconv"
	"strings"
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	// Log Level: trace, debug, info, warn, error, fatal
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Log Format: json, text
	Format string `env:"LOG_FORMAT" envDefault:"text"`

	// Log Output: file, stdout, both
	Output string `env:"LOG_OUTPUT" envDefault:"both"`

	// Log Rotation
	MaxSize    int  `env:"LOG_MAX_SIZE" envDefault:"100"`  // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS" envDefault:"7"` // Số file cũ giữ lại
	MaxAge     int  `env:"LOG_MAX_AGE" envDefault:"7"`     // Số ngày giữ lại
	Compress   bool `env:"LOG_COMPRESS" envDefault:"true"` // Nén file cũ

	// Log Paths
	LogPath    string `env:"LOG_PATH" envDefault:"./logs"`
	AppFile    string `env:"LOG_APP_FILE" envDefault:"app.log"`
	AuditFile  string `env:"LOG_AUDIT_FILE" envDefault:"audit.log"`
	ImportFile string `env:"LOG_IMPORT_FILE" envDefault:"import.log"`

	// Buffer của async hook
	BufferSize int `env:"LOG_BUFFER_SIZE" envDefault:"1000"`
}

// DefaultConfig trả về cấu hình mặc định, override bằng biến môi trường
func DefaultConfig() *LogConfig {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	config := &LogConfig{
		Level:      "info",
		Format:     "json",
		Output:     "both",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
		LogPath:    "./logs",
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		ImportFile: "import.log",
		BufferSize: 1000,
	}

	if env == "development" {
		config.Level = "debug"
		config.Format = "text"
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = strings.ToLower(level)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = strings.ToLower(format)
	}
	if output := os.Getenv("LOG_OUTPUT"); output != "" {
		config.Output = strings.ToLower(output)
	}

	config.MaxSize = envInt("LOG_MAX_SIZE", config.MaxSize, 1)
	config.MaxBackups = envInt("LOG_MAX_BACKUPS", config.MaxBackups, 0)
	config.MaxAge = envInt("LOG_MAX_AGE", config.MaxAge, 1)
	config.BufferSize = envInt("LOG_BUFFER_SIZE", config.BufferSize, 1)
	if compressStr := os.Getenv("LOG_COMPRESS"); compressStr != "" {
		if compress, err := strconv.ParseBool(compressStr); err == nil {
			config.Compress = compress
		}
	}

	if logPath := os.Getenv("LOG_PATH"); logPath != "" {
		config.LogPath = logPath
	}
	if appFile := os.Getenv("LOG_APP_FILE"); appFile != "" {
		config.AppFile = appFile
	}
	if auditFile := os.Getenv("LOG_AUDIT_FILE"); auditFile != "" {
		config.AuditFile = auditFile
	}
	if importFile := os.Getenv("LOG_IMPORT_FILE"); importFile != "" {
		config.ImportFile = importFile
	}

	return config
}

// envInt đọc số nguyên từ env, bỏ qua giá trị nhỏ hơn min
func envInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}
