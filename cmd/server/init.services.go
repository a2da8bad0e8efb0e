package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	basehdl "seo_dashboard/internal/api/base/handler"
	gschdl "seo_dashboard/internal/api/gsc/handler"
	gscrouter "seo_dashboard/internal/api/gsc/router"
	gscsvc "seo_dashboard/internal/api/gsc/service"
	apirouter "seo_dashboard/internal/api/router"
	seohdl "seo_dashboard/internal/api/seo/handler"
	seorouter "seo_dashboard/internal/api/seo/router"
	seosvc "seo_dashboard/internal/api/seo/service"
	systemrouter "seo_dashboard/internal/api/system/router"
	"seo_dashboard/internal/global"
	"seo_dashboard/internal/logger"
	"seo_dashboard/internal/telemetry"
)

// appServices gom các service đã khởi tạo để đăng ký route và chạy worker
type appServices struct {
	Metrics   *telemetry.Metrics
	Imports   *seosvc.ImportService
	Dashboard *seosvc.DashboardService
	Sessions  *gscsvc.SessionService
	Routes    []apirouter.RegisterFunc
	closers   []func() error
}

// Close giải phóng các kết nối phụ (Redis)
func (s *appServices) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// newCredentialStore chọn Redis khi có REDIS_ADDR, ngược lại lưu trong bộ nhớ tiến trình
func newCredentialStore(ttl time.Duration) (gscsvc.CredentialStore, func() error) {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	if cfg.RedisAddr == "" {
		log.Warn("🔑 [GSC] REDIS_ADDR trống, token GSC lưu trong bộ nhớ và mất khi restart")
		return gscsvc.NewMemoryCredentialStore(ttl), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect Redis at %s: %v", cfg.RedisAddr, err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("🔑 [GSC] Session store: Redis")
	return gscsvc.NewRedisCredentialStore(client, ttl), client.Close
}

// InitServices khởi tạo store, service và handler của các domain
func InitServices() *appServices {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()
	metrics := telemetry.New()

	metricStore, err := seosvc.NewMongoMetricStore(cfg.ImportBatchSize)
	if err != nil {
		log.Fatalf("Failed to initialize metric store: %v", err)
	}
	recordStore, err := seosvc.NewMongoImportRecordStore()
	if err != nil {
		log.Fatalf("Failed to initialize import record store: %v", err)
	}

	imports := seosvc.NewImportService(metricStore, recordStore, seosvc.ImportOptions{
		Timeout: time.Duration(cfg.ImportTimeoutMinutes) * time.Minute,
		Metrics: metrics,
	})
	dashboard := seosvc.NewDashboardService(metricStore, metrics, nil)

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	credStore, closeStore := newCredentialStore(sessionTTL)
	oauthCfg := gscsvc.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if !cfg.GSCConfigured() {
		log.Warn("🔑 [GSC] Chưa cấu hình GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET, import GSC bị tắt")
		oauthCfg = nil
	}
	sessions := gscsvc.NewSessionService(oauthCfg, credStore)
	clients := &gscsvc.APIClientFactory{Sessions: sessions, RowLimit: cfg.GSCRowLimit}

	gscHandler := gschdl.NewGSCHandler(sessions, clients, gschdl.CookieOptions{
		TTL:         sessionTTL,
		Secure:      cfg.SessionSecure || cfg.EnableTLS,
		FrontendURL: cfg.FrontendURL,
	})
	seoHandler := seohdl.NewSEOHandler(imports, dashboard, clients)
	systemHandler := basehdl.NewSystemHandler(map[string]basehdl.Pinger{"session_store": credStore})

	log.Info("✅ [INIT] Services initialized")
	return &appServices{
		Metrics:   metrics,
		Imports:   imports,
		Dashboard: dashboard,
		Sessions:  sessions,
		Routes: []apirouter.RegisterFunc{
			systemrouter.Register(systemHandler, metrics),
			gscrouter.Register(gscHandler),
			seorouter.Register(seoHandler, sessions),
		},
		closers: []func() error{closeStore},
	}
}
