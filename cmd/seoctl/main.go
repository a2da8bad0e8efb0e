// Command seoctl là công cụ vận hành: import file Ahrefs, xóa dữ liệu, xem lịch sử import từ shell.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"seo_dashboard/config"
	seosvc "seo_dashboard/internal/api/seo/service"
	"seo_dashboard/internal/database"
	"seo_dashboard/internal/global"
	"seo_dashboard/internal/logger"
)

var version = "dev"

func main() {
	root := newRootCmd(openMongoServices, os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openMongoServices kết nối MongoDB theo config/env và dựng ImportService
func openMongoServices(ctx context.Context, envFile string) (*cliServices, error) {
	if err := logger.Init(nil); err != nil {
		return nil, fmt.Errorf("khởi tạo logger: %w", err)
	}

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg := config.NewConfig(files...)
	if cfg == nil {
		return nil, fmt.Errorf("không đọc được cấu hình")
	}
	global.MongoDB_ServerConfig = cfg
	global.InitCollectionNames()

	client, err := database.GetInstance(cfg)
	if err != nil {
		return nil, fmt.Errorf("kết nối MongoDB: %w", err)
	}
	global.MongoDB_Session = client

	db := client.Database(cfg.MongoDB_DBName_Data)
	for _, name := range []string{global.MongoDB_ColNames.ReportingData, global.MongoDB_ColNames.Imports} {
		if _, err := global.RegistryCollections.Register(name, db.Collection(name)); err != nil {
			_ = database.CloseInstance(client)
			return nil, fmt.Errorf("đăng ký collection %s: %w", name, err)
		}
	}

	metricStore, err := seosvc.NewMongoMetricStore(cfg.ImportBatchSize)
	if err != nil {
		_ = database.CloseInstance(client)
		return nil, err
	}
	recordStore, err := seosvc.NewMongoImportRecordStore()
	if err != nil {
		_ = database.CloseInstance(client)
		return nil, err
	}

	return &cliServices{
		Imports: seosvc.NewImportService(metricStore, recordStore, seosvc.ImportOptions{
			Timeout: time.Duration(cfg.ImportTimeoutMinutes) * time.Minute,
		}),
		Close: func() {
			_ = database.CloseInstance(client)
			logger.Shutdown()
		},
	}, nil
}
