package main

import (
	"context"
	"time"

	"seo_dashboard/config"
	seomodels "seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/database"
	"seo_dashboard/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.InitCollectionNames()
	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (đăng ký custom validators: date_ymd, site_url, no_xss)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName_Data)
	global.RegistryDatabase.Register(global.MongoDB_ServerConfig.MongoDB_DBName_Data, db)

	// Khởi tạo các collections nếu chưa có
	colNames := []string{global.MongoDB_ColNames.ReportingData, global.MongoDB_ColNames.Imports}
	if err := database.EnsureCollections(ctx, db, colNames); err != nil {
		logrus.Fatalf("Failed to ensure collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Khởi tạo các index cho các collection
	if err := database.CreateIndexes(ctx, db.Collection(global.MongoDB_ColNames.ReportingData), seomodels.ReportingDocument{}); err != nil {
		logrus.Errorf("Failed to create indexes for %s: %v", global.MongoDB_ColNames.ReportingData, err)
	}
	if err := database.CreateIndexes(ctx, db.Collection(global.MongoDB_ColNames.Imports), seomodels.ImportRecord{}); err != nil {
		logrus.Errorf("Failed to create indexes for %s: %v", global.MongoDB_ColNames.Imports, err)
	}
}
