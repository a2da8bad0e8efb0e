package global

import (
	"seo_dashboard/config"
	"seo_dashboard/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_SEO_CollectionName chứa tên các collection trong MongoDB
type MongoDB_SEO_CollectionName struct {
	ReportingData string // Tên collection cho dữ liệu SEO đã chuẩn hóa (GSC + Ahrefs)
	Imports       string // Tên collection cho lịch sử import
}

// Các biến toàn cục
var Validate *validator.Validate                                                   // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                  // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                     // Cấu hình của server
var MongoDB_ColNames MongoDB_SEO_CollectionName = *new(MongoDB_SEO_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases

// InitCollectionNames gán tên collection mặc định
func InitCollectionNames() {
	MongoDB_ColNames.ReportingData = "seo_reporting_data"
	MongoDB_ColNames.Imports = "seo_imports"
}
