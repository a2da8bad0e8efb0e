package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa kết nối / chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusRequestTooLarge = 413 // File upload quá lớn
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Lỗi từ dịch vụ bên ngoài (Google)
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Hết thời gian chờ
)

// Response Messages
const (
	MsgSuccess  = "Thao tác thành công"
	MsgCreated  = "Tạo mới thành công"
	MsgAccepted = "Yêu cầu được chấp nhận"

	MsgBadRequest         = "Yêu cầu không hợp lệ"
	MsgUnauthorized       = "Chưa kết nối Google Search Console"
	MsgNotFound           = "Không tìm thấy tài nguyên"
	MsgConflict           = "Xung đột dữ liệu"
	MsgTooManyRequests    = "Quá nhiều yêu cầu"
	MsgInternalError      = "Lỗi hệ thống"
	MsgServiceUnavailable = "Dịch vụ không khả dụng"

	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: GSC_001)
	Category    string // Phân loại lỗi (ví dụ: SearchConsole)
	SubCategory string // Phân loại con (ví dụ: Credentials)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Google Search Console Errors (GSC_xxx)
	ErrCodeGSCCredentials = ErrorCode{
		Code:        "GSC_001",
		Category:    "SearchConsole",
		SubCategory: "Credentials",
		Description: "Chưa có hoặc không dùng được thông tin xác thực Google",
	}

	ErrCodeGSCUpstream = ErrorCode{
		Code:        "GSC_002",
		Category:    "SearchConsole",
		SubCategory: "Upstream",
		Description: "Lỗi khi gọi Search Analytics API",
	}

	// Import Errors (IMP_xxx)
	ErrCodeImport = ErrorCode{
		Code:        "IMP_001",
		Category:    "Import",
		SubCategory: "Pipeline",
		Description: "Lỗi trong quá trình import dữ liệu",
	}

	ErrCodeImportFile = ErrorCode{
		Code:        "IMP_002",
		Category:    "Import",
		SubCategory: "File",
		Description: "File export không đọc được",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Unwrap cho phép errors.Is/As đi xuống lỗi gốc nằm trong Details
func (e *Error) Unwrap() error {
	if inner, ok := e.Details.(error); ok {
		return inner
	}
	return nil
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	targetErr, ok := target.(*Error)
	if !ok || targetErr == nil {
		return false
	}
	return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)
	ErrInvalidDate   = NewError(ErrCodeValidationFormat, "Ngày không đúng định dạng YYYY-MM-DD", StatusBadRequest, nil)
	ErrInvalidRange  = NewError(ErrCodeValidationInput, "Khoảng thời gian không hợp lệ", StatusBadRequest, nil)
	ErrInvalidSource = NewError(ErrCodeValidationInput, "Nguồn dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrUnknownPreset = NewError(ErrCodeValidationInput, "Preset không được hỗ trợ", StatusBadRequest, nil)
	ErrInvalidMetric = NewError(ErrCodeValidationInput, "Chỉ số không được hỗ trợ", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Google Search Console Errors
	ErrGSCNotConnected  = NewError(ErrCodeGSCCredentials, MsgUnauthorized, StatusUnauthorized, nil)
	ErrGSCNotConfigured = NewError(ErrCodeGSCCredentials, "Chưa cấu hình Google OAuth client", StatusServiceUnavailable, nil)
	ErrGSCUpstream      = NewError(ErrCodeGSCUpstream, "Lỗi khi lấy dữ liệu từ Google Search Console", StatusBadGateway, nil)

	// Import Errors
	ErrImportFailed   = NewError(ErrCodeImport, "Import dữ liệu thất bại", StatusInternalServerError, nil)
	ErrImportTimeout  = NewError(ErrCodeImport, "Import vượt quá thời gian cho phép", StatusGatewayTimeout, nil)
	ErrUnreadableFile = NewError(ErrCodeImportFile, "Không đọc được file export", StatusBadRequest, nil)
)

// MongoDB Error Messages
const (
	MsgMongoConnection = "Lỗi kết nối MongoDB"
	MsgMongoNetwork    = "Lỗi mạng khi kết nối MongoDB"
	MsgMongoTimeout    = "Kết nối MongoDB bị timeout"
	MsgMongoAuth       = "Lỗi xác thực MongoDB"
	MsgMongoQuery      = "Lỗi truy vấn MongoDB"
	MsgMongoWrite      = "Lỗi ghi dữ liệu MongoDB"
	MsgMongoDuplicate  = "Dữ liệu trùng lặp trong MongoDB"
	MsgMongoSystem     = "Lỗi hệ thống MongoDB"
)

// MongoDB Specific Errors
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, MsgMongoConnection, StatusServiceUnavailable, nil)
	ErrMongoNetwork    = NewError(ErrCodeDatabaseConnection, MsgMongoNetwork, StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, MsgMongoTimeout, StatusServiceUnavailable, nil)
	ErrMongoAuth       = NewError(ErrCodeDatabaseConnection, MsgMongoAuth, StatusServiceUnavailable, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, MsgMongoQuery, StatusInternalServerError, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseQuery, MsgMongoWrite, StatusInternalServerError, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseQuery, MsgMongoDuplicate, StatusConflict, nil)
	ErrMongoSystem     = NewError(ErrCodeDatabase, MsgMongoSystem, StatusInternalServerError, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Lỗi đã là *Error thì giữ nguyên
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return ErrMongoConnection
		case mongoErr.Code >= 200 && mongoErr.Code < 300:
			return ErrMongoAuth
		case mongoErr.Code >= 300 && mongoErr.Code < 400:
			return ErrMongoQuery
		case mongoErr.Code >= 400 && mongoErr.Code < 500:
			return ErrMongoWrite
		case mongoErr.Code >= 500:
			return ErrMongoSystem
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return ErrMongoDuplicate
	}
	if mongo.IsNetworkError(err) {
		return ErrMongoNetwork
	}
	if mongo.IsTimeout(err) {
		return ErrMongoTimeout
	}

	// Nếu không tìm thấy lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}

// StatusOf trả về HTTP status tương ứng với lỗi, mặc định 500
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return StatusInternalServerError
}

// WithDetails tạo bản sao của lỗi chuẩn kèm thông tin chi tiết
func WithDetails(base error, details any) error {
	var appErr *Error
	if !errors.As(base, &appErr) {
		return base
	}
	return &Error{Code: appErr.Code, Message: appErr.Message, StatusCode: appErr.StatusCode, Details: details}
}
