// Package dto chứa input/output của API kết nối Google Search Console.
package dto

// GSCCallbackQuery là query Google gửi về redirect URL sau bước đồng ý
type GSCCallbackQuery struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}

// GSCAuthURLResponse trả URL đồng ý cho client mở popup/redirect
type GSCAuthURLResponse struct {
	URL string `json:"url"`
}
