package gscsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"

	"seo_dashboard/internal/api/gsc/models"
	seomodels "seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"
)

// MaxRowLimit là số dòng tối đa Search Analytics trả về cho một request
const MaxRowLimit = 25000

// SearchConsoleClient gọi Search Console API bằng credentials của một phiên
type SearchConsoleClient struct {
	svc      *searchconsole.Service
	rowLimit int64
}

// NewSearchConsoleClient tạo client; opts cho phép đổi endpoint/http client (test)
func NewSearchConsoleClient(ctx context.Context, ts oauth2.TokenSource, rowLimit int, opts ...option.ClientOption) (*SearchConsoleClient, error) {
	if rowLimit <= 0 || rowLimit > MaxRowLimit {
		rowLimit = MaxRowLimit
	}
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tạo searchconsole service: %w", err)
	}
	return &SearchConsoleClient{svc: svc, rowLimit: int64(rowLimit)}, nil
}

// QueryRows lấy toàn bộ dòng Search Analytics của khoảng ngày, phân trang theo rowLimit.
// keys của mỗi dòng được map theo thứ tự dimensions (date, query, page).
func (c *SearchConsoleClient) QueryRows(ctx context.Context, siteURL, startDate, endDate string, dimensions []string) ([]seomodels.GSCRow, error) {
	var rows []seomodels.GSCRow
	var startRow int64
	for {
		req := &searchconsole.SearchAnalyticsQueryRequest{
			StartDate:  startDate,
			EndDate:    endDate,
			Dimensions: dimensions,
			RowLimit:   c.rowLimit,
			StartRow:   startRow,
			DataState:  "final",
		}
		resp, err := c.svc.Searchanalytics.Query(siteURL, req).Context(ctx).Do()
		if err != nil {
			return rows, upstreamError(err)
		}
		for _, r := range resp.Rows {
			rows = append(rows, toGSCRow(r, dimensions))
		}

		logger.WithModule("gsc").WithFields(logrus.Fields{
			"site_url":   siteURL,
			"dimensions": dimensions,
			"start_row":  startRow,
			"rows":       len(resp.Rows),
		}).Debug("Search Analytics page")

		if int64(len(resp.Rows)) < c.rowLimit {
			return rows, nil
		}
		startRow += c.rowLimit
	}
}

func toGSCRow(r *searchconsole.ApiDataRow, dimensions []string) seomodels.GSCRow {
	row := seomodels.GSCRow{
		Clicks:      seomodels.Float(r.Clicks),
		Impressions: seomodels.Float(r.Impressions),
		CTR:         seomodels.Float(r.Ctr),
		Position:    seomodels.Float(r.Position),
	}
	for i, dim := range dimensions {
		if i >= len(r.Keys) {
			break
		}
		switch dim {
		case "date":
			row.Date = r.Keys[i]
		case "query":
			row.Query = r.Keys[i]
		case "page":
			row.Page = r.Keys[i]
		}
	}
	return row
}

// ListSites liệt kê property mà tài khoản có quyền
func (c *SearchConsoleClient) ListSites(ctx context.Context) ([]models.Site, error) {
	resp, err := c.svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, upstreamError(err)
	}
	sites := make([]models.Site, 0, len(resp.SiteEntry))
	for _, s := range resp.SiteEntry {
		sites = append(sites, models.Site{SiteURL: s.SiteUrl, PermissionLevel: s.PermissionLevel})
	}
	return sites, nil
}

// upstreamError phân loại lỗi Google API: 401/403 => chưa kết nối, còn lại => lỗi upstream
func upstreamError(err error) error {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 401 || gerr.Code == 403) {
		return common.WithDetails(common.ErrGSCNotConnected, gerr.Message)
	}
	return common.WithDetails(common.ErrGSCUpstream, err)
}

// ClientFactory tạo client cho một phiên; handler và import dùng chung, test thay bằng fake
type ClientFactory interface {
	Client(ctx context.Context, sessionID string, creds *models.Credentials) (Client, error)
}

// Client là các thao tác GSC mà handler cần
type Client interface {
	QueryRows(ctx context.Context, siteURL, startDate, endDate string, dimensions []string) ([]seomodels.GSCRow, error)
	ListSites(ctx context.Context) ([]models.Site, error)
}

// APIClientFactory tạo SearchConsoleClient thật từ SessionService
type APIClientFactory struct {
	Sessions *SessionService
	RowLimit int
	Options  []option.ClientOption
}

// Client tạo SearchConsoleClient với token source tự refresh của phiên
func (f *APIClientFactory) Client(ctx context.Context, sessionID string, creds *models.Credentials) (Client, error) {
	ts := f.Sessions.TokenSource(ctx, sessionID, creds)
	return NewSearchConsoleClient(ctx, ts, f.RowLimit, f.Options...)
}
