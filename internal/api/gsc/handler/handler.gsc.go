// Package gschdl chứa HTTP handler kết nối Google Search Console.
package gschdl

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "seo_dashboard/internal/api/base/handler"
	gscdto "seo_dashboard/internal/api/gsc/dto"
	gscsvc "seo_dashboard/internal/api/gsc/service"
	"seo_dashboard/internal/api/middleware"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"
)

// CookieOptions cấu hình cookie phiên
type CookieOptions struct {
	TTL         time.Duration
	Secure      bool
	FrontendURL string // Có giá trị thì callback redirect về đây thay vì trả JSON
}

// GSCHandler xử lý kết nối GSC: auth-url, callback, status, sites, disconnect
type GSCHandler struct {
	Sessions *gscsvc.SessionService
	Clients  gscsvc.ClientFactory
	Cookie   CookieOptions
}

// NewGSCHandler tạo GSCHandler
func NewGSCHandler(sessions *gscsvc.SessionService, clients gscsvc.ClientFactory, cookie CookieOptions) *GSCHandler {
	return &GSCHandler{Sessions: sessions, Clients: clients, Cookie: cookie}
}

func (h *GSCHandler) setSessionCookie(c fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(h.Cookie.TTL),
		HTTPOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// HandleAuthURL xử lý GET /gsc/auth-url: tạo phiên (nếu chưa có) và trả URL đồng ý của Google
func (h *GSCHandler) HandleAuthURL(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		sessionID := middleware.SessionIDFromRequest(c)
		if sessionID == "" {
			sessionID = gscsvc.NewSessionID()
		}
		authURL, err := h.Sessions.AuthURL(sessionID)
		if err != nil {
			return err
		}
		h.setSessionCookie(c, sessionID)
		return basehdl.HandleResponse(c, gscdto.GSCAuthURLResponse{URL: authURL}, nil)
	})
}

// HandleCallback xử lý GET /gsc/callback?code=&state=, state là session ID đã cấp ở auth-url.
// Cookie phiên phải có mặt và trùng state, nếu không sẽ trả 400.
func (h *GSCHandler) HandleCallback(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var q gscdto.GSCCallbackQuery
		if err := c.Bind().Query(&q); err != nil {
			return common.WithDetails(common.ErrInvalidFormat, err.Error())
		}
		if q.Error != "" {
			return common.WithDetails(common.ErrGSCNotConnected, q.Error)
		}
		if !gscsvc.ValidSessionID(q.State) {
			return common.WithDetails(common.ErrInvalidInput, "state")
		}
		// Chỉ tin cookie do auth-url đặt, không nhận header
		if cookieID := c.Cookies(middleware.SessionCookieName); cookieID == "" || cookieID != q.State {
			return common.WithDetails(common.ErrInvalidInput, "state không khớp phiên hiện tại")
		}

		if _, err := h.Sessions.Connect(c.Context(), q.State, q.Code); err != nil {
			return err
		}
		h.setSessionCookie(c, q.State)
		logger.LogAction("gsc_connect", c, nil)

		if h.Cookie.FrontendURL != "" {
			target, err := url.Parse(h.Cookie.FrontendURL)
			if err == nil {
				params := target.Query()
				params.Set("gsc", "connected")
				target.RawQuery = params.Encode()
				return c.Redirect().To(target.String())
			}
		}
		status, err := h.Sessions.Status(c.Context(), q.State)
		return basehdl.HandleResponse(c, status, err)
	})
}

// HandleStatus xử lý GET /gsc/status
func (h *GSCHandler) HandleStatus(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		status, err := h.Sessions.Status(c.Context(), middleware.SessionIDFromRequest(c))
		return basehdl.HandleResponse(c, status, err)
	})
}

// HandleSites xử lý GET /gsc/sites: cần phiên đã kết nối
func (h *GSCHandler) HandleSites(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		sessionID, creds, ok := gscsvc.CredentialsFrom(c.Context())
		if !ok {
			return common.ErrGSCNotConnected
		}
		client, err := h.Clients.Client(c.Context(), sessionID, creds)
		if err != nil {
			return common.WithDetails(common.ErrGSCUpstream, err)
		}
		sites, err := client.ListSites(c.Context())
		return basehdl.HandleResponse(c, sites, err)
	})
}

// HandleDisconnect xử lý POST /gsc/disconnect: xóa token và cookie phiên
func (h *GSCHandler) HandleDisconnect(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		sessionID := middleware.SessionIDFromRequest(c)
		if err := h.Sessions.Disconnect(c.Context(), sessionID); err != nil {
			return err
		}
		c.ClearCookie(middleware.SessionCookieName)
		logger.LogAction("gsc_disconnect", c, nil)
		return basehdl.HandleResponse(c, fiber.Map{"connected": false}, nil)
	})
}
