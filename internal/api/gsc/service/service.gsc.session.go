package gscsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"seo_dashboard/internal/api/gsc/models"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"
)

// ScopeWebmastersReadOnly là scope đọc dữ liệu Search Console
const ScopeWebmastersReadOnly = "https://www.googleapis.com/auth/webmasters.readonly"

// NewOAuthConfig tạo cấu hình OAuth2 Google cho Search Console
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{ScopeWebmastersReadOnly},
		Endpoint:     google.Endpoint,
	}
}

// SessionService là nguồn duy nhất quản lý credentials GSC: đổi code lấy token,
// lưu token, làm mới và lưu lại token đã refresh.
type SessionService struct {
	oauth *oauth2.Config
	store CredentialStore
	now   func() time.Time
}

// NewSessionService tạo SessionService. oauth nil nghĩa là server chưa cấu hình Google OAuth.
func NewSessionService(oauth *oauth2.Config, store CredentialStore) *SessionService {
	return &SessionService{oauth: oauth, store: store, now: time.Now}
}

// Configured cho biết đã có OAuth client
func (s *SessionService) Configured() bool {
	return s.oauth != nil && s.oauth.ClientID != ""
}

// Store trả về CredentialStore (dùng cho health check)
func (s *SessionService) Store() CredentialStore {
	return s.store
}

// NewSessionID sinh session ID mới cho cookie
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID kiểm tra session ID có đúng dạng uuid
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// AuthURL trả về URL đồng ý của Google. state là session ID để callback gắn token đúng phiên.
func (s *SessionService) AuthURL(sessionID string) (string, error) {
	if !s.Configured() {
		return "", common.ErrGSCNotConfigured
	}
	return s.oauth.AuthCodeURL(sessionID, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Connect đổi authorization code lấy token và lưu cho phiên
func (s *SessionService) Connect(ctx context.Context, sessionID, code string) (*models.Credentials, error) {
	if !s.Configured() {
		return nil, common.ErrGSCNotConfigured
	}
	if code == "" {
		return nil, common.WithDetails(common.ErrRequiredField, "code")
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, common.WithDetails(common.ErrGSCNotConnected, err)
	}
	previous, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	creds := models.FromToken(tok, previous, s.now().Unix())
	if err := s.store.Save(ctx, sessionID, creds); err != nil {
		return nil, err
	}
	logger.WithModule("gsc").WithField("session_id", sessionID).Info("🔗 [GSC] Đã kết nối Search Console")
	return creds, nil
}

// Credentials đọc credentials của phiên; ErrGSCNotConnected nếu chưa kết nối
func (s *SessionService) Credentials(ctx context.Context, sessionID string) (*models.Credentials, error) {
	if sessionID == "" {
		return nil, common.ErrGSCNotConnected
	}
	creds, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if creds == nil || (creds.AccessToken == "" && creds.RefreshToken == "") {
		return nil, common.ErrGSCNotConnected
	}
	return creds, nil
}

// TokenSource trả về nguồn token tự refresh. Token mới sau khi refresh được ghi lại vào store.
func (s *SessionService) TokenSource(ctx context.Context, sessionID string, creds *models.Credentials) oauth2.TokenSource {
	cfg := s.oauth
	if cfg == nil {
		cfg = &oauth2.Config{Endpoint: google.Endpoint}
	}
	tok := creds.Token()
	base := cfg.TokenSource(context.WithoutCancel(ctx), tok)
	return oauth2.ReuseTokenSource(tok, &persistingTokenSource{
		base:      base,
		last:      tok.AccessToken,
		sessionID: sessionID,
		previous:  creds,
		store:     s.store,
		now:       s.now,
	})
}

// persistingTokenSource ghi token vào store mỗi khi access token thay đổi
type persistingTokenSource struct {
	mu        sync.Mutex
	base      oauth2.TokenSource
	last      string
	sessionID string
	previous  *models.Credentials
	store     CredentialStore
	now       func() time.Time
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, common.WithDetails(common.ErrGSCNotConnected, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		creds := models.FromToken(tok, p.previous, p.now().Unix())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.store.Save(ctx, p.sessionID, creds); err != nil {
			logger.WithModule("gsc").WithError(err).Warn("Không lưu được token đã refresh")
		}
		p.last = tok.AccessToken
		p.previous = creds
	}
	return tok, nil
}

// Status trả về trạng thái kết nối của phiên
func (s *SessionService) Status(ctx context.Context, sessionID string) (models.ConnectionStatus, error) {
	status := models.ConnectionStatus{Configured: s.Configured(), SessionID: sessionID}
	if sessionID == "" {
		return status, nil
	}
	creds, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return status, err
	}
	if creds != nil {
		status.Connected = true
		status.ConnectedAt = creds.ConnectedAt
		if !creds.Expiry.IsZero() {
			status.ExpiresAt = creds.Expiry.Unix()
		}
	}
	return status, nil
}

// Disconnect xóa credentials của phiên
func (s *SessionService) Disconnect(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("xóa credentials: %w", err)
	}
	logger.WithModule("gsc").WithField("session_id", sessionID).Info("🔌 [GSC] Đã ngắt kết nối")
	return nil
}

type credentialsKey struct{}

// WithCredentials gắn phiên GSC vào context của request
func WithCredentials(ctx context.Context, sessionID string, creds *models.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, &requestCredentials{sessionID: sessionID, creds: creds})
}

type requestCredentials struct {
	sessionID string
	creds     *models.Credentials
}

// CredentialsFrom lấy phiên GSC từ context; ok = false nếu request chưa qua middleware GSC
func CredentialsFrom(ctx context.Context) (sessionID string, creds *models.Credentials, ok bool) {
	rc, ok := ctx.Value(credentialsKey{}).(*requestCredentials)
	if !ok || rc == nil || rc.creds == nil {
		return "", nil, false
	}
	return rc.sessionID, rc.creds, true
}
