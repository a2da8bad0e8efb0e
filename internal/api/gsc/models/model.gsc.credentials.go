// Package models chứa model thuộc domain kết nối Google Search Console.
package models

import (
	"time"

	"golang.org/x/oauth2"
)

// Credentials là token OAuth của một phiên GSC, lưu trong CredentialStore theo session ID
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	ConnectedAt  int64     `json:"connectedAt"` // Unix seconds
}

// FromToken chuyển oauth2.Token thành Credentials. Giữ refresh token cũ khi Google không trả lại.
func FromToken(tok *oauth2.Token, previous *Credentials, connectedAt int64) *Credentials {
	c := &Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		ConnectedAt:  connectedAt,
	}
	if previous != nil {
		if c.RefreshToken == "" {
			c.RefreshToken = previous.RefreshToken
		}
		if previous.ConnectedAt != 0 {
			c.ConnectedAt = previous.ConnectedAt
		}
	}
	return c
}

// Token trả về oauth2.Token tương ứng
func (c *Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// ConnectionStatus là trạng thái kết nối GSC của phiên hiện tại
type ConnectionStatus struct {
	Connected   bool   `json:"connected"`
	Configured  bool   `json:"configured"` // Server đã có Google OAuth client
	ConnectedAt int64  `json:"connectedAt,omitempty"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
	SessionID   string `json:"-"`
}

// Site là một property GSC mà tài khoản có quyền truy cập
type Site struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}
