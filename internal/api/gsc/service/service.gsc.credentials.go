// Package gscsvc quản lý phiên kết nối Google Search Console và truy vấn Search Analytics.
package gscsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"seo_dashboard/internal/api/gsc/models"
)

// CredentialStore lưu token OAuth theo session ID
type CredentialStore interface {
	Save(ctx context.Context, sessionID string, creds *models.Credentials) error
	// Load trả về nil, nil khi phiên chưa kết nối
	Load(ctx context.Context, sessionID string) (*models.Credentials, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

const redisKeyPrefix = "seo:gsc:session:"

// RedisCredentialStore lưu credentials dạng JSON trong Redis với TTL
type RedisCredentialStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCredentialStore tạo store Redis
func NewRedisCredentialStore(client *redis.Client, ttl time.Duration) *RedisCredentialStore {
	return &RedisCredentialStore{client: client, ttl: ttl}
}

func (s *RedisCredentialStore) key(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Save ghi đè credentials và gia hạn TTL
func (s *RedisCredentialStore) Save(ctx context.Context, sessionID string, creds *models.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("lưu credentials vào redis: %w", err)
	}
	return nil
}

// Load đọc credentials của phiên
func (s *RedisCredentialStore) Load(ctx context.Context, sessionID string) (*models.Credentials, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("đọc credentials từ redis: %w", err)
	}
	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// Delete xóa credentials của phiên
func (s *RedisCredentialStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Ping kiểm tra kết nối Redis
func (s *RedisCredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MemoryCredentialStore giữ credentials trong bộ nhớ tiến trình (dev, không cấu hình Redis)
type MemoryCredentialStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	creds     models.Credentials
	expiresAt time.Time
}

// NewMemoryCredentialStore tạo store trong bộ nhớ; ttl <= 0 = không hết hạn
func NewMemoryCredentialStore(ttl time.Duration) *MemoryCredentialStore {
	return &MemoryCredentialStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryCredentialStore) Save(ctx context.Context, sessionID string, creds *models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.entries[sessionID] = memoryEntry{creds: *creds, expiresAt: expiresAt}
	return nil
}

func (s *MemoryCredentialStore) Load(ctx context.Context, sessionID string) (*models.Credentials, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		_ = s.Delete(ctx, sessionID)
		return nil, nil
	}
	creds := entry.creds
	return &creds, nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryCredentialStore) Ping(ctx context.Context) error {
	return nil
}
