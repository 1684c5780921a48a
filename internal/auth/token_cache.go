package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-edarshan/internal/logger"
)

const (
	identityKeyPrefix = "auth_identity:"
	// TokenExpiryBuffer stops serving a cached identity shortly before the token itself expires.
	TokenExpiryBuffer = 30 * time.Second
	maxCacheTTL       = 15 * time.Minute
)

type cachedIdentity struct {
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CachedVerifier remembers verified tokens in Redis so OIDC signature checks
// run once per token across all instances. Keys are token hashes; raw tokens
// are never stored.
type CachedVerifier struct {
	Next   Verifier
	Client *redis.Client
	Logger *logger.Logger
}

func NewCachedVerifier(next Verifier, client *redis.Client, log *logger.Logger) *CachedVerifier {
	return &CachedVerifier{Next: next, Client: client, Logger: log}
}

func tokenKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return identityKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	key := tokenKey(rawToken)

	if identity, ok := c.lookup(ctx, key); ok {
		return identity, nil
	}

	identity, err := c.Next.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, identity); err != nil {
		c.Logger.Warn("AUTH", fmt.Sprintf("Failed to cache identity for %s: %v", identity.Subject, err))
	}
	return identity, nil
}

func (c *CachedVerifier) lookup(ctx context.Context, key string) (*Identity, bool) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.Logger.Warn("AUTH", fmt.Sprintf("Identity cache read failed: %v", err))
		}
		return nil, false
	}

	var entry cachedIdentity
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if !time.Now().Add(TokenExpiryBuffer).Before(entry.ExpiresAt) {
		return nil, false
	}
	identity := entry.Identity
	identity.ExpiresAt = entry.ExpiresAt
	return &identity, true
}

func (c *CachedVerifier) store(ctx context.Context, key string, identity *Identity) error {
	if identity.ExpiresAt.IsZero() {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt) - TokenExpiryBuffer
	if ttl <= 0 {
		return nil
	}
	if ttl > maxCacheTTL {
		ttl = maxCacheTTL
	}

	payload, err := json.Marshal(cachedIdentity{Identity: *identity, ExpiresAt: identity.ExpiresAt})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := c.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store identity in Redis: %w", err)
	}
	return nil
}
