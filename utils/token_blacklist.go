package utils

import (
	"context"
	"sync"
	"time"
)

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeToken marks a session token id as logged out until its natural expiration.
func RevokeToken(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, "session:revoked:"+tokenID, "1", ttl).Err(); err == nil {
			return
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	purgeRevokedLocked()
	revoked[tokenID] = expiresAt
}

// IsTokenRevoked checks whether a token id was logged out before it expired.
func IsTokenRevoked(tokenID string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, "session:revoked:"+tokenID).Result(); err == nil && n > 0 {
			return true
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[tokenID]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, tokenID)
		return false
	}
	return true
}

func purgeRevokedLocked() {
	now := time.Now()
	for id, exp := range revoked {
		if now.After(exp) {
			delete(revoked, id)
		}
	}
}
