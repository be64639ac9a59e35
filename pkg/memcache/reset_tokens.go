// Package memcache holds short-lived, process-local secrets.
package memcache

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// ResetTokenStore issues single-use password reset tokens bound to an
// account email.
type ResetTokenStore interface {
	Issue(accountEmail string, ttl time.Duration) (string, error)

	// Consume returns the email for token if it has not expired and removes
	// the token. Returns "" if missing or expired.
	Consume(token string) string
}

type entry struct {
	email     string
	expiresAt time.Time
}

// ResetTokens keeps only a digest of every token.
type ResetTokens struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *ResetTokens) Issue(accountEmail string, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.data[digest(token)] = entry{
		email:     accountEmail,
		expiresAt: s.now().Add(ttl),
	}
	return token, nil
}

func (s *ResetTokens) Consume(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := digest(token)
	e, ok := s.data[key]
	if !ok {
		return ""
	}
	delete(s.data, key)
	if s.now().After(e.expiresAt) {
		return ""
	}
	return e.email
}

// sweep drops expired entries; callers hold mu.
func (s *ResetTokens) sweep() {
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}
