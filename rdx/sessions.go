package rdx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "session:revoked:"

// Sessions records revoked token ids until the tokens would have expired anyway.
type Sessions struct {
	conn *redis.Client
}

func NewSessions(conn *redis.Client) *Sessions {
	return &Sessions{conn: conn}
}

// Revoke marks jti as logged out for ttl. A nil client makes it a no-op.
func (s *Sessions) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s == nil || s.conn == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return s.conn.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti was logged out. Without redis nothing is revoked.
func (s *Sessions) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s == nil || s.conn == nil || jti == "" {
		return false, nil
	}
	err := s.conn.Get(ctx, revokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
