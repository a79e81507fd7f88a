// Package otp keeps short-lived password-reset codes in Redis. Keeping this
// state out of process memory means codes survive restarts and work across
// instances.
package otp

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "otp:reset:"
	codeLength = 6
	// TTL bounds how long a reset code is redeemable.
	TTL = 10 * time.Minute
)

var ErrInvalidCode = errors.New("invalid or expired code")

type Store struct {
	rdb redis.Cmdable
}

func NewStore(rdb redis.Cmdable) *Store {
	return &Store{rdb: rdb}
}

func generateCode(length int) (string, error) {
	const charset = "0123456789"
	code := make([]byte, length)
	if _, err := rand.Read(code); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		code[i] = charset[int(code[i])%len(charset)]
	}
	return string(code), nil
}

// Issue creates a fresh code for the account and stores it under a TTL,
// replacing any previous code.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+email, code, TTL).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Redeem checks the code and consumes it. A code redeems at most once.
func (s *Store) Redeem(ctx context.Context, email, code string) error {
	key := keyPrefix + email
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidCode
		}
		return fmt.Errorf("read otp: %w", err)
	}
	if !hmac.Equal([]byte(stored), []byte(code)) {
		return ErrInvalidCode
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}
