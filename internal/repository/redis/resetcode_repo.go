package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("reset code not found or expired")

const (
	resetCodePrefix     = "reset:email:code"
	DefaultResetCodeTTL = 10 * time.Minute
)

// ResetCodeRepository caches one password-reset code per email address.
type ResetCodeRepository struct{}

func resetKey(email string) string {
	return fmt.Sprintf("%s:%s", resetCodePrefix, email)
}

func (r *ResetCodeRepository) SetCode(email, code string) error {
	if err := Client.Set(context.Background(), resetKey(email), code, DefaultResetCodeTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *ResetCodeRepository) GetCode(email string) (string, error) {
	code, err := Client.Get(context.Background(), resetKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return code, nil
}

// DeleteCode makes a code single-use.
func (r *ResetCodeRepository) DeleteCode(email string) error {
	return Client.Del(context.Background(), resetKey(email)).Err()
}
