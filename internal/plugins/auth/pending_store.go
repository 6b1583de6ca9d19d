package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// Redis key prefixes. The miss counter of an email lives beside its record.
const (
	pendingKeyPrefix  = "pending_registration:"
	attemptsKeyPrefix = "pending_registration_misses:"
)

// PendingStore keeps unverified registrations until they are confirmed or
// expire. Keys are per email, so a Save replaces any earlier attempt.
type PendingStore interface {
	Save(ctx context.Context, p *PendingRegistration, ttl time.Duration) error

	// Find returns the pending registration for email only if its session id
	// matches. A superseded or expired attempt is reported as NotFound.
	Find(ctx context.Context, email, sessionID string) (*PendingRegistration, error)
	Delete(ctx context.Context, email string) error

	// RecordMiss counts a wrong code for email and returns the total so far.
	// The counter expires after ttl and is reset by Save and Delete.
	RecordMiss(ctx context.Context, email string, ttl time.Duration) (int, error)
}

type redisPendingStore struct {
	redis *redis.Client
}

// NewPendingStore creates a PendingStore backed by Redis key expiry.
func NewPendingStore(rdb *redis.Client) PendingStore {
	return &redisPendingStore{redis: rdb}
}

func (s *redisPendingStore) Save(ctx context.Context, p *PendingRegistration, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling pending registration: %w", err)
	}
	// A new attempt starts with a clean miss counter.
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, pendingKeyPrefix+p.Email, data, ttl)
	pipe.Del(ctx, attemptsKeyPrefix+p.Email)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing pending registration: %w", err)
	}
	return nil
}

func (s *redisPendingStore) Find(ctx context.Context, email, sessionID string) (*PendingRegistration, error) {
	data, err := s.redis.Get(ctx, pendingKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("pending registration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("reading pending registration: %w", err)
	}

	var p PendingRegistration
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling pending registration: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(p.SessionID), []byte(sessionID)) != 1 {
		return nil, apperror.NewNotFound("pending registration not found")
	}
	return &p, nil
}

func (s *redisPendingStore) Delete(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, pendingKeyPrefix+email, attemptsKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("deleting pending registration: %w", err)
	}
	return nil
}

func (s *redisPendingStore) RecordMiss(ctx context.Context, email string, ttl time.Duration) (int, error) {
	key := attemptsKeyPrefix + email

	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("counting otp miss: %w", err)
	}
	if n == 1 {
		if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("expiring otp miss counter: %w", err)
		}
	}
	return int(n), nil
}
