package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:"

// RedisOTPRepository stores each record as JSON under otp:<identifier>.
// Keys outlive the code by Grace so a late submission still reads as expired
// rather than missing; Redis eviction then replaces the janitor.
type RedisOTPRepository struct {
	client *redis.Client
	Grace  time.Duration
	now    func() time.Time
}

func NewRedisOTPRepository(client *redis.Client, grace time.Duration) *RedisOTPRepository {
	return &RedisOTPRepository{client: client, Grace: grace, now: time.Now}
}

func (r *RedisOTPRepository) key(identifier string) string {
	return otpKeyPrefix + identifier
}

func (r *RedisOTPRepository) Upsert(ctx context.Context, record *models.OTPRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ttl := record.ExpiresAt.Add(r.Grace).Sub(r.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return r.client.Set(ctx, r.key(record.Identifier), data, ttl).Err()
}

func (r *RedisOTPRepository) Get(ctx context.Context, identifier string) (*models.OTPRecord, error) {
	data, err := r.client.Get(ctx, r.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var record models.OTPRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RedisOTPRepository) Delete(ctx context.Context, identifier string) error {
	return r.client.Del(ctx, r.key(identifier)).Err()
}

// Consume watches the key so a concurrent overwrite or consume aborts the delete.
func (r *RedisOTPRepository) Consume(ctx context.Context, identifier, code string) (bool, error) {
	key := r.key(identifier)
	consumed := false
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var record models.OTPRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		if record.Code != code {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		consumed = true
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return consumed, err
}

// AddFailedAttempt rewrites the record with KeepTTL so the key's expiry is untouched.
func (r *RedisOTPRepository) AddFailedAttempt(ctx context.Context, identifier, code string) (int, error) {
	key := r.key(identifier)
	attempts := 0
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var record models.OTPRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		if record.Code != code {
			return nil
		}
		record.Attempts++
		updated, err := json.Marshal(record)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		attempts = record.Attempts
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, nil
	}
	return attempts, err
}

// DeleteExpired is a no-op; key TTLs take care of expiry.
func (r *RedisOTPRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
