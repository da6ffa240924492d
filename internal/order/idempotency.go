package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equipment-backend/internal/apperror"
	"equipment-backend/internal/logging"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idemResultTTL = 24 * time.Hour
	idemLockTTL   = 30 * time.Second
)

// Idempotency: aynı Idempotency-Key ile tekrarlanan POST /orders ilk siparişi döndürür
type Idempotency struct {
	rdb    *redis.Client
	locker *redislock.Client
	retry  redislock.RetryStrategy
}

func NewIdempotency(rdb *redis.Client) *Idempotency {
	return &Idempotency{
		rdb:    rdb,
		locker: redislock.New(rdb),
		retry:  redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 25),
	}
}

func resultKey(user uuid.UUID, key string) string {
	return fmt.Sprintf("order-idem:%s:%s", user, key)
}

func lockKey(user uuid.UUID, key string) string {
	return fmt.Sprintf("order-idem-lock:%s:%s", user, key)
}

// Do: anahtar için kayıtlı sipariş varsa onu döner (replayed=true), yoksa create'i kilit altında çalıştırır
func (i *Idempotency) Do(ctx context.Context, user uuid.UUID, key string, create func() (uuid.UUID, error)) (id uuid.UUID, replayed bool, err error) {
	if id, ok, err := i.lookup(ctx, user, key); err != nil || ok {
		return id, ok, err
	}

	lock, err := i.locker.Obtain(ctx, lockKey(user, key), idemLockTTL, &redislock.Options{
		RetryStrategy: i.retry,
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return uuid.Nil, false, apperror.Conflict("A request with this Idempotency-Key is still in progress", err)
	}
	if err != nil {
		return uuid.Nil, false, apperror.Storage("Idempotency store unavailable", err)
	}
	defer lock.Release(context.WithoutCancel(ctx))

	// kilidi beklerken diğer istek bitirmiş olabilir
	if id, ok, err := i.lookup(ctx, user, key); err != nil || ok {
		return id, ok, err
	}

	id, err = create()
	if err != nil {
		return uuid.Nil, false, err
	}
	// sipariş commit edildi, sonucu saklayamamak isteği başarısız yapmaz
	if err := i.rdb.Set(ctx, resultKey(user, key), id.String(), idemResultTTL).Err(); err != nil {
		logging.LogError("order", "Idempotency.Do", "store result", key, err)
	}
	return id, false, nil
}

func (i *Idempotency) lookup(ctx context.Context, user uuid.UUID, key string) (uuid.UUID, bool, error) {
	val, err := i.rdb.Get(ctx, resultKey(user, key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, apperror.Storage("Idempotency store unavailable", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}
