package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// CacheKey ключ политики в redis
const CacheKey = "booking:policy"

// DefaultProvider отдаёт политику по умолчанию
type DefaultProvider struct{}

func (DefaultProvider) Policy(ctx context.Context) (domain.BookingPolicy, error) {
	return domain.DefaultBookingPolicy(), nil
}

// PersistedProvider накладывает строки platform_config на значения по умолчанию.
// Некорректное значение ключа игнорируется и остаётся значение по умолчанию.
type PersistedProvider struct {
	repo   ConfigRepository
	logger Logger
}

// NewPersistedProvider создает провайдер, читающий политику из БД
func NewPersistedProvider(repo ConfigRepository, logger Logger) *PersistedProvider {
	return &PersistedProvider{repo: repo, logger: logger}
}

func (p *PersistedProvider) Policy(ctx context.Context) (domain.BookingPolicy, error) {
	values, err := p.repo.GetValues(ctx, domain.PolicyKeys)
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("%w: Policy - repository error: %w", ErrInternal, err)
	}
	return p.overlay(values), nil
}

func (p *PersistedProvider) overlay(values map[string]string) domain.BookingPolicy {
	policy := domain.DefaultBookingPolicy()
	for _, key := range domain.PolicyKeys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		candidate := policy
		if err := candidate.Set(key, raw); err != nil {
			p.logger.Warn("Policy: ignoring malformed value key=%s: %v", key, err)
			continue
		}
		if err := candidate.Validate(); err != nil {
			p.logger.Warn("Policy: ignoring out of range value key=%s value=%s: %v", key, raw, err)
			continue
		}
		policy = candidate
	}
	return policy
}

// CachedProvider читает политику через redis с ограниченным TTL.
// Ошибки redis не мешают работе: политика читается из следующего провайдера.
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger Logger
}

// NewCachedProvider создает провайдер с кэшем в redis
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (p *CachedProvider) Policy(ctx context.Context) (domain.BookingPolicy, error) {
	raw, err := p.cache.Get(ctx, CacheKey).Bytes()
	switch {
	case err == nil:
		var values map[string]string
		if jsonErr := json.Unmarshal(raw, &values); jsonErr == nil {
			if policy, ok := fromValues(values); ok {
				return policy, nil
			}
		}
		p.logger.Warn("Policy: dropping unreadable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		p.logger.Warn("Policy: cache get failed: %v", err)
	}

	policy, err := p.next.Policy(ctx)
	if err != nil {
		return domain.BookingPolicy{}, err
	}

	data, err := json.Marshal(policy.Values())
	if err != nil {
		return policy, nil
	}
	if err := p.cache.Set(ctx, CacheKey, data, p.ttl).Err(); err != nil {
		p.logger.Warn("Policy: cache set failed: %v", err)
	}
	return policy, nil
}

// Invalidate удаляет политику из кэша
func (p *CachedProvider) Invalidate(ctx context.Context) {
	if err := p.cache.Del(ctx, CacheKey).Err(); err != nil {
		p.logger.Warn("Policy: cache invalidate failed: %v", err)
	}
}

func fromValues(values map[string]string) (domain.BookingPolicy, bool) {
	policy := domain.DefaultBookingPolicy()
	for _, key := range domain.PolicyKeys {
		raw, ok := values[key]
		if !ok {
			return domain.BookingPolicy{}, false
		}
		if err := policy.Set(key, raw); err != nil {
			return domain.BookingPolicy{}, false
		}
	}
	return policy, policy.Validate() == nil
}
