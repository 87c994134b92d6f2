package cache

import (
	"context"
	"time"

	"dapurmanis/engine/internal/pricing"
)

type PricingCache interface {
	Get(ctx context.Context, key string) (*pricing.Result, bool, error)
	Set(ctx context.Context, key string, value *pricing.Result, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopPricingCache struct{}

func (NoopPricingCache) Get(_ context.Context, _ string) (*pricing.Result, bool, error) {
	return nil, false, nil
}

func (NoopPricingCache) Set(_ context.Context, _ string, _ *pricing.Result, _ time.Duration) error {
	return nil
}

func (NoopPricingCache) Delete(_ context.Context, _ string) error {
	return nil
}
