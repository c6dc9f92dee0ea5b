package license

import (
	"context"
	"math/big"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// termsCache memoizes GetLicenseTerms responses. Registered terms are
// immutable on chain, so cached records never go stale; TTL exists for
// callers that want bounded memory residency anyway.
type termsCache struct {
	cache gcache.Cache
	group singleflight.Group
	ttl   time.Duration
}

func newTermsCache(size int, ttl time.Duration) *termsCache {
	return &termsCache{
		cache: gcache.New(size).LRU().Build(),
		ttl:   ttl,
	}
}

func (tc *termsCache) get(ctx context.Context, id *big.Int, fetch func(context.Context, *big.Int) (*LicenseTerms, error)) (*LicenseTerms, error) {
	key := id.String()

	if v, err := tc.cache.Get(key); err == nil {
		if terms, ok := v.(*LicenseTerms); ok {
			return terms, nil
		}
	}

	v, err, _ := tc.group.Do(key, func() (any, error) {
		terms, err := fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if tc.ttl > 0 {
			_ = tc.cache.SetWithExpire(key, terms, tc.ttl)
		} else {
			_ = tc.cache.Set(key, terms)
		}
		return terms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LicenseTerms), nil
}
