package reserve

import (
	"boostlend/core"
	"context"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"
)

// Evicter drops cached reserves once the transaction that saved them commits
type Evicter interface {
	Evict(asset common.Address)
}

// Cache wraps store with a lru cache of reserves keyed by asset. Save does
// not touch the cache, callers Evict after their transaction commits.
func Cache(store core.ReserveStore, exp time.Duration) *CacheReserveStore {
	return &CacheReserveStore{
		ReserveStore: store,
		cache:        gcache.New(256).LRU().Expiration(exp).Build(),
		sf:           &singleflight.Group{},
	}
}

// CacheReserveStore read through reserve cache
type CacheReserveStore struct {
	core.ReserveStore
	cache gcache.Cache
	sf    *singleflight.Group
	// bumped on every eviction, loads started before it are not cached
	gen int64
}

var _ Evicter = (*CacheReserveStore)(nil)

// Evict implements Evicter
func (s *CacheReserveStore) Evict(asset common.Address) {
	atomic.AddInt64(&s.gen, 1)
	s.cache.Remove(asset)
}

func (s *CacheReserveStore) Find(ctx context.Context, asset common.Address) (*core.Reserve, error) {
	if v, err := s.cache.Get(asset); err == nil {
		if r, ok := v.(*core.Reserve); ok {
			return r.Clone(), nil
		}
	}

	v, err, _ := s.sf.Do(asset.Hex(), func() (interface{}, error) {
		gen := atomic.LoadInt64(&s.gen)
		r, err := s.ReserveStore.Find(ctx, asset)
		if err != nil {
			return nil, err
		}

		if atomic.LoadInt64(&s.gen) == gen {
			_ = s.cache.Set(asset, r)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Reserve).Clone(), nil
}
