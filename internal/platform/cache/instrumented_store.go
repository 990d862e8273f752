package cache

import "context"

// Observer receives cache hit/miss events.
type Observer interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

// InstrumentedStore decorates a Store and reports hits and misses.
type InstrumentedStore struct {
	inner Store
	name  string
	obs   Observer
}

var _ Store = (*InstrumentedStore)(nil)

// NewInstrumentedStore wraps inner. A nil observer returns inner unchanged.
func NewInstrumentedStore(inner Store, name string, obs Observer) Store {
	if obs == nil {
		return inner
	}
	return &InstrumentedStore{inner: inner, name: name, obs: obs}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := s.inner.Get(ctx, key)
	if ok {
		s.obs.CacheHit(s.name)
	} else {
		s.obs.CacheMiss(s.name)
	}
	return v, ok
}

func (s *InstrumentedStore) Put(ctx context.Context, key string, value []byte) {
	s.inner.Put(ctx, key, value)
}
