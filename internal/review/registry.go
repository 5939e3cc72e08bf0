package review

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry keeps one review session per browser session. Sessions expire after
// ttl without use.
type Registry struct {
	mu      sync.Mutex
	cache   *cache.Cache
	ttl     time.Duration
	factory func() *Session
}

// NewRegistry creates a registry that builds new sessions with factory.
func NewRegistry(ttl time.Duration, factory func() *Session) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		cache:   cache.New(ttl, ttl/4),
		ttl:     ttl,
		factory: factory,
	}
}

// Get returns the session for key, creating it if needed. The returned bool is
// true when the session was just created and has not been loaded yet.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(key); found {
		s := x.(*Session)
		// Sliding expiration.
		r.cache.Set(key, s, cache.DefaultExpiration)
		return s, false
	}

	s := r.factory()
	r.cache.Set(key, s, cache.DefaultExpiration)
	return s, true
}

// Open returns the session for key, loading the queue the first time it is
// used. The session is returned even when that first load fails.
func (r *Registry) Open(ctx context.Context, key string) (*Session, error) {
	s, fresh := r.Get(key)
	if fresh {
		if err := s.Load(ctx); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Drop forgets the session for key.
func (r *Registry) Drop(key string) {
	r.cache.Delete(key)
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
