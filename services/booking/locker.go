package booking

import (
	"context"
	"sync"
)

// LocalShopLocker is an in-process ShopLocker for a single server instance.
type LocalShopLocker struct {
	mu    sync.Mutex
	shops map[string]chan struct{}
}

func NewLocalShopLocker() *LocalShopLocker {
	return &LocalShopLocker{shops: make(map[string]chan struct{})}
}

func (l *LocalShopLocker) Lock(ctx context.Context, shopID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.shops[shopID]
	if !ok {
		sem = make(chan struct{}, 1)
		l.shops[shopID] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-sem }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
