package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"barberhive/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestLocker(t *testing.T, ttl, wait time.Duration) (*RedisShopLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisShopLocker(client, ttl, wait), mr
}

func TestRedisShopLockerExcludesConcurrentHolders(t *testing.T) {
	locker, _ := newTestLocker(t, 5*time.Second, 2*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "shop-1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("max concurrent holders=%d, want 1", maxInside)
	}
}

func TestRedisShopLockerTimesOut(t *testing.T) {
	locker, _ := newTestLocker(t, 5*time.Second, 100*time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "shop-1")
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	defer unlock()

	_, err = locker.Lock(context.Background(), "shop-1")
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("second Lock err=%v, want ErrLockTimeout", err)
	}

	// Other shops are independent.
	unlockOther, err := locker.Lock(context.Background(), "shop-2")
	if err != nil {
		t.Fatalf("Lock other shop: %v", err)
	}
	unlockOther()
}

func TestRedisShopLockerReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newTestLocker(t, time.Second, time.Second)

	unlock, err := locker.Lock(context.Background(), "shop-1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	// Simulate TTL expiry followed by another holder taking the lock.
	mr.FastForward(2 * time.Second)
	if err := mr.Set(lockKeyPrefix+"shop-1", "someone-else"); err != nil {
		t.Fatalf("seed foreign lock: %v", err)
	}

	unlock()

	got, err := mr.Get(lockKeyPrefix + "shop-1")
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock value=%q err=%v, want it untouched", got, err)
	}
}
