package usecase_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/usecase"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	a := usecase.CacheKey("content", "template", types.StyleDirect)
	b := usecase.CacheKey("content", "template", types.StyleDirect)
	gt.Value(t, a).Equal(b)
	gt.Value(t, a).Equal("content:template:direct")

	c := usecase.CacheKey("content", "template", types.StyleGentle)
	gt.Value(t, a).NotEqual(c)
}

func TestCacheGetSet(t *testing.T) {
	clock := newFakeClock()
	cache := usecase.NewAnalysisCache(time.Hour, 10, clock.Now)

	_, ok := cache.Get("missing")
	gt.Bool(t, ok).False()

	cache.Set("key", "value")
	got, ok := cache.Get("key")
	gt.Bool(t, ok).True()
	gt.Value(t, got).Equal("value")
	gt.Value(t, cache.Size()).Equal(1)
}

func TestCacheTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := usecase.NewAnalysisCache(time.Hour, 10, clock.Now)

	cache.Set("key", "value")

	clock.Advance(time.Hour)
	_, ok := cache.Get("key")
	gt.Bool(t, ok).True()

	clock.Advance(time.Second)
	_, ok = cache.Get("key")
	gt.Bool(t, ok).False()

	// Expired entry is dropped by the failed read
	gt.Value(t, cache.Size()).Equal(0)
}

func TestCacheEvictsOldestOnInsert(t *testing.T) {
	clock := newFakeClock()
	cache := usecase.NewAnalysisCache(time.Hour, 3, clock.Now)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), "value")
		clock.Advance(time.Minute)
	}
	gt.Value(t, cache.Size()).Equal(3)

	// Reading the oldest entry does not refresh its eviction priority
	_, ok := cache.Get("key-0")
	gt.Bool(t, ok).True()

	cache.Set("key-3", "value")
	gt.Value(t, cache.Size()).Equal(3)

	_, ok = cache.Get("key-0")
	gt.Bool(t, ok).False()
	_, ok = cache.Get("key-1")
	gt.Bool(t, ok).True()
	_, ok = cache.Get("key-3")
	gt.Bool(t, ok).True()
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	cache := usecase.NewAnalysisCache(time.Hour, 2, clock.Now)

	cache.Set("a", "1")
	clock.Advance(time.Minute)
	cache.Set("b", "2")
	clock.Advance(time.Minute)

	// Updating an existing key must not trigger eviction
	cache.Set("a", "updated")
	gt.Value(t, cache.Size()).Equal(2)

	got, ok := cache.Get("b")
	gt.Bool(t, ok).True()
	gt.Value(t, got).Equal("2")
	got, ok = cache.Get("a")
	gt.Bool(t, ok).True()
	gt.Value(t, got).Equal("updated")
}

func TestCacheClear(t *testing.T) {
	clock := newFakeClock()
	cache := usecase.NewAnalysisCache(time.Hour, 10, clock.Now)

	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Clear()

	gt.Value(t, cache.Size()).Equal(0)
	_, ok := cache.Get("a")
	gt.Bool(t, ok).False()
}

func TestCacheTTLAccessor(t *testing.T) {
	cache := usecase.NewAnalysisCache(30*time.Minute, 10, nil)
	gt.Value(t, cache.TTL()).Equal(30 * time.Minute)
}
