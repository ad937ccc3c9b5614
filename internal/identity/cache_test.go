package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, ok := c.entries[key]
	return raw, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.entries[key] = value
	c.sets++
	return nil
}

type fakeSource struct {
	page  Page
	calls int
}

func (s *fakeSource) List(_ context.Context, _, _ int) (Page, error) {
	s.calls++
	return s.page, nil
}

func (s *fakeSource) GetByID(_ context.Context, externalID string) (Record, error) {
	for _, record := range s.page.Records {
		if record.ExternalID == externalID {
			return record, nil
		}
	}
	return Record{}, nil
}

func TestCachedSource(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("second list is served from cache", func(t *testing.T) {
		source := &fakeSource{page: Page{
			Records: []Record{{ExternalID: "u1", FullName: "Ann Lee"}},
			Total:   1,
		}}
		cached := NewCachedSource(source, newFakeCache(), time.Hour, discard)

		first, err := cached.List(context.Background(), 1, 20)
		require.NoError(t, err)
		second, err := cached.List(context.Background(), 1, 20)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("distinct page and limit use distinct keys", func(t *testing.T) {
		source := &fakeSource{page: Page{Total: 0}}
		cache := newFakeCache()
		cached := NewCachedSource(source, cache, time.Hour, discard)

		_, err := cached.List(context.Background(), 1, 20)
		require.NoError(t, err)
		_, err = cached.List(context.Background(), 2, 20)
		require.NoError(t, err)
		_, err = cached.List(context.Background(), 1, 10)
		require.NoError(t, err)

		assert.Equal(t, 3, source.calls)
	})

	t.Run("degraded pages are not cached", func(t *testing.T) {
		source := &fakeSource{page: Page{Degraded: true}}
		cache := newFakeCache()
		cached := NewCachedSource(source, cache, time.Hour, discard)

		_, err := cached.List(context.Background(), 1, 20)
		require.NoError(t, err)
		_, err = cached.List(context.Background(), 1, 20)
		require.NoError(t, err)

		assert.Zero(t, cache.sets)
		assert.Equal(t, 2, source.calls)
	})

	t.Run("corrupt cache entry falls through to source", func(t *testing.T) {
		source := &fakeSource{page: Page{Total: 1, Records: []Record{{ExternalID: "u1"}}}}
		cache := newFakeCache()
		cache.entries[pageKey(1, 20)] = []byte("{corrupt")
		cached := NewCachedSource(source, cache, time.Hour, discard)

		page, err := cached.List(context.Background(), 1, 20)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("single record lookups bypass the cache", func(t *testing.T) {
		source := &fakeSource{page: Page{Records: []Record{{ExternalID: "u1", FullName: "Ann Lee"}}}}
		cached := NewCachedSource(source, newFakeCache(), time.Hour, discard)

		record, err := cached.GetByID(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ann Lee", record.FullName)
	})
}
