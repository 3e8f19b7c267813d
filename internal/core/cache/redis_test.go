package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoad(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	var loads int32
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&loads, 1)
		return []byte("v1"), nil
	}

	b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))

	b, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	mr.FastForward(2 * time.Minute)
	_, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

func TestGetOrLoad_ErrorNotCached(t *testing.T) {
	c, mr := newCache(t)
	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_Concurrent(t *testing.T) {
	c, _ := newCache(t)
	var loads int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
				atomic.AddInt32(&loads, 1)
				<-release
				return []byte("v"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "v", string(b))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	// 同一 key 的并发回源被合并
	assert.Less(t, atomic.LoadInt32(&loads), int32(8))
}

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetOrLoadJSONAndDelete(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	v, err := GetOrLoadJSON(c, ctx, "item:1", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "a", Count: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, &item{Name: "a", Count: 2}, v)

	raw, err := mr.Get("item:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":2}`, raw)

	require.NoError(t, c.Delete(ctx, "item:1"))
	assert.False(t, mr.Exists("item:1"))
	assert.NoError(t, c.Delete(ctx, "missing"))
	assert.NoError(t, c.Ping(ctx))
}
