package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseBasic(t *testing.T) {
	var writeBacks int32
	c := New[int, string]("test", 0,
		func(key int) (string, error) { return "value", nil },
		func(key int, value string) { atomic.AddInt32(&writeBacks, 1) },
	)

	v, err := c.Acquire(1)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, c.Len())

	c.Release(1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&writeBacks))
	assert.Equal(t, 0, c.Len())
}

func TestAcquireRefcounting(t *testing.T) {
	var loads int32
	c := New[int, int]("test", 0,
		func(key int) (int, error) { atomic.AddInt32(&loads, 1); return key * 2, nil },
		func(key int, value int) {},
	)

	c.Acquire(5)
	c.Acquire(5)
	assert.Equal(t, int32(1), loads, "second acquire should hit cache")
	c.Release(5)
	assert.Equal(t, 1, c.Len(), "want 1 after one release of two holders")
	c.Release(5)
	assert.Equal(t, 0, c.Len(), "want 0 after both released")
}

func TestCacheFull(t *testing.T) {
	c := New[int, int]("test", 1,
		func(key int) (int, error) { return key, nil },
		func(key int, value int) {},
	)

	_, err := c.Acquire(1)
	require.NoError(t, err)
	_, err = c.Acquire(2)
	assert.True(t, errIsCacheFull(err), "want ErrCacheFull, got %v", err)
}

func errIsCacheFull(err error) bool {
	de, ok := err.(*dberrors.Error)
	return ok && de.Err == dberrors.ErrCacheFull
}

func TestSingleFlightLoad(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	c := New[int, int]("test", 0,
		func(key int) (int, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return key, nil
		},
		func(key int, value int) {},
	)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Acquire(42)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads, "concurrent acquires should single-flight")
}
