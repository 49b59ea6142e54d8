package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetCachesOnSecondCall(t *testing.T) {
	loads := 0
	mgr := NewManager[int](
		func(key string) (int, error) { loads++; return len(key), nil },
		func(int) {},
		false,
	)

	h1, err := mgr.Get("abc")
	require.NoError(t, err)
	h2, err := mgr.Get("abc")
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, int32(2), mgr.refcountFor("abc"))

	v, err := h1.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	h1.Release()
	h2.Release()
}

func TestManagerLoadFailureLeavesCacheUntouched(t *testing.T) {
	wantErr := errors.New("boom")
	mgr := NewManager[int](
		func(key string) (int, error) { return 0, wantErr },
		func(int) {},
		false,
	)

	h, err := mgr.Get("missing")
	assert.Nil(t, h)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing", loadErr.Key)
	assert.ErrorIs(t, err, wantErr)

	assert.False(t, mgr.IsCached("missing"))
}

func TestManagerDeferredUnloadWaitsForCleanup(t *testing.T) {
	unloaded := 0
	mgr := NewManager[int](
		func(key string) (int, error) { return 1, nil },
		func(int) { unloaded++ },
		false,
	)

	h, err := mgr.Get("k")
	require.NoError(t, err)
	h.Release()

	assert.True(t, mgr.IsCached("k"), "deferred unload keeps the entry cached at refcount 0")
	assert.Equal(t, 0, unloaded)

	purged := mgr.Cleanup()
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, unloaded)
	assert.False(t, mgr.IsCached("k"))
}

func TestManagerImmediateUnloadFiresOnZeroRefcount(t *testing.T) {
	unloaded := 0
	mgr := NewManager[int](
		func(key string) (int, error) { return 1, nil },
		func(int) { unloaded++ },
		true,
	)

	h, err := mgr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 0, unloaded)

	h.Release()
	assert.Equal(t, 1, unloaded)
	assert.False(t, mgr.IsCached("k"))
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	unloaded := 0
	mgr := NewManager[int](
		func(key string) (int, error) { return 1, nil },
		func(int) { unloaded++ },
		true,
	)

	h, err := mgr.Get("k")
	require.NoError(t, err)

	h.Release()
	h.Release()
	h.Release()

	assert.Equal(t, 1, unloaded, "a double Release must not double-decrement the refcount")
}

func TestHandleGetAfterInvalidationReturnsInvalidError(t *testing.T) {
	mgr := NewManager[int](
		func(key string) (int, error) { return 1, nil },
		func(int) {},
		true,
	)

	h, err := mgr.Get("k")
	require.NoError(t, err)
	h.Release() // immediate unload invalidates the entry at refcount 0

	_, err = h.Get()
	var invalidErr *InvalidError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "k", invalidErr.Key)
}

func TestHandleAcquireSharesTheSameEntry(t *testing.T) {
	loads := 0
	mgr := NewManager[int](
		func(key string) (int, error) { loads++; return 1, nil },
		func(int) {},
		false,
	)

	h1, err := mgr.Get("k")
	require.NoError(t, err)
	h2, err := h1.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, int32(2), mgr.refcountFor("k"))

	h1.Release()
	assert.True(t, mgr.IsCached("k"))
	h2.Release()
}

func TestManagerDisposeUnloadsRegardlessOfRefcount(t *testing.T) {
	unloaded := 0
	mgr := NewManager[int](
		func(key string) (int, error) { return 1, nil },
		func(int) { unloaded++ },
		false,
	)

	h, err := mgr.Get("k")
	require.NoError(t, err)
	_ = h // held open, never released

	mgr.Dispose()
	assert.Equal(t, 1, unloaded)
	assert.False(t, mgr.IsCached("k"))
}
