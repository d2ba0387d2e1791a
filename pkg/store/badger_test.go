package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	assert.True(t, s.InMemory())

	require.NoError(t, s.Put(ctx, "user/1", []byte("alice")))
	got, err := s.Get(ctx, "user/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), got)

	require.NoError(t, s.Delete(ctx, "user/1"))
	_, err = s.Get(ctx, "user/1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "user/missing"))
}

func TestBadgerStore_EmptyKey(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Put(context.Background(), "", []byte("x")))
}

func TestBadgerStore_ListPrefix(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, "progress/u1/b", []byte("2")))
	require.NoError(t, s.Put(ctx, "progress/u1/a", []byte("1")))
	require.NoError(t, s.Put(ctx, "progress/u2/a", []byte("3")))
	require.NoError(t, s.Put(ctx, "session/x", []byte("4")))

	entries, err := s.List(ctx, "progress/u1/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "progress/u1/a", entries[0].Key)
	assert.Equal(t, []byte("1"), entries[0].Value)
	assert.Equal(t, "progress/u1/b", entries[1].Key)

	none, err := s.List(ctx, "nothing/")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBadgerStore_UpdateAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.Put("a", []byte("1")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		if err := tx.Put("a", []byte("1")); err != nil {
			return err
		}
		return tx.Put("b", []byte("2"))
	}))
	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBadgerStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, PutJSON(ctx, s, "counter", record{Name: "c"}))

	const workers = 4
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, func(tx Tx) error {
				var r record
				if err := TxGetJSON(tx, "counter", &r); err != nil {
					return err
				}
				r.Count++
				return TxPutJSON(tx, "counter", r)
			})
		}()
	}
	wg.Wait()

	var r record
	require.NoError(t, GetJSON(ctx, s, "counter", &r))
	assert.GreaterOrEqual(t, r.Count, 1)
	assert.LessOrEqual(t, r.Count, workers)
}

func TestBadgerStore_CanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", []byte("v")), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, PutJSON(ctx, s, "user/1", record{Name: "alice", Count: 3}))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s2, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer s2.Close()

	var r record
	require.NoError(t, GetJSON(ctx, s2, "user/1", &r))
	assert.Equal(t, record{Name: "alice", Count: 3}, r)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, PutJSON(ctx, s, "r/1", record{Name: "one", Count: 1}))
	require.NoError(t, PutJSON(ctx, s, "r/2", record{Name: "two", Count: 2}))
	require.NoError(t, s.Put(ctx, "x/bad", []byte("{")))

	list, err := ListJSON[record](ctx, s, "r/")
	require.NoError(t, err)
	assert.Equal(t, []record{{"one", 1}, {"two", 2}}, list)

	var r record
	assert.ErrorIs(t, GetJSON(ctx, s, "r/3", &r), ErrNotFound)
	assert.Error(t, GetJSON(ctx, s, "x/bad", &r))
	_, err = ListJSON[record](ctx, s, "x/")
	assert.Error(t, err)
}
