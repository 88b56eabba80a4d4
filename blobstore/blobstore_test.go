package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlobStore(t *testing.T, bs BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutOpenRead", func(t *testing.T) {
		data := []byte("columnar sample block")
		require.NoError(t, bs.Put(ctx, "snapshots/a.knn", data))

		blob, err := bs.Open(ctx, "snapshots/a.knn")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(len(data)), blob.Size())

		got, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("ReadAt", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "ranged", []byte("0123456789")))

		blob, err := bs.Open(ctx, "ranged")
		require.NoError(t, err)
		defer blob.Close()

		buf := make([]byte, 3)
		n, err := blob.ReadAt(buf, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []byte("456"), buf)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "reports/r1.json", []byte("{}")))
		require.NoError(t, bs.Put(ctx, "reports/r2.json", []byte("{}")))

		names, err := bs.List(ctx, "reports/")
		require.NoError(t, err)
		assert.Equal(t, []string{"reports/r1.json", "reports/r2.json"}, names)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "v", []byte("one")))
		require.NoError(t, bs.Put(ctx, "v", []byte("two")))

		blob, err := bs.Open(ctx, "v")
		require.NoError(t, err)
		defer blob.Close()

		got, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "gone", []byte("x")))
		require.NoError(t, bs.Delete(ctx, "gone"))

		_, err := bs.Open(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is not an error
		assert.NoError(t, bs.Delete(ctx, "gone"))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := bs.Open(ctx, "never-written")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	testBlobStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testBlobStore(t, NewLocalStore(t.TempDir()))
}

func TestLocalStoreMappable(t *testing.T) {
	ctx := context.Background()
	bs := NewLocalStore(t.TempDir())

	data := []byte("mmap-backed blob")
	require.NoError(t, bs.Put(ctx, "m", data))

	blob, err := bs.Open(ctx, "m")
	require.NoError(t, err)
	defer blob.Close()

	m, ok := blob.(Mappable)
	require.True(t, ok)

	got, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStoreListEmptyRoot(t *testing.T) {
	bs := NewLocalStore(t.TempDir())
	names, err := bs.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
