package store

import (
	"context"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knntune/blobstore"
)

func assertStoresEqual(t *testing.T, want, got *Store) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	require.Equal(t, want.Dim(), got.Dim())
	assert.Equal(t, want.Classes(), got.Classes())
	assert.Equal(t, want.Schema(), got.Schema())
	for row := uint32(0); row < uint32(want.Len()); row++ {
		assert.Equal(t, want.Features(row), got.Features(row))
		assert.Equal(t, want.Label(row), got.Label(row))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := Load(testRecords(), testSchema)
	require.NoError(t, err)
	defer s.Close()

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(compressionName(c), func(t *testing.T) {
			data, err := s.Snapshot(c)
			require.NoError(t, err)

			got, err := Decode(data, nil)
			require.NoError(t, err)
			defer got.Close()

			assertStoresEqual(t, s, got)
		})
	}
}

func compressionName(c Compression) string {
	switch c {
	case CompressionLZ4:
		return "LZ4"
	case CompressionZSTD:
		return "ZSTD"
	default:
		return "None"
	}
}

func TestSnapshotFile(t *testing.T) {
	s, err := Load(testRecords(), testSchema)
	require.NoError(t, err)
	defer s.Close()

	path := filepath.Join(t.TempDir(), "samples.knn")
	require.NoError(t, s.WriteSnapshot(path, CompressionNone))

	got, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer got.Close()

	assertStoresEqual(t, s, got)
}

func TestSnapshotFileCompressed(t *testing.T) {
	s, err := Load(testRecords(), testSchema)
	require.NoError(t, err)
	defer s.Close()

	path := filepath.Join(t.TempDir(), "samples.knn")
	require.NoError(t, s.WriteSnapshot(path, CompressionZSTD))

	got, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer got.Close()

	assertStoresEqual(t, s, got)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	s, err := Load(testRecords(), testSchema)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Snapshot(CompressionNone)
	require.NoError(t, err)

	t.Run("BadMagic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		copy(bad, "XXXX")
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("BadVersion", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] = 99
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Decode(data[:len(data)-8], nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("TooShort", func(t *testing.T) {
		_, err := Decode(data[:4], nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("OversizedRowCount", func(t *testing.T) {
		// rows*dim*8 overflows int; the payload bound must catch it
		// before the size math runs.
		meta := []byte(`{"rows":576460752303423488,"dim":2,"classes":["a"]}`)
		bad := craftSnapshot(CompressionNone, meta, make([]byte, 16))
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("OversizedDim", func(t *testing.T) {
		meta := []byte(`{"rows":1,"dim":4611686018427387904,"classes":["a"]}`)
		bad := craftSnapshot(CompressionNone, meta, make([]byte, 16))
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("BlockUncompressedSizeWrap", func(t *testing.T) {
		// blockHeaderSize + MaxUint32 wraps in 32-bit arithmetic.
		block := make([]byte, blockHeaderSize+4)
		binary.LittleEndian.PutUint32(block[0:], math.MaxUint32)
		binary.LittleEndian.PutUint32(block[4:], 0)
		meta := []byte(`{"rows":0,"dim":4,"classes":[]}`)
		bad := craftSnapshot(CompressionLZ4, meta, block)
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})

	t.Run("BlockCompressedSizeWrap", func(t *testing.T) {
		block := make([]byte, blockHeaderSize+4)
		binary.LittleEndian.PutUint32(block[0:], 16)
		binary.LittleEndian.PutUint32(block[4:], math.MaxUint32)
		meta := []byte(`{"rows":0,"dim":4,"classes":[]}`)
		bad := craftSnapshot(CompressionLZ4, meta, block)
		_, err := Decode(bad, nil)
		var corrupted *ErrSnapshotCorrupted
		require.ErrorAs(t, err, &corrupted)
	})
}

// craftSnapshot assembles snapshot bytes around an arbitrary meta block,
// bypassing Snapshot's well-formed encoding.
func craftSnapshot(c Compression, meta, payload []byte) []byte {
	payloadOff := align8(headerSize + len(meta))
	buf := make([]byte, payloadOff+len(payload))
	copy(buf[0:4], snapshotMagic)
	buf[4] = snapshotVersion
	buf[5] = byte(c)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(meta)))
	copy(buf[headerSize:], meta)
	copy(buf[payloadOff:], payload)
	return buf
}

func TestSaveToOpenFrom(t *testing.T) {
	s, err := Load(testRecords(), testSchema)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	t.Run("MemoryStore", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		require.NoError(t, s.SaveTo(ctx, bs, "snap", CompressionLZ4))

		got, err := OpenFrom(ctx, bs, "snap")
		require.NoError(t, err)
		defer got.Close()

		assertStoresEqual(t, s, got)
	})

	t.Run("LocalStore", func(t *testing.T) {
		bs := blobstore.NewLocalStore(t.TempDir())
		require.NoError(t, s.SaveTo(ctx, bs, "snap", CompressionNone))

		got, err := OpenFrom(ctx, bs, "snap")
		require.NoError(t, err)
		defer got.Close()

		assertStoresEqual(t, s, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		bs := blobstore.NewMemoryStore()
		_, err := OpenFrom(ctx, bs, "missing")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func TestSnapshotEmptyStore(t *testing.T) {
	s, err := Load(nil, testSchema)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Snapshot(CompressionNone)
	require.NoError(t, err)

	got, err := Decode(data, nil)
	require.NoError(t, err)
	defer got.Close()

	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 4, got.Dim())
}
