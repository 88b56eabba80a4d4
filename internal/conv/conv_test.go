package conv

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	v, err := IntToUint32(42)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	_, err = IntToUint32(-1)
	assert.Error(t, err)
}

func TestUint64ToInt(t *testing.T) {
	v, err := Uint64ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.Error(t, err)
}

func TestFloat64Slice(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		want := []float64{1.5, -2.25, 3.125, 0}
		buf := make([]byte, len(want)*8)
		for i, v := range want {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}

		got, ok := Float64Slice(buf)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("Empty", func(t *testing.T) {
		got, ok := Float64Slice(nil)
		assert.True(t, ok)
		assert.Nil(t, got)
	})

	t.Run("BadLength", func(t *testing.T) {
		_, ok := Float64Slice(make([]byte, 7))
		assert.False(t, ok)
	})
}

func TestUint32Slice(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		want := []uint32{0, 1, 2, math.MaxUint32}
		buf := make([]byte, len(want)*4)
		for i, v := range want {
			binary.LittleEndian.PutUint32(buf[i*4:], v)
		}

		got, ok := Uint32Slice(buf)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("BadLength", func(t *testing.T) {
		_, ok := Uint32Slice(make([]byte, 6))
		assert.False(t, ok)
	})
}
