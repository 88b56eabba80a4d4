package conv

import (
	"fmt"
	"math"
	"unsafe"
)

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// Float64Slice reinterprets b as a []float64 without copying.
// Returns false if b is not 8-byte aligned or its length is not a
// multiple of 8; callers must fall back to a copying decode in that case.
// Only valid on little-endian hosts, which matches the snapshot format.
func Float64Slice(b []byte) ([]float64, bool) {
	if len(b) == 0 {
		return nil, true
	}
	if len(b)%8 != 0 {
		return nil, false
	}
	if uintptr(unsafe.Pointer(&b[0]))%8 != 0 {
		return nil, false
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), len(b)/8), true
}

// Uint32Slice reinterprets b as a []uint32 without copying.
// Same alignment and endianness caveats as Float64Slice.
func Uint32Slice(b []byte) ([]uint32, bool) {
	if len(b) == 0 {
		return nil, true
	}
	if len(b)%4 != 0 {
		return nil, false
	}
	if uintptr(unsafe.Pointer(&b[0]))%4 != 0 {
		return nil, false
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4), true
}
