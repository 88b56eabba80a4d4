// Package conv provides safe integer conversions and zero-copy slice
// reinterpretation for snapshot decoding.
//
// The slice casts (Float64Slice, Uint32Slice) are the zero-copy path for
// memory-mapped snapshots: the feature and label blocks are read in place
// out of the mapping. They require proper alignment and a little-endian
// host; callers fall back to a copying decode when either check fails.
package conv
