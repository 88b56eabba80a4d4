// Package store implements the immutable flyweight sample store.
//
// Samples live once in a columnar block: a flat []float64 of feature
// values and a []uint32 of interned class ids. Sample views hold only a
// store pointer and a row index, so passing samples around costs two
// words regardless of dimensionality. The store is frozen after
// construction and safe for lock-free concurrent reads.
//
// Stores can be serialized into a versioned snapshot format and opened
// via mmap, in which case uncompressed feature blocks are decoded
// zero-copy and shared between processes mapping the same file.
package store
