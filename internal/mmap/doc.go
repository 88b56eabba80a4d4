// Package mmap provides read-only memory mapping of snapshot files.
//
// A snapshot mapped here is shared between processes: every worker process
// that maps the same file reads one physical copy of the data, which is the
// zero-copy backing for the flyweight sample store.
package mmap
