// Package model holds the shared value types exchanged between the
// knntune packages and their callers.
package model

// Vector is a fixed-size numeric feature vector. A bare Vector with no
// label is an unknown sample submitted for live classification.
// Vectors compared by a distance function must have the same length;
// this is the caller's responsibility.
type Vector []float64

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Record is one raw, field-labeled input record as produced by an
// external reader (CSV, JSON, ...). Field values are unparsed strings;
// numeric conversion happens when a store is loaded.
type Record map[string]string

// ClassifiedSample pairs a query vector with the label assigned by the
// classifier. It is an output-only projection and is never mutated
// after construction.
type ClassifiedSample struct {
	Features Vector
	Label    string
}
