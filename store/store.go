package store

import (
	"io"
	"strconv"
	"sync/atomic"

	"github.com/hupe1980/knntune/internal/conv"
	"github.com/hupe1980/knntune/model"
)

// InvalidPolicy controls how Load reacts to records that cannot be
// converted into samples.
type InvalidPolicy int

const (
	// AbortOnInvalid stops the load at the first invalid record and
	// returns the error. The default.
	AbortOnInvalid InvalidPolicy = iota
	// SkipInvalid drops invalid records and continues loading. Every
	// rejection is reported through the reject handler.
	SkipInvalid
)

// RejectHandler receives every record rejected under SkipInvalid.
type RejectHandler func(row int, err error)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	policy   InvalidPolicy
	onReject RejectHandler
}

// WithInvalidPolicy sets the policy for records that fail conversion.
func WithInvalidPolicy(p InvalidPolicy) LoadOption {
	return func(o *loadOptions) { o.policy = p }
}

// WithRejectHandler sets the callback invoked for every record rejected
// under SkipInvalid.
func WithRejectHandler(h RejectHandler) LoadOption {
	return func(o *loadOptions) { o.onReject = h }
}

// Schema describes how raw records map onto samples: which fields carry
// feature values and which field carries the class label.
type Schema struct {
	Features []string `json:"features"`
	Label    string   `json:"label"`
}

// Dim returns the number of feature columns.
func (s Schema) Dim() int { return len(s.Features) }

// Store is an immutable columnar block of labeled samples.
//
// Feature values for row i occupy features[i*dim : (i+1)*dim]. Labels are
// interned: labels[i] indexes into the classes table. The store is frozen
// after construction, so any number of goroutines may read it concurrently
// without locking. Sample views (KnownSample, TrainingSample,
// TestingSample) hold only a store pointer and a row index.
type Store struct {
	dim      int
	features []float64
	labels   []uint32
	classes  []string
	classIdx map[string]uint32
	schema   Schema
	closer   io.Closer
	closed   atomic.Bool
}

// Load builds a store from raw string records using the given schema.
//
// Each record must carry every schema feature field as a parseable float
// and a non-empty label field. By default the first invalid record aborts
// the whole load with an *ErrInvalidRecord; WithInvalidPolicy(SkipInvalid)
// drops invalid records instead and keeps going.
func Load(records []model.Record, schema Schema, optFns ...LoadOption) (*Store, error) {
	opts := loadOptions{policy: AbortOnInvalid}
	for _, fn := range optFns {
		fn(&opts)
	}

	dim := schema.Dim()
	s := &Store{
		dim:      dim,
		features: make([]float64, 0, len(records)*dim),
		labels:   make([]uint32, 0, len(records)),
		classIdx: make(map[string]uint32),
		schema:   schema,
	}

	row := make([]float64, dim)
	for i, rec := range records {
		if err := convertRecord(rec, schema, i, row); err != nil {
			if opts.policy == AbortOnInvalid {
				return nil, err
			}
			if opts.onReject != nil {
				opts.onReject(i, err)
			}
			continue
		}
		s.features = append(s.features, row...)
		s.labels = append(s.labels, s.internClass(rec[schema.Label]))
	}

	return s, nil
}

// convertRecord parses one raw record into the row buffer.
func convertRecord(rec model.Record, schema Schema, row int, out []float64) error {
	for j, field := range schema.Features {
		raw, ok := rec[field]
		if !ok {
			return &ErrInvalidRecord{Row: row, Field: field, Reason: "missing field"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &ErrInvalidRecord{Row: row, Field: field, Reason: "not a number", Err: err}
		}
		out[j] = v
	}

	label, ok := rec[schema.Label]
	if !ok || label == "" {
		return &ErrInvalidRecord{Row: row, Field: schema.Label, Reason: "missing label"}
	}
	return nil
}

// FromSamples builds a store from already-parsed classified samples.
// All samples must share the same dimensionality.
func FromSamples(samples []model.ClassifiedSample, schema Schema) (*Store, error) {
	dim := schema.Dim()
	s := &Store{
		dim:      dim,
		features: make([]float64, 0, len(samples)*dim),
		labels:   make([]uint32, 0, len(samples)),
		classIdx: make(map[string]uint32),
		schema:   schema,
	}

	for _, sample := range samples {
		if len(sample.Features) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(sample.Features)}
		}
		s.features = append(s.features, sample.Features...)
		s.labels = append(s.labels, s.internClass(sample.Label))
	}

	return s, nil
}

// internClass returns the id for label, assigning the next id on first use.
func (s *Store) internClass(label string) uint32 {
	if id, ok := s.classIdx[label]; ok {
		return id
	}
	id, err := conv.IntToUint32(len(s.classes))
	if err != nil {
		// Class tables are bounded by row count, which is bounded by
		// addressable memory well below MaxUint32 rows of features.
		panic(err)
	}
	s.classIdx[label] = id
	s.classes = append(s.classes, label)
	return id
}

// Len returns the number of samples in the store.
func (s *Store) Len() int { return len(s.labels) }

// Dim returns the number of features per sample.
func (s *Store) Dim() int { return s.dim }

// Schema returns the schema the store was loaded with.
func (s *Store) Schema() Schema { return s.schema }

// Features returns the feature vector of the given row.
// The returned slice aliases the store's columnar block and must be
// treated as read-only.
func (s *Store) Features(row uint32) []float64 {
	i := int(row) * s.dim
	return s.features[i : i+s.dim]
}

// LabelID returns the interned class id of the given row.
func (s *Store) LabelID(row uint32) uint32 { return s.labels[row] }

// Label returns the class label of the given row.
func (s *Store) Label(row uint32) string { return s.classes[s.labels[row]] }

// ClassName returns the label for an interned class id.
func (s *Store) ClassName(id uint32) string { return s.classes[id] }

// ClassID looks up the interned id of a label.
func (s *Store) ClassID(label string) (uint32, bool) {
	id, ok := s.classIdx[label]
	return id, ok
}

// Classes returns the class table in interning order.
// The returned slice must be treated as read-only.
func (s *Store) Classes() []string { return s.classes }

// Sample returns a flyweight view of the given row.
func (s *Store) Sample(row uint32) KnownSample {
	return KnownSample{store: s, row: row}
}

// MemoryBytes reports the approximate heap footprint of the columnar
// block, for memory accounting.
func (s *Store) MemoryBytes() int64 {
	return int64(len(s.features))*8 + int64(len(s.labels))*4
}

// Close releases the backing storage of a snapshot-backed store.
// Close is idempotent. Stores built by Load or FromSamples have no
// backing storage and Close is a no-op for them.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
