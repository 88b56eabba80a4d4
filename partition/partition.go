// Package partition splits a sample store into disjoint training and
// testing row sets. Rules are deterministic functions of the store
// contents and the row index, so a split can be reproduced exactly.
package partition

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/knntune/internal/conv"
	"github.com/hupe1980/knntune/store"
)

// Rule decides for each row whether it belongs to the testing set.
// Returning true assigns the row to testing, false to training.
type Rule func(s *store.Store, row uint32) bool

// Positional assigns every n-th row to the testing set (rows where
// row % n == 0). n must be at least 1; n == 1 puts everything in testing.
func Positional(n uint32) Rule {
	if n == 0 {
		n = 1
	}
	return func(_ *store.Store, row uint32) bool {
		return row%n == 0
	}
}

// Hashed assigns roughly one in n rows to the testing set based on an
// FNV-1a hash of the row's features and label, seeded with seed. Unlike
// Positional, the assignment is insensitive to row order: the same sample
// lands in the same set regardless of its position in the input.
func Hashed(n uint32, seed uint64) Rule {
	if n == 0 {
		n = 1
	}
	return func(s *store.Store, row uint32) bool {
		h := fnv.New64a()
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], seed)
		h.Write(buf[:])
		for _, v := range s.Features(row) {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
		// Hash the label text, not the interned id: ids depend on
		// interning order and would make the split order-sensitive.
		h.Write([]byte(s.Label(row)))
		return h.Sum64()%uint64(n) == 0
	}
}

// Split holds the result of partitioning: two disjoint row sets whose
// union covers the whole store.
type Split struct {
	Training *roaring.Bitmap
	Testing  *roaring.Bitmap
}

// Partition applies the rule to every row of the store.
func Partition(s *store.Store, rule Rule) (*Split, error) {
	training := roaring.New()
	testing := roaring.New()

	n, err := conv.IntToUint32(s.Len())
	if err != nil {
		return nil, err
	}

	for row := uint32(0); row < n; row++ {
		if rule(s, row) {
			testing.Add(row)
		} else {
			training.Add(row)
		}
	}

	return &Split{Training: training, Testing: testing}, nil
}

// TrainingRows returns the training rows in ascending order.
func (sp *Split) TrainingRows() []uint32 { return sp.Training.ToArray() }

// TestingRows returns the testing rows in ascending order.
func (sp *Split) TestingRows() []uint32 { return sp.Testing.ToArray() }

// TrainingLen returns the number of training rows.
func (sp *Split) TrainingLen() int { return int(sp.Training.GetCardinality()) }

// TestingLen returns the number of testing rows.
func (sp *Split) TestingLen() int { return int(sp.Testing.GetCardinality()) }
