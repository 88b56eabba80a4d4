package store

import "github.com/hupe1980/knntune/model"

// KnownSample is a flyweight view of one sample whose true class is known.
// It holds only a store pointer and a row index; feature data stays in the
// store's shared columnar block.
type KnownSample struct {
	store *Store
	row   uint32
}

// Features returns the sample's feature vector.
// The slice aliases the store and must be treated as read-only.
func (k KnownSample) Features() []float64 { return k.store.Features(k.row) }

// Label returns the sample's true class label.
func (k KnownSample) Label() string { return k.store.Label(k.row) }

// LabelID returns the sample's interned class id.
func (k KnownSample) LabelID() uint32 { return k.store.LabelID(k.row) }

// Row returns the sample's position in the store.
func (k KnownSample) Row() uint32 { return k.row }

// Classified copies the view into a standalone classified sample.
func (k KnownSample) Classified() model.ClassifiedSample {
	return model.ClassifiedSample{
		Features: model.Vector(k.Features()).Clone(),
		Label:    k.Label(),
	}
}

// TrainingSample is a sample used as a nearest-neighbor candidate.
type TrainingSample struct {
	KnownSample
}

// TestingSample is a sample whose true class is known and that additionally
// records the class a classifier assigned to it.
type TestingSample struct {
	KnownSample

	// Classification is the class assigned by the classifier.
	// Empty until the sample has been classified.
	Classification string
}

// Matches reports whether the assigned class equals the true class.
func (t TestingSample) Matches() bool {
	return t.Classification != "" && t.Classification == t.Label()
}
