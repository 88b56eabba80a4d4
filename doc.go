// Package knntune is a k-nearest-neighbor classification engine with a
// concurrent hyperparameter grid-search tuner.
//
// Samples live in an immutable flyweight store: one columnar block of
// feature values plus interned class labels, shared lock-free by every
// concurrent trial. A partition rule splits the store into training and
// testing rows; the tuner then evaluates the cross-product of neighbor
// counts and distance metrics, one trial per combination, and reports the
// classification quality of each.
//
// Basic usage:
//
//	s, err := store.Load(records, store.Schema{
//	    Features: []string{"sepal_length", "sepal_width", "petal_length", "petal_width"},
//	    Label:    "species",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tuner, err := knntune.New(s, knntune.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tuner.Close()
//
//	if err := tuner.Partition(partition.Positional(5)); err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := tuner.Tune(ctx, tune.KRange(1, 10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range results {
//	    fmt.Printf("k=%d metric=%s quality=%.3f\n", res.K, res.Metric, res.Quality)
//	}
//
// Stores can be serialized into snapshot files and opened via mmap, in
// which case the sample block is shared zero-copy between processes.
package knntune
