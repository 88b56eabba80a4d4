// Package tune implements concurrent hyperparameter grid search for the
// k-NN classifier.
//
// A Grid spans neighbor counts and distance metrics; each combination
// becomes one Trial. A Pool fans trials out over a worker pool and fans
// exactly one Result per trial back in, so a hung or failed combination
// is visible in the output rather than silently missing.
package tune
