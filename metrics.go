package knntune

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after each sample load.
	// rows is the number of samples loaded, rejected the number of
	// records dropped, err is nil if successful.
	RecordLoad(rows, rejected int, duration time.Duration, err error)

	// RecordTrial is called after each trial completes.
	RecordTrial(k int, duration time.Duration, err error)

	// RecordTune is called after each grid-search run.
	// trials is the number of trials executed, failed the number whose
	// result carries an error.
	RecordTune(trials, failed int, duration time.Duration, err error)

	// RecordClassify is called after each single classification.
	RecordClassify(k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTrial(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordTune(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordClassify(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadRejected       atomic.Int64
	TrialCount         atomic.Int64
	TrialErrors        atomic.Int64
	TrialTotalNanos    atomic.Int64
	TuneCount          atomic.Int64
	TuneErrors         atomic.Int64
	TuneFailedTrials   atomic.Int64
	ClassifyCount      atomic.Int64
	ClassifyErrors     atomic.Int64
	ClassifyTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(rows, rejected int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadRejected.Add(int64(rejected))
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordTrial implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrial(k int, duration time.Duration, err error) {
	b.TrialCount.Add(1)
	b.TrialTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrialErrors.Add(1)
	}
}

// RecordTune implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTune(trials, failed int, duration time.Duration, err error) {
	b.TuneCount.Add(1)
	b.TuneFailedTrials.Add(int64(failed))
	if err != nil {
		b.TuneErrors.Add(1)
	}
}

// RecordClassify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClassify(k int, duration time.Duration, err error) {
	b.ClassifyCount.Add(1)
	b.ClassifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClassifyErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadRejected:     b.LoadRejected.Load(),
		TrialCount:       b.TrialCount.Load(),
		TrialErrors:      b.TrialErrors.Load(),
		TrialAvgNanos:    b.getAvgTrialNanos(),
		TuneCount:        b.TuneCount.Load(),
		TuneErrors:       b.TuneErrors.Load(),
		TuneFailedTrials: b.TuneFailedTrials.Load(),
		ClassifyCount:    b.ClassifyCount.Load(),
		ClassifyErrors:   b.ClassifyErrors.Load(),
		ClassifyAvgNanos: b.getAvgClassifyNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgTrialNanos() int64 {
	count := b.TrialCount.Load()
	if count == 0 {
		return 0
	}
	return b.TrialTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgClassifyNanos() int64 {
	count := b.ClassifyCount.Load()
	if count == 0 {
		return 0
	}
	return b.ClassifyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount        int64
	LoadErrors       int64
	LoadRejected     int64
	TrialCount       int64
	TrialErrors      int64
	TrialAvgNanos    int64
	TuneCount        int64
	TuneErrors       int64
	TuneFailedTrials int64
	ClassifyCount    int64
	ClassifyErrors   int64
	ClassifyAvgNanos int64
}
