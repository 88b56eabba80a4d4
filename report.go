package knntune

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/knntune/blobstore"
	"github.com/hupe1980/knntune/codec"
	"github.com/hupe1980/knntune/tune"
)

// ReportEntry is one trial outcome in serializable form.
type ReportEntry struct {
	K         int     `json:"k"`
	Metric    string  `json:"metric"`
	Quality   float64 `json:"quality"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

// Report is a serializable record of one grid-search run.
type Report struct {
	CreatedAt time.Time     `json:"created_at"`
	Strategy  string        `json:"strategy"`
	Rows      int           `json:"rows"`
	Results   []ReportEntry `json:"results"`
}

// NewReport converts tuning results into a report.
func (t *Tuner) NewReport(results []tune.Result) Report {
	entries := make([]ReportEntry, 0, len(results))
	for _, res := range results {
		entry := ReportEntry{
			K:         res.K,
			Metric:    res.Metric.String(),
			Quality:   res.Quality,
			ElapsedMS: float64(res.Elapsed.Nanoseconds()) / 1e6,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		entries = append(entries, entry)
	}
	return Report{
		CreatedAt: time.Now().UTC(),
		Strategy:  t.opts.strategy.String(),
		Rows:      t.store.Len(),
		Results:   entries,
	}
}

// WriteReport encodes tuning results with the configured codec and stores
// them in a blob store.
func (t *Tuner) WriteReport(ctx context.Context, bs blobstore.BlobStore, name string, results []tune.Result) error {
	data, err := t.opts.codec.Marshal(t.NewReport(results))
	if err != nil {
		return err
	}
	err = bs.Put(ctx, name, data)
	t.opts.logger.LogSnapshot(ctx, name, err)
	return err
}

// ReadReport loads a report from a blob store. codecName selects the codec
// the report was written with (see codec.ByName); empty means the default.
func ReadReport(ctx context.Context, bs blobstore.BlobStore, name, codecName string) (Report, error) {
	var report Report

	c := codec.Default
	if codecName != "" {
		var ok bool
		c, ok = codec.ByName(codecName)
		if !ok {
			return report, fmt.Errorf("unknown codec: %s", codecName)
		}
	}

	blob, err := bs.Open(ctx, name)
	if err != nil {
		return report, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(blob)
	if err != nil {
		return report, err
	}
	if err := c.Unmarshal(data, &report); err != nil {
		return report, err
	}
	return report, nil
}
