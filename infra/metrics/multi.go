package metrics

import (
	"errors"

	coremetrics "github.com/ConanSherry4869/voltage-control/core/metrics"
)

// MultiSink fans each tick record out to several sinks. Errors are collected so
// one failing exporter does not hide the others.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordTick implements coremetrics.Sink.
func (m *MultiSink) RecordTick(rec coremetrics.TickRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordTick(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
