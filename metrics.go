package fskit

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRead is called after each read operation.
	// bytes is the number of bytes returned, err is nil if successful.
	RecordRead(bytes int, duration time.Duration, err error)

	// RecordWrite is called after each write operation.
	RecordWrite(bytes int, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordExists is called after each existence check.
	RecordExists(duration time.Duration, err error)

	// RecordList is called after each directory listing.
	// entries is the number of names returned.
	RecordList(entries int, duration time.Duration, err error)

	// RecordStat is called after each stat operation.
	RecordStat(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordWrite(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)     {}
func (NoopMetricsCollector) RecordExists(time.Duration, error)     {}
func (NoopMetricsCollector) RecordList(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordStat(time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount        atomic.Int64
	ReadErrors       atomic.Int64
	ReadBytes        atomic.Int64
	ReadTotalNanos   atomic.Int64
	WriteCount       atomic.Int64
	WriteErrors      atomic.Int64
	WriteBytes       atomic.Int64
	WriteTotalNanos  atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	ExistsCount      atomic.Int64
	ExistsErrors     atomic.Int64
	ListCount        atomic.Int64
	ListErrors       atomic.Int64
	ListTotalEntries atomic.Int64
	StatCount        atomic.Int64
	StatErrors       atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(bytes))
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordExists implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExists(duration time.Duration, err error) {
	b.ExistsCount.Add(1)
	if err != nil {
		b.ExistsErrors.Add(1)
	}
}

// RecordList implements MetricsCollector.
func (b *BasicMetricsCollector) RecordList(entries int, duration time.Duration, err error) {
	b.ListCount.Add(1)
	b.ListTotalEntries.Add(int64(entries))
	if err != nil {
		b.ListErrors.Add(1)
	}
}

// RecordStat implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStat(duration time.Duration, err error) {
	b.StatCount.Add(1)
	if err != nil {
		b.StatErrors.Add(1)
	}
}
