package fskit

import (
	"context"
	"time"
)

// ObservedFS wraps a FileSystem and records structured logs and metrics for
// every operation. It adds no behavior of its own: results and errors pass
// through unchanged.
type ObservedFS struct {
	inner   FileSystem
	logger  *Logger
	metrics MetricsCollector
}

var _ FileSystem = (*ObservedFS)(nil)

// NewObservedFS creates an observability decorator around inner.
// A nil logger disables logging; a nil collector disables metrics.
func NewObservedFS(inner FileSystem, logger *Logger, metrics MetricsCollector) *ObservedFS {
	if logger == nil {
		logger = NoopLogger()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &ObservedFS{inner: inner, logger: logger, metrics: metrics}
}

func (o *ObservedFS) Exists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := o.inner.Exists(ctx, name)
	o.metrics.RecordExists(time.Since(start), err)
	if err != nil {
		o.logger.ErrorContext(ctx, "exists failed", "path", name, "error", err)
	}
	return ok, err
}

func (o *ObservedFS) Read(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := o.inner.Read(ctx, name)
	o.metrics.RecordRead(len(data), time.Since(start), err)
	o.logger.LogRead(ctx, name, len(data), err)
	return data, err
}

func (o *ObservedFS) Write(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := o.inner.Write(ctx, name, data)
	o.metrics.RecordWrite(len(data), time.Since(start), err)
	o.logger.LogWrite(ctx, name, len(data), err)
	return err
}

func (o *ObservedFS) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := o.inner.Delete(ctx, name)
	o.metrics.RecordDelete(time.Since(start), err)
	o.logger.LogDelete(ctx, name, err)
	return err
}

func (o *ObservedFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	start := time.Now()
	fi, err := o.inner.Stat(ctx, name)
	o.metrics.RecordStat(time.Since(start), err)
	return fi, err
}

func (o *ObservedFS) List(ctx context.Context, dir string) ([]string, error) {
	start := time.Now()
	names, err := o.inner.List(ctx, dir)
	o.metrics.RecordList(len(names), time.Since(start), err)
	o.logger.LogList(ctx, dir, len(names), err)
	return names, err
}

func (o *ObservedFS) MkdirAll(ctx context.Context, dir string) error {
	err := o.inner.MkdirAll(ctx, dir)
	if err != nil {
		o.logger.ErrorContext(ctx, "mkdir failed", "dir", dir, "error", err)
	}
	return err
}

func (o *ObservedFS) RemoveAll(ctx context.Context, dir string) error {
	err := o.inner.RemoveAll(ctx, dir)
	if err != nil {
		o.logger.ErrorContext(ctx, "remove failed", "dir", dir, "error", err)
	}
	return err
}
