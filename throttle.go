package fskit

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds backend-protection limits.
type ThrottleConfig struct {
	// OpsPerSecond is the maximum sustained operation rate.
	// If 0, unlimited.
	OpsPerSecond float64

	// Burst is the short-term burst allowance. Defaults to 1 when a rate is set.
	Burst int

	// MaxConcurrent caps in-flight operations. If 0, unlimited.
	MaxConcurrent int64
}

// ThrottleFS wraps a FileSystem and throttles operations before they reach
// the backend. Waiting honors the operation's context, so cancellation while
// queued returns ctx.Err() without touching the backend.
type ThrottleFS struct {
	inner   FileSystem
	limiter *rate.Limiter       // nil if unlimited
	sem     *semaphore.Weighted // nil if unlimited
}

var _ FileSystem = (*ThrottleFS)(nil)

// NewThrottleFS creates a throttling decorator around inner.
func NewThrottleFS(inner FileSystem, cfg ThrottleConfig) *ThrottleFS {
	t := &ThrottleFS{inner: inner}

	if cfg.OpsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.OpsPerSecond), burst)
	}
	if cfg.MaxConcurrent > 0 {
		t.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return t
}

// acquire blocks until the operation may proceed. The returned release
// function must be called when the backend call finishes.
func (t *ThrottleFS) acquire(ctx context.Context) (func(), error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if t.sem != nil {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		return func() { t.sem.Release(1) }, nil
	}
	return func() {}, nil
}

func (t *ThrottleFS) Exists(ctx context.Context, name string) (bool, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()
	return t.inner.Exists(ctx, name)
}

func (t *ThrottleFS) Read(ctx context.Context, name string) ([]byte, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return t.inner.Read(ctx, name)
}

func (t *ThrottleFS) Write(ctx context.Context, name string, data []byte) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.inner.Write(ctx, name, data)
}

func (t *ThrottleFS) Delete(ctx context.Context, name string) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.inner.Delete(ctx, name)
}

func (t *ThrottleFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return FileInfo{}, err
	}
	defer release()
	return t.inner.Stat(ctx, name)
}

func (t *ThrottleFS) List(ctx context.Context, dir string) ([]string, error) {
	release, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return t.inner.List(ctx, dir)
}

func (t *ThrottleFS) MkdirAll(ctx context.Context, dir string) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.inner.MkdirAll(ctx, dir)
}

func (t *ThrottleFS) RemoveAll(ctx context.Context, dir string) error {
	release, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return t.inner.RemoveAll(ctx, dir)
}
