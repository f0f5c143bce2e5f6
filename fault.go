package fskit

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is the default error returned by FaultFS rules.
var ErrInjected = errors.New("injected fault")

// FaultFS is a FileSystem wrapper that injects errors for testing.
// Operations without a matching rule pass through unchanged.
type FaultFS struct {
	inner FileSystem

	mu    sync.Mutex
	rules map[string]error // operation name -> error to inject
}

var _ FileSystem = (*FaultFS)(nil)

// NewFaultFS creates a fault-injecting wrapper around inner.
func NewFaultFS(inner FileSystem) *FaultFS {
	return &FaultFS{
		inner: inner,
		rules: make(map[string]error),
	}
}

// FailWith makes the named operation ("read", "write", "delete", "exists",
// "stat", "list", "mkdir", "remove") return err until the rule is cleared.
// A nil err installs ErrInjected.
func (f *FaultFS) FailWith(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	f.rules[op] = err
	f.mu.Unlock()
}

// Clear removes all fault rules.
func (f *FaultFS) Clear() {
	f.mu.Lock()
	f.rules = make(map[string]error)
	f.mu.Unlock()
}

func (f *FaultFS) fault(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rules[op]
}

func (f *FaultFS) Exists(ctx context.Context, name string) (bool, error) {
	if err := f.fault("exists"); err != nil {
		return false, err
	}
	return f.inner.Exists(ctx, name)
}

func (f *FaultFS) Read(ctx context.Context, name string) ([]byte, error) {
	if err := f.fault("read"); err != nil {
		return nil, err
	}
	return f.inner.Read(ctx, name)
}

func (f *FaultFS) Write(ctx context.Context, name string, data []byte) error {
	if err := f.fault("write"); err != nil {
		return err
	}
	return f.inner.Write(ctx, name, data)
}

func (f *FaultFS) Delete(ctx context.Context, name string) error {
	if err := f.fault("delete"); err != nil {
		return err
	}
	return f.inner.Delete(ctx, name)
}

func (f *FaultFS) Stat(ctx context.Context, name string) (FileInfo, error) {
	if err := f.fault("stat"); err != nil {
		return FileInfo{}, err
	}
	return f.inner.Stat(ctx, name)
}

func (f *FaultFS) List(ctx context.Context, dir string) ([]string, error) {
	if err := f.fault("list"); err != nil {
		return nil, err
	}
	return f.inner.List(ctx, dir)
}

func (f *FaultFS) MkdirAll(ctx context.Context, dir string) error {
	if err := f.fault("mkdir"); err != nil {
		return err
	}
	return f.inner.MkdirAll(ctx, dir)
}

func (f *FaultFS) RemoveAll(ctx context.Context, dir string) error {
	if err := f.fault("remove"); err != nil {
		return err
	}
	return f.inner.RemoveAll(ctx, dir)
}
