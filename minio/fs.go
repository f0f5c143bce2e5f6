package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/fskit"
	"github.com/minio/minio-go/v7"
)

// FS implements fskit.FileSystem for MinIO and S3-compatible storage.
// Directories exist implicitly through key prefixes.
type FS struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ fskit.FileSystem = (*FS)(nil)

// NewFS creates a MinIO-backed filesystem.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "data/").
func NewFS(client *minio.Client, bucket, rootPrefix string) *FS {
	return &FS{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *FS) key(name string) string {
	return path.Join(s.prefix, fskit.Normalize(name))
}

func isNotFound(err error) bool {
	errResp := minio.ToErrorResponse(err)
	return errResp.Code == "NoSuchKey" || errResp.Code == "NotFound"
}

// Exists reports whether an object exists at name.
func (s *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Read returns the full content of the object at name.
func (s *FS) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fskit.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write stores data at name.
func (s *FS) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes the object at name. Absent objects are ignored.
func (s *FS) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Stat returns metadata for name. A key prefix with at least one object below
// it stats as a directory.
func (s *FS) Stat(ctx context.Context, name string) (fskit.FileInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err == nil {
		return fskit.FileInfo{Size: info.Size, ModTime: info.LastModified}, nil
	}
	if !isNotFound(err) {
		return fskit.FileInfo{}, err
	}

	// Probe for a directory prefix.
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:  s.key(name) + "/",
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return fskit.FileInfo{}, obj.Err
		}
		return fskit.FileInfo{IsDir: true}, nil
	}
	return fskit.FileInfo{}, fskit.ErrNotFound
}

// List returns the sorted immediate children of dir.
func (s *FS) List(ctx context.Context, dir string) ([]string, error) {
	prefix := s.key(dir)
	if prefix != "" {
		prefix += "/"
	}

	names := make([]string, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		name = strings.TrimSuffix(name, "/") // common prefixes carry a trailing separator
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

// MkdirAll is a no-op: directories exist implicitly through key prefixes.
func (s *FS) MkdirAll(_ context.Context, _ string) error {
	return nil
}

// RemoveAll removes every object at or below dir.
func (s *FS) RemoveAll(ctx context.Context, dir string) error {
	prefix := s.key(dir)

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
			return err
		}
	}

	// The path itself may be a plain object.
	return s.Delete(ctx, dir)
}
