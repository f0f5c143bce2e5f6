package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/fskit"
)

// Client is the subset of the S3 API the filesystem requires.
// *s3.Client satisfies it; tests substitute a mock.
type Client interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// UploadConfig configures the S3 uploader.
type UploadConfig struct {
	// PartSize is the minimum part size for multipart uploads.
	// Default: 8MB (larger than SDK default of 5MB for better throughput)
	PartSize int64

	// Concurrency is the number of concurrent part uploads.
	// Default: 5 (matches SDK default)
	Concurrency int
}

// DefaultUploadConfig returns production-oriented upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

// FS implements fskit.FileSystem for Amazon S3.
// Directories exist implicitly through key prefixes.
type FS struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ fskit.FileSystem = (*FS)(nil)

// NewFS creates an S3-backed filesystem.
// rootPrefix is prepended to all keys (e.g. "data/").
func NewFS(client Client, bucket, rootPrefix string) *FS {
	return NewFSWithUploadConfig(client, bucket, rootPrefix, DefaultUploadConfig())
}

// NewFSWithUploadConfig creates an S3-backed filesystem with explicit upload
// tuning.
func NewFSWithUploadConfig(client Client, bucket, rootPrefix string, cfg UploadConfig) *FS {
	if cfg.PartSize <= 0 {
		cfg.PartSize = DefaultUploadConfig().PartSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultUploadConfig().Concurrency
	}
	return &FS{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = cfg.PartSize
			u.Concurrency = cfg.Concurrency
		}),
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *FS) key(name string) string {
	return path.Join(s.prefix, fskit.Normalize(name))
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// Exists reports whether an object exists at name.
func (s *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
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
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fskit.ErrNotFound
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return io.ReadAll(resp.Body)
}

// Write stores data at name using multipart upload for large payloads.
func (s *FS) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes the object at name. S3 deletes are idempotent, so absent
// objects succeed.
func (s *FS) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// Stat returns metadata for name. A key prefix with at least one object below
// it stats as a directory.
func (s *FS) Stat(ctx context.Context, name string) (fskit.FileInfo, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err == nil {
		fi := fskit.FileInfo{Size: aws.ToInt64(head.ContentLength)}
		if head.LastModified != nil {
			fi.ModTime = *head.LastModified
		}
		return fi, nil
	}
	if !isNotFound(err) {
		return fskit.FileInfo{}, err
	}

	// Probe for a directory prefix.
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.key(name) + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fskit.FileInfo{}, err
	}
	if len(out.Contents) > 0 {
		return fskit.FileInfo{IsDir: true}, nil
	}
	return fskit.FileInfo{}, fskit.ErrNotFound
}

// List returns the sorted immediate children of dir: objects directly below
// the prefix plus common prefixes (subdirectories).
func (s *FS) List(ctx context.Context, dir string) ([]string, error) {
	prefix := s.key(dir)
	if prefix != "" {
		prefix += "/"
	}

	names := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" {
				names = append(names, name)
			}
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimPrefix(aws.ToString(cp.Prefix), prefix)
			name = strings.TrimSuffix(name, "/")
			if name != "" {
				names = append(names, name)
			}
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

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix + "/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return err
			}
		}
	}

	// The path itself may be a plain object.
	return s.Delete(ctx, dir)
}
