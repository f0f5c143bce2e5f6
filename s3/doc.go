// Package s3 provides a FileSystem implementation for Amazon S3.
//
// Writes use multipart uploads for large payloads, listings use delimiter
// queries so directories fall out of key prefixes, and not-found responses
// map to fskit.ErrNotFound.
//
//	import (
//	    "github.com/aws/aws-sdk-go-v2/config"
//	    "github.com/aws/aws-sdk-go-v2/service/s3"
//	    s3fs "github.com/hupe1980/fskit/s3"
//	)
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	fsys := s3fs.NewFS(s3.NewFromConfig(cfg), "my-bucket", "data/")
package s3
