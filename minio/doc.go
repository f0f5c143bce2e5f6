// Package minio provides a FileSystem implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library for optimal compatibility with MinIO
// and other S3-compatible storage systems like Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	import (
//	    "github.com/hupe1980/fskit"
//	    miniofs "github.com/hupe1980/fskit/minio"
//	    "github.com/minio/minio-go/v7"
//	    "github.com/minio/minio-go/v7/pkg/credentials"
//	)
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fsys := miniofs.NewFS(client, "my-bucket", "data/")
//	cached := fskit.NewCachedFS(fsys, fskit.WithTTL(time.Minute))
//
// # Directory Semantics
//
// Object stores have no real directories. MkdirAll is a no-op, List and Stat
// derive directories from key prefixes, and an "empty directory" simply does
// not exist.
package minio
