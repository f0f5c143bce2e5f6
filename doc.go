// Package fskit provides a filesystem abstraction toolkit: one minimal
// read/write/stat/list contract ([FileSystem]) implemented by interchangeable
// storage backends and composable decorators.
//
// # Backends
//
//   - [Local]: local disk, rooted at a directory, atomic writes
//   - [Memory]: in-memory, for tests and ephemeral data
//   - minio.FS: MinIO and S3-compatible object storage
//   - s3.FS: Amazon S3 with multipart uploads
//   - dynamo.FS: DynamoDB-backed small-file storage
//
// # Decorators
//
// Each cross-cutting concern is an independent type wrapping another
// FileSystem, so concerns stack freely:
//
//	backend, _ := fskit.NewLocal("/var/data")
//	fsys := fskit.NewCachedFS(
//	    fskit.NewObservedFS(
//	        fskit.NewCompressFS(backend, fskit.CompressionZSTD),
//	        logger, metrics,
//	    ),
//	    fskit.WithMaxSize(256),
//	    fskit.WithTTL(30*time.Second),
//	)
//
// The centerpiece is [CachedFS]: bounded LRU+TTL caching of file content,
// existence checks, and directory listings, with write-through coherence:
// this process's most recent write or delete is immediately visible to its
// subsequent reads, and backend errors never poison the cache.
//
// All operations take a context and are synchronous; cancellation applies at
// the point an operation reaches its backend.
package fskit
