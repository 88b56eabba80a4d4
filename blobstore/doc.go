// Package blobstore abstracts where sample-store snapshots and tuning
// reports live: local disk (memory-mapped reads), plain memory, or
// S3-compatible object storage (see the s3 and minio subpackages).
package blobstore
