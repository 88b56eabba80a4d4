// Package minio provides a MinIO implementation of the blobstore.BlobStore
// interface for self-hosted S3-compatible object storage.
package minio
