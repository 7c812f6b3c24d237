// Package documents keeps the per-user encrypted document blobs, either in
// PostgreSQL or in an S3 bucket.
package documents

import "context"

// Repository stores one opaque blob per user and kind. Get reports
// common.ErrorNotFound when nothing was saved yet; Put replaces the blob.
type Repository interface {
	Get(ctx context.Context, userID string, kind string) ([]byte, error)
	Put(ctx context.Context, userID string, kind string, blob []byte) error
}
