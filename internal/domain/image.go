package domain

import "context"

// ImageStore defines the contract for storing uploaded images (infrastructure
// port). Put stores data under key and returns the public URL, which may be
// empty for stores without public access.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}
