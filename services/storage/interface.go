package storage

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned by the store used when Cloudinary is not configured.
var ErrDisabled = errors.New("image storage is not configured")

// ImageStore persists service images and returns their public URLs.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type disabledStore struct{}

// NewDisabledStore returns an ImageStore that rejects every upload.
func NewDisabledStore() ImageStore { return disabledStore{} }

func (disabledStore) Upload(context.Context, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (disabledStore) Delete(context.Context, string) error { return nil }
