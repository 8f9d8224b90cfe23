// Package storage keeps uploaded recipe images on the local filesystem or in S3.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for payloads that are not a base64 encoded image data URI.
var ErrInvalidImage = errors.New("invalid image")

// ImageDir is the key prefix of recipe images.
const ImageDir = "recipes/images"

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ImageStore saves and removes images and turns stored keys into URLs.
type ImageStore interface {
	Save(ctx context.Context, key string, img *Image) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DecodeDataURI parses "data:image/png;base64,...".
func DecodeDataURI(s string) (*Image, error) {
	meta, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidImage
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}

	return &Image{Data: data, ContentType: strings.ToLower(contentType), Ext: ext}, nil
}

// NewImageKey returns a fresh storage key for an image.
func NewImageKey(img *Image) string {
	return path.Join(ImageDir, uuid.New().String()+"."+img.Ext)
}

type originKey struct{}

// WithOrigin records the scheme and host ("https://example.org") that
// root-relative image URLs are resolved against.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, strings.TrimSuffix(origin, "/"))
}

// AbsoluteURL prefixes a root-relative URL with the origin stored in ctx.
// Absolute URLs, and any URL when no origin is known, are returned unchanged.
func AbsoluteURL(ctx context.Context, u string) string {
	origin, _ := ctx.Value(originKey{}).(string)
	if origin == "" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") {
		return u
	}
	return origin + u
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
