package storage

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageSize is the largest accepted photo upload
const DefaultMaxImageSize int64 = 20 << 20

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// ImageKind describes a recognised image format
type ImageKind struct {
	MIME string
	// Ext is the canonical extension including the dot
	Ext string
}

var allowedImages = map[string]ImageKind{
	"image/jpeg": {MIME: "image/jpeg", Ext: ".jpg"},
	"image/png":  {MIME: "image/png", Ext: ".png"},
	"image/webp": {MIME: "image/webp", Ext: ".webp"},
}

// DetectImage checks the size and the content signature of an upload. The declared
// file name and content type are ignored; only the bytes decide.
func DetectImage(data []byte, maxSize int64) (ImageKind, error) {
	if len(data) == 0 {
		return ImageKind{}, ErrEmptyImage
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	if int64(len(data)) > maxSize {
		return ImageKind{}, fmt.Errorf("%w: %d bytes > %d", ErrImageTooLarge, len(data), maxSize)
	}

	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if kind, ok := allowedImages[m.String()]; ok {
			return kind, nil
		}
	}
	return ImageKind{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
}
