package image

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrRegionOutOfBounds = errors.New("region exceeds image bounds")
	ErrOverlayMismatch   = errors.New("overlay does not match image size")
	ErrFontLoad          = errors.New("failed to load watermark font")
)
