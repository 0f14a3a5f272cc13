package processor

import (
	"context"
	"image"

	"image-watermarker/internal/domain"
)

type imageCodec interface {
	ReadMetadata(ctx context.Context, path string) (domain.Dimensions, error)
	Load(ctx context.Context, path string) (image.Image, error)
	ExtractRegion(img image.Image, rect domain.CropRectangle) (image.Image, error)
	Composite(img image.Image, overlay *domain.OverlayDescriptor) (image.Image, error)
	WriteToFile(ctx context.Context, img image.Image, path string) error
}
