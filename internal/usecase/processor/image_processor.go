package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"image-watermarker/internal/domain"
	"image-watermarker/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/zlog"
)

// ImageProcessor watermarks a single image file.
type ImageProcessor struct {
	codec  imageCodec
	ratio  domain.AspectRatio
	logger *zlog.Zerolog
}

func NewImageProcessor(codec imageCodec, logger *zlog.Zerolog) *ImageProcessor {
	return &ImageProcessor{
		codec:  codec,
		ratio:  domain.CropAspectRatio,
		logger: logger,
	}
}

// Process reads filename from inputDir, optionally crops it to 5:4, tiles the
// watermark over it and writes the result under the same name in outputDir.
// Every failure is returned as *domain.ImageProcessingError.
func (p *ImageProcessor) Process(ctx context.Context, filename, inputDir, outputDir string, cfg domain.WatermarkJobConfig) (string, error) {
	start := time.Now()
	inputPath := filepath.Join(inputDir, filename)
	outputPath := filepath.Join(outputDir, filename)

	fail := func(op domain.OperationType, err error) (string, error) {
		p.logger.Error().
			Err(err).
			Str("file", filename).
			Str("operation", string(op)).
			Msg("Image processing failed")
		return "", domain.NewImageProcessingError(filename, op, err)
	}

	dims, err := p.codec.ReadMetadata(ctx, inputPath)
	if err != nil {
		return fail(domain.OpReadMetadata, err)
	}

	p.logger.Debug().
		Str("file", filename).
		Int("width", dims.Width).
		Int("height", dims.Height).
		Msg("Read image metadata")

	img, err := p.codec.Load(ctx, inputPath)
	if err != nil {
		return fail(domain.OpLoad, err)
	}

	if cfg.Crop {
		rect, err := operations.ComputeCropRectangle(dims, p.ratio)
		if err != nil {
			return fail(domain.OpCrop, err)
		}

		img, err = p.codec.ExtractRegion(img, rect)
		if err != nil {
			return fail(domain.OpCrop, err)
		}
		dims = rect.Dimensions()

		p.logger.Debug().
			Str("file", filename).
			Int("left", rect.Left).
			Int("top", rect.Top).
			Int("width", rect.Width).
			Int("height", rect.Height).
			Msg("Cropped image")
	}

	grid, err := operations.ComputeTileGrid(dims, cfg.FontSize, cfg.PaddingLeftRight, cfg.PaddingTopBottom)
	if err != nil {
		return fail(domain.OpLayout, err)
	}

	overlay := operations.BuildOverlay(dims, cfg.WatermarkText, cfg.FontSize, cfg.Opacity, grid)

	img, err = p.codec.Composite(img, overlay)
	if err != nil {
		return fail(domain.OpComposite, err)
	}

	if err := p.codec.WriteToFile(ctx, img, outputPath); err != nil {
		return fail(domain.OpWrite, fmt.Errorf("write %s: %w", outputPath, err))
	}

	p.logger.Info().
		Str("file", filename).
		Str("output", outputPath).
		Int("tiles", len(grid)).
		Dur("duration", time.Since(start)).
		Msg("Image watermarked")

	return filename, nil
}
