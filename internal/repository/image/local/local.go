// Package local reads, transforms and writes images on the local filesystem.
package local

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"image-watermarker/internal/domain"
	repoImage "image-watermarker/internal/repository/image"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/golang/freetype/truetype"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var supportedMimeTypes = []string{"image/jpeg", "image/png"}

type ImageRepository struct {
	font        *truetype.Font
	jpegQuality int
	logger      *zlog.Zerolog
}

func NewImageRepository(jpegQuality int, logger *zlog.Zerolog) (*ImageRepository, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repoImage.ErrFontLoad, err)
	}
	if jpegQuality <= 0 {
		jpegQuality = domain.DefaultJPEGQuality
	}
	return &ImageRepository{
		font:        f,
		jpegQuality: jpegQuality,
		logger:      logger,
	}, nil
}

func (r *ImageRepository) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat directory: %w", err)
	}
	return info.IsDir(), nil
}

func (r *ImageRepository) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrOutputDirectoryCreate, path, err)
	}
	return nil
}

// ListFiles returns the names of the regular files in dir, in directory order.
// Symlinks to files are kept, symlinks to directories are skipped.
func (r *ImageRepository) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				r.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to resolve symlink, skipping")
				continue
			}
			if target.IsDir() {
				continue
			}
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

// ReadMetadata sniffs the file content and reads the dimensions from its
// header without decoding pixels.
func (r *ImageRepository) ReadMetadata(ctx context.Context, path string) (domain.Dimensions, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dimensions{}, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return domain.Dimensions{}, fmt.Errorf("%w: %v", domain.ErrMetadataRead, err)
	}
	if !mimetype.EqualsAny(mtype.String(), supportedMimeTypes...) {
		return domain.Dimensions{}, fmt.Errorf("%w: %w: %s", domain.ErrMetadataRead, repoImage.ErrUnsupportedFormat, mtype.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Dimensions{}, fmt.Errorf("%w: %v", domain.ErrMetadataRead, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return domain.Dimensions{}, fmt.Errorf("%w: %v", domain.ErrMetadataRead, err)
	}

	dims := domain.Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !dims.Valid() {
		return domain.Dimensions{}, fmt.Errorf("%w: dimensions %dx%d", domain.ErrInvalidImageMetadata, dims.Width, dims.Height)
	}

	return dims, nil
}

func (r *ImageRepository) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (r *ImageRepository) ExtractRegion(img image.Image, rect domain.CropRectangle) (image.Image, error) {
	bounds := img.Bounds()
	region := rect.Rect().Add(bounds.Min)
	if region.Empty() || !region.In(bounds) {
		return nil, fmt.Errorf("%w: crop %v, image %v", repoImage.ErrRegionOutOfBounds, region, bounds)
	}
	return imaging.Crop(img, region), nil
}

// Composite draws every glyph run of overlay onto a copy of img, each run
// centered on its anchor.
func (r *ImageRepository) Composite(img image.Image, overlay *domain.OverlayDescriptor) (image.Image, error) {
	bounds := img.Bounds()
	if bounds.Dx() != overlay.Width || bounds.Dy() != overlay.Height {
		return nil, fmt.Errorf("%w: overlay %dx%d, image %dx%d",
			repoImage.ErrOverlayMismatch, overlay.Width, overlay.Height, bounds.Dx(), bounds.Dy())
	}

	result := imaging.Clone(img)
	if len(overlay.Runs) == 0 || overlay.Opacity <= 0 {
		return result, nil
	}

	// faces keep glyph caches and must not be shared between goroutines
	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    float64(overlay.FontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  result,
		Src:  image.NewUniform(overlay.Fill()),
		Face: face,
	}

	metrics := face.Metrics()
	middle := (metrics.Ascent - metrics.Descent) / 2
	widths := make(map[string]fixed.Int26_6)

	for _, run := range overlay.Runs {
		width, ok := widths[run.Text]
		if !ok {
			width = drawer.MeasureString(run.Text)
			widths[run.Text] = width
		}
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(run.Anchor.X) - width/2,
			Y: fixed.I(run.Anchor.Y) + middle,
		}
		drawer.DrawString(run.Text)
	}

	return result, nil
}

// WriteToFile encodes img in the format implied by the extension of path.
// The data goes to a temporary file in the same directory first, so path is
// either fully written or left untouched.
func (r *ImageRepository) WriteToFile(ctx context.Context, img image.Image, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s", repoImage.ErrUnsupportedFormat, filepath.Ext(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", tmpPath).Msg("Failed to remove temp file")
		}
	}

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(r.jpegQuality)); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to flush image: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move image into place: %w", err)
	}

	return nil
}
