package operations

import (
	"fmt"

	"image-watermarker/internal/domain"
)

// ComputeCropRectangle returns the largest centered region of d with the
// target aspect ratio. Wider images lose columns on both sides, taller ones
// lose rows top and bottom.
func ComputeCropRectangle(d domain.Dimensions, ratio domain.AspectRatio) (domain.CropRectangle, error) {
	if !d.Valid() {
		return domain.CropRectangle{}, fmt.Errorf("%w: dimensions %dx%d", domain.ErrInvalidImageMetadata, d.Width, d.Height)
	}
	if ratio.Width <= 0 || ratio.Height <= 0 {
		return domain.CropRectangle{}, fmt.Errorf("%w: aspect ratio %d:%d", domain.ErrInvalidLayoutParameters, ratio.Width, ratio.Height)
	}

	var rect domain.CropRectangle

	// width/height > rw/rh, compared without division
	if d.Width*ratio.Height > d.Height*ratio.Width {
		newWidth := d.Height * ratio.Width / ratio.Height
		rect = domain.CropRectangle{
			Left:   (d.Width - newWidth) / 2,
			Top:    0,
			Width:  newWidth,
			Height: d.Height,
		}
	} else {
		newHeight := d.Width * ratio.Height / ratio.Width
		rect = domain.CropRectangle{
			Left:   0,
			Top:    (d.Height - newHeight) / 2,
			Width:  d.Width,
			Height: newHeight,
		}
	}

	if rect.Width <= 0 || rect.Height <= 0 {
		return domain.CropRectangle{}, fmt.Errorf("%w: %dx%d crops to %dx%d",
			domain.ErrInvalidImageMetadata, d.Width, d.Height, rect.Width, rect.Height)
	}

	return rect, nil
}
