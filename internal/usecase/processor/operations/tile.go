package operations

import (
	"fmt"

	"image-watermarker/internal/domain"
)

// ComputeTileGrid lays watermark anchors over the canvas in row-major order,
// starting at (paddingX, paddingY) and stepping by fontSize plus padding.
func ComputeTileGrid(d domain.Dimensions, fontSize, paddingX, paddingY int) ([]domain.Point, error) {
	stepX := fontSize + paddingX
	stepY := fontSize + paddingY
	if stepX <= 0 || stepY <= 0 {
		return nil, fmt.Errorf("%w: step %dx%d", domain.ErrInvalidLayoutParameters, stepX, stepY)
	}

	var points []domain.Point
	if paddingX < d.Width && paddingY < d.Height {
		cols := (d.Width-paddingX-1)/stepX + 1
		rows := (d.Height-paddingY-1)/stepY + 1
		points = make([]domain.Point, 0, cols*rows)
	}

	for y := paddingY; y < d.Height; y += stepY {
		for x := paddingX; x < d.Width; x += stepX {
			points = append(points, domain.Point{X: x, Y: y})
		}
	}

	return points, nil
}
