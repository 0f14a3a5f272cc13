package operations

import (
	"image/color"

	"image-watermarker/internal/domain"
)

var watermarkColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// BuildOverlay places one copy of text at every grid anchor.
func BuildOverlay(d domain.Dimensions, text string, fontSize, opacityPercent int, grid []domain.Point) *domain.OverlayDescriptor {
	runs := make([]domain.GlyphRun, len(grid))
	for i, p := range grid {
		runs[i] = domain.GlyphRun{Text: text, Anchor: p}
	}

	return &domain.OverlayDescriptor{
		Width:      d.Width,
		Height:     d.Height,
		FontFamily: domain.DefaultFontFamily,
		FontSize:   fontSize,
		Color:      watermarkColor,
		Opacity:    float64(clamp(opacityPercent, 0, 100)) / 100,
		Runs:       runs,
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
