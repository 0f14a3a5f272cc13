package domain

import "image"

type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// CropRectangle is a region of the source canvas, in source pixel coordinates.
type CropRectangle struct {
	Left   int
	Top    int
	Width  int
	Height int
}

func (r CropRectangle) Dimensions() Dimensions {
	return Dimensions{Width: r.Width, Height: r.Height}
}

func (r CropRectangle) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// AspectRatio is kept as two integers so crop decisions stay exact.
type AspectRatio struct {
	Width  int
	Height int
}

func (a AspectRatio) Float() float64 {
	return float64(a.Width) / float64(a.Height)
}

type Point struct {
	X int
	Y int
}

type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatJPG  ImageFormat = "jpg"
	FormatPNG  ImageFormat = "png"
)

// SupportedExtensions lists the lowercase extensions picked up from the input directory.
var SupportedExtensions = map[string]ImageFormat{
	".jpg":  FormatJPG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
}
