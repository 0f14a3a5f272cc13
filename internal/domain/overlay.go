package domain

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"strconv"
)

// GlyphRun is one copy of the watermark text, centered on Anchor.
type GlyphRun struct {
	Text   string
	Anchor Point
}

// OverlayDescriptor describes the watermark layer to composite over a canvas
// of Width x Height pixels at (0,0).
type OverlayDescriptor struct {
	Width      int
	Height     int
	FontFamily string
	FontSize   int
	Color      color.NRGBA
	Opacity    float64
	Runs       []GlyphRun
}

// Fill is Color with its alpha channel set from Opacity.
func (o *OverlayDescriptor) Fill() color.NRGBA {
	c := o.Color
	c.A = uint8(math.Round(math.Max(0, math.Min(1, o.Opacity)) * 255))
	return c
}

// SVG renders the overlay as SVG markup. Text is XML-escaped.
func (o *OverlayDescriptor) SVG() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, o.Width, o.Height)
	buf.WriteString(`<style>.watermark{`)
	fmt.Fprintf(&buf, "fill: rgba(%d, %d, %d, %s);", o.Color.R, o.Color.G, o.Color.B,
		strconv.FormatFloat(o.Opacity, 'f', -1, 64))
	fmt.Fprintf(&buf, "font-size: %dpx;", o.FontSize)
	buf.WriteString("font-family: ")
	_ = xml.EscapeText(&buf, []byte(o.FontFamily))
	buf.WriteString(";text-anchor: middle;dominant-baseline: middle;}</style>")

	for _, run := range o.Runs {
		fmt.Fprintf(&buf, `<text class="watermark" x="%d" y="%d">`, run.Anchor.X, run.Anchor.Y)
		_ = xml.EscapeText(&buf, []byte(run.Text))
		buf.WriteString("</text>")
	}

	buf.WriteString("</svg>")
	return buf.Bytes()
}
