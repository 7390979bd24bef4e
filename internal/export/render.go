package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

var (
	background  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	placeholder = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
)

// Renderer lays preloaded covers out on a grid
type Renderer struct {
	Columns int
	Cell    int
	Gap     int
}

// NewRenderer returns a renderer with cell edge size
func NewRenderer(cell int) *Renderer {
	if cell <= 0 {
		cell = 300
	}
	return &Renderer{Columns: 3, Cell: cell, Gap: cell / 20}
}

// Render encodes the contact sheet as PNG into w
func (r *Renderer) Render(w io.Writer, images []Image) error {
	if len(images) == 0 {
		return errors.New("nothing to render")
	}

	cols := r.Columns
	if len(images) < cols {
		cols = len(images)
	}
	rows := (len(images) + cols - 1) / cols
	width := cols*r.Cell + (cols+1)*r.Gap
	height := rows*r.Cell + (rows+1)*r.Gap

	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	for i, img := range images {
		x := r.Gap + (i%cols)*(r.Cell+r.Gap)
		y := r.Gap + (i/cols)*(r.Cell+r.Gap)
		cell := image.Rect(x, y, x+r.Cell, y+r.Cell)

		if img.Img == nil {
			draw.Draw(sheet, cell, &image.Uniform{C: placeholder}, image.Point{}, draw.Src)
			continue
		}
		drawFit(sheet, cell, img.Img)
	}

	if err := png.Encode(w, sheet); err != nil {
		return errors.Wrap(err, "failed to encode png")
	}
	return nil
}

// drawFit scales src into dst keeping aspect ratio, centered, nearest-neighbor
func drawFit(dst *image.RGBA, cell image.Rectangle, src image.Image) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return
	}

	cw, ch := cell.Dx(), cell.Dy()
	tw, th := cw, sh*cw/sw
	if th > ch {
		tw, th = sw*ch/sh, ch
	}
	ox := cell.Min.X + (cw-tw)/2
	oy := cell.Min.Y + (ch-th)/2

	for y := 0; y < th; y++ {
		sy := sb.Min.Y + y*sh/th
		for x := 0; x < tw; x++ {
			sx := sb.Min.X + x*sw/tw
			dst.Set(ox+x, oy+y, src.At(sx, sy))
		}
	}
}
