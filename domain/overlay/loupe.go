package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// LoupeBorder is the width of the ring drawn around the loupe.
const LoupeBorder = 2

// DrawLoupe composites the square img as a disc centred on center, with a
// black ring on its rim. It returns the screen rectangle it covers.
func DrawLoupe(dst draw.Image, img image.Image, center image.Point) image.Rectangle {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side <= 0 {
		return image.Rectangle{}
	}
	local := image.Rect(0, 0, side, side)
	mid := float32(side) / 2

	lens := image.NewRGBA(local)
	draw.Draw(lens, local, img, b.Min, draw.Src)
	z := vector.NewRasterizer(side, side)
	circle(z, mid, mid, mid, false)
	circle(z, mid, mid, mid-LoupeBorder, true)
	z.Draw(lens, local, image.NewUniform(color.Black), image.Point{})

	mask := image.NewAlpha(local)
	z.Reset(side, side)
	circle(z, mid, mid, mid, false)
	z.Draw(mask, local, image.Opaque, image.Point{})

	at := local.Add(center.Sub(image.Pt(side/2, side/2)))
	draw.DrawMask(dst, at, lens, image.Point{}, mask, image.Point{}, draw.Over)
	return at
}
