// Package viewport maps between image pixels, the virtual canvas and the
// visible screen, and picks the pyramid level for the current zoom.
//
// Canvas space is an unbounded plane. The image occupies the container
// rectangle in it; the screen shows the window [origin, origin+screen).
package viewport

import (
	"image"
	"math"
)

// Passthrough is the level index meaning "read straight from the source".
const Passthrough = -1

// Rect is an axis-aligned rectangle in canvas space.
type Rect struct{ X0, Y0, X1, Y1 float64 }

func (r Rect) Dx() float64 { return r.X1 - r.X0 }
func (r Rect) Dy() float64 { return r.Y1 - r.Y0 }

// Union returns the smallest rectangle containing r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{min(r.X0, s.X0), min(r.Y0, s.Y0), max(r.X1, s.X1), max(r.Y1, s.Y1)}
}

// Params describe the image a viewport shows.
type Params struct {
	Width, Height int // source pixels
	Reduction     int
	Levels        int
	Ratio         float64
	Huge          bool
	ScreenW       int
	ScreenH       int
}

// Viewport holds the zoom and scroll state of one image.
type Viewport struct {
	p Params

	imscale float64
	level   int
	scale   float64

	container        Rect
	originX, originY float64
	region           Rect
}

// New returns a viewport at imscale 1 with the image at the canvas origin.
func New(p Params) *Viewport {
	if p.Ratio <= 0 {
		p.Ratio = 1
	}
	if p.Levels < 1 {
		p.Levels = 1
	}
	v := &Viewport{p: p, imscale: 1, container: Rect{0, 0, float64(p.Width), float64(p.Height)}}
	v.level, v.scale = SelectLevel(v.imscale*p.Ratio, p.Reduction, p.Levels, p.Huge)
	v.UpdateScrollRegion()
	return v
}

// SelectLevel returns the coarsest level whose resolution still covers the
// effective scale k, and the factor from that level's pixels to canvas.
// Huge images get Passthrough when no level is fine enough.
func SelectLevel(k float64, reduction, levels int, huge bool) (int, float64) {
	r := float64(reduction)
	level := int(math.Floor(-math.Log(k)/math.Log(r) + 1e-9))
	level = min(level, levels-1)
	if level < 0 {
		if huge {
			level = Passthrough
		} else {
			level = 0
		}
	}
	return level, k * math.Pow(r, float64(max(0, level)))
}

func (v *Viewport) Imscale() float64 { return v.imscale }
func (v *Viewport) Level() int       { return v.level }
func (v *Viewport) Scale() float64   { return v.scale }
func (v *Viewport) Ratio() float64   { return v.p.Ratio }
func (v *Viewport) Huge() bool       { return v.p.Huge }

// ImageSize returns the source dimensions.
func (v *Viewport) ImageSize() image.Point { return image.Pt(v.p.Width, v.p.Height) }

// ScreenSize returns the visible area in pixels.
func (v *Viewport) ScreenSize() image.Point { return image.Pt(v.p.ScreenW, v.p.ScreenH) }

// Container returns the image bounds in canvas space.
func (v *Viewport) Container() Rect { return v.container }

// Visible returns the screen window in canvas space.
func (v *Viewport) Visible() Rect {
	return Rect{v.originX, v.originY, v.originX + float64(v.p.ScreenW), v.originY + float64(v.p.ScreenH)}
}

// Origin returns the canvas point shown at the screen's top-left corner.
func (v *Viewport) Origin() (float64, float64) { return v.originX, v.originY }

// Region returns the scroll region computed by the last UpdateScrollRegion.
func (v *Viewport) Region() Rect { return v.region }

// Resize changes the visible area.
func (v *Viewport) Resize(w, h int) {
	v.p.ScreenW, v.p.ScreenH = max(w, 1), max(h, 1)
}

func (v *Viewport) CanvasToImage(x, y float64) (float64, float64) {
	return (x - v.container.X0) / v.imscale, (y - v.container.Y0) / v.imscale
}

func (v *Viewport) ImageToCanvas(x, y float64) (float64, float64) {
	return v.container.X0 + x*v.imscale, v.container.Y0 + y*v.imscale
}

// CanvasToLevel maps a canvas point to pixels of the selected level.
func (v *Viewport) CanvasToLevel(x, y float64) (float64, float64) {
	return (x - v.container.X0) / v.scale, (y - v.container.Y0) / v.scale
}

func (v *Viewport) ScreenToCanvas(x, y float64) (float64, float64) {
	return x + v.originX, y + v.originY
}

func (v *Viewport) CanvasToScreen(x, y float64) (float64, float64) {
	return x - v.originX, y - v.originY
}

// ImageToScreen maps an image pixel to the screen.
func (v *Viewport) ImageToScreen(x, y float64) (float64, float64) {
	return v.CanvasToScreen(v.ImageToCanvas(x, y))
}

// ScreenToImage maps a screen point to image pixels.
func (v *Viewport) ScreenToImage(x, y float64) (float64, float64) {
	return v.CanvasToImage(v.ScreenToCanvas(x, y))
}

// Outside reports whether a canvas point lies outside the open interval of
// the container on any axis.
func (v *Viewport) Outside(x, y float64) bool {
	c := v.container
	return !(c.X0 < x && x < c.X1 && c.Y0 < y && y < c.Y1)
}

// ScaleAbout multiplies imscale by factor, scaling the container about the
// canvas point (cx, cy), and reselects the level.
func (v *Viewport) ScaleAbout(cx, cy, factor float64) {
	c := v.container
	v.container = Rect{
		cx + (c.X0-cx)*factor, cy + (c.Y0-cy)*factor,
		cx + (c.X1-cx)*factor, cy + (c.Y1-cy)*factor,
	}
	v.imscale *= factor
	v.level, v.scale = SelectLevel(v.imscale*v.p.Ratio, v.p.Reduction, v.p.Levels, v.p.Huge)
}

// UpdateScrollRegion sets the scroll region to the union of the container
// and the visible window, using the image's own extent on an axis where the
// window already spans the whole image. Coordinates are truncated like the
// container's integer corners.
func (v *Viewport) UpdateScrollRegion() Rect {
	vis := v.Visible()
	img := Rect{trunc(v.container.X0), trunc(v.container.Y0), trunc(v.container.X1), trunc(v.container.Y1)}
	r := img.Union(vis)
	if r.X0 == vis.X0 && r.X1 == vis.X1 {
		r.X0, r.X1 = img.X0, img.X1
	}
	if r.Y0 == vis.Y0 && r.Y1 == vis.Y1 {
		r.Y0, r.Y1 = img.Y0, img.Y1
	}
	v.region = Rect{trunc(r.X0), trunc(r.Y0), trunc(r.X1), trunc(r.Y1)}
	return v.region
}

// ScrollBy moves the window by (dx, dy) canvas pixels, confined to the scroll
// region: a window smaller than the region stays inside it, a larger one
// keeps the region inside the window.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.originX = confine(v.originX+dx, float64(v.p.ScreenW), v.region.X0, v.region.X1)
	v.originY = confine(v.originY+dy, float64(v.p.ScreenH), v.region.Y0, v.region.Y1)
}

// ScrollUnits scrolls by whole units of fraction times the window size.
func (v *Viewport) ScrollUnits(ux, uy int, fraction float64) {
	stepX := math.Floor(float64(v.p.ScreenW) * fraction)
	stepY := math.Floor(float64(v.p.ScreenH) * fraction)
	v.ScrollBy(float64(ux)*stepX, float64(uy)*stepY)
}

func confine(o, size, lo, hi float64) float64 {
	a, b := lo, hi-size
	if b < a {
		a, b = b, a
	}
	return min(max(o, a), b)
}

func trunc(f float64) float64 { return math.Trunc(f) }
