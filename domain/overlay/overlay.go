// Package overlay draws annotation markers and the magnifier loupe on top
// of a rendered frame.
package overlay

import (
	"image"
	"image/color"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// MaxMarkerRadius bounds sprite sizes at extreme zoom.
const MaxMarkerRadius = 512

// Marker is a named, coloured point in image pixel space.
type Marker struct {
	Name  string
	Color color.RGBA
	Pos   image.Point
}

// Projector maps image pixels to screen coordinates.
type Projector interface {
	ImageToScreen(x, y float64) (float64, float64)
}

type spriteKey struct {
	radius int
	color  color.RGBA
}

// Painter draws markers using cached disc sprites.
type Painter struct {
	sprites *lru.Cache[spriteKey, *image.RGBA]
}

// NewPainter returns a painter caching up to size sprites.
func NewPainter(size int) *Painter {
	if size <= 0 {
		size = 64
	}
	c, _ := lru.New[spriteKey, *image.RGBA](size)
	return &Painter{sprites: c}
}

// CachedSprites returns the number of cached sprites.
func (p *Painter) CachedSprites() int { return p.sprites.Len() }

// DrawMarkers paints each marker as a filled disc with a one pixel black
// outline, centred on its projected screen position.
func (p *Painter) DrawMarkers(dst draw.Image, markers []Marker, proj Projector, radius float64) {
	r := min(max(int(math.Round(radius)), 1), MaxMarkerRadius)
	for _, m := range markers {
		sx, sy := proj.ImageToScreen(float64(m.Pos.X), float64(m.Pos.Y))
		cx, cy := int(math.Round(sx)), int(math.Round(sy))
		at := image.Rect(cx-r-1, cy-r-1, cx+r+1, cy+r+1)
		if !at.Overlaps(dst.Bounds()) {
			continue
		}
		s := p.sprite(r, m.Color)
		draw.Draw(dst, at, s, image.Point{}, draw.Over)
	}
}

func (p *Painter) sprite(r int, c color.RGBA) *image.RGBA {
	key := spriteKey{radius: r, color: c}
	if s, ok := p.sprites.Get(key); ok {
		return s
	}
	side := 2*r + 2
	s := image.NewRGBA(image.Rect(0, 0, side, side))
	z := vector.NewRasterizer(side, side)
	mid := float32(side) / 2
	circle(z, mid, mid, float32(r), false)
	z.Draw(s, s.Bounds(), image.NewUniform(color.Black), image.Point{})
	if r > 1 {
		z.Reset(side, side)
		circle(z, mid, mid, float32(r-1), false)
		z.Draw(s, s.Bounds(), image.NewUniform(c), image.Point{})
	}
	p.sprites.Add(key, s)
	return s
}

// circle appends a closed circle approximated by four cubic arcs. Reverse
// winding cuts a hole out of an enclosing circle.
func circle(z *vector.Rasterizer, cx, cy, r float32, reverse bool) {
	const k = 0.5522848
	d := r * k
	z.MoveTo(cx+r, cy)
	if !reverse {
		z.CubeTo(cx+r, cy+d, cx+d, cy+r, cx, cy+r)
		z.CubeTo(cx-d, cy+r, cx-r, cy+d, cx-r, cy)
		z.CubeTo(cx-r, cy-d, cx-d, cy-r, cx, cy-r)
		z.CubeTo(cx+d, cy-r, cx+r, cy-d, cx+r, cy)
	} else {
		z.CubeTo(cx+r, cy-d, cx+d, cy-r, cx, cy-r)
		z.CubeTo(cx-d, cy-r, cx-r, cy-d, cx-r, cy)
		z.CubeTo(cx-r, cy+d, cx-d, cy+r, cx, cy+r)
		z.CubeTo(cx+d, cy+r, cx+r, cy+d, cx+r, cy)
	}
	z.ClosePath()
}
