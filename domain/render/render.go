// Package render produces the single bitmap covering the visible part of
// the image for the current viewport.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/soocke/probedoc-go/domain/pyramid"
	"github.com/soocke/probedoc-go/domain/resample"
	"github.com/soocke/probedoc-go/domain/viewport"
)

// BandSource reads full-resolution source pixels.
type BandSource interface {
	ReadRect(r image.Rectangle) (image.Image, error)
}

// Tile is the rendered visible part of the image.
type Tile struct {
	Image image.Image     // anchored at (0,0)
	At    image.Point     // screen position of the top-left pixel
	Crop  image.Rectangle // pixels read from the level, or the source for passthrough
	Level int
}

// Bounds returns the tile's screen rectangle.
func (t Tile) Bounds() image.Rectangle {
	if t.Image == nil {
		return image.Rectangle{}
	}
	return t.Image.Bounds().Sub(t.Image.Bounds().Min).Add(t.At)
}

// Renderer crops and resizes pyramid levels or source bands.
type Renderer struct {
	Levels    []pyramid.Level
	Bands     BandSource // required for huge images only
	Resampler resample.Resampler
	Logger    *slog.Logger
}

// New returns a renderer over p.
func New(p *pyramid.Pyramid, rs resample.Resampler, logger *slog.Logger) *Renderer {
	r := &Renderer{Levels: p.Levels, Resampler: rs, Logger: logger}
	if p.Bands != nil {
		r.Bands = p.Bands
	}
	return r
}

// Render recomputes the scroll region of vp and returns the tile for the
// visible window. ok is false when the image is entirely off-screen.
func (r *Renderer) Render(vp *viewport.Viewport) (tile Tile, ok bool, err error) {
	vp.UpdateScrollRegion()
	vis, cont := vp.Visible(), vp.Container()
	x1 := max(vis.X0-cont.X0, 0)
	y1 := max(vis.Y0-cont.Y0, 0)
	x2 := min(vis.X1, cont.X1) - cont.X0
	y2 := min(vis.Y1, cont.Y1) - cont.Y0
	outW, outH := int(x2-x1), int(y2-y1)
	if outW <= 0 || outH <= 0 {
		return Tile{}, false, nil
	}

	var crop image.Image
	var rect image.Rectangle
	level := vp.Level()
	if level == viewport.Passthrough {
		if r.Bands == nil {
			return Tile{}, false, fmt.Errorf("passthrough level without a band source")
		}
		im := vp.Imscale()
		row := int(y1 / im)
		h := max(int((y2-y1)/im), 1)
		rect = image.Rect(int(x1/im), row, max(int(x2/im), int(x1/im)+1), row+h)
		if crop, err = r.Bands.ReadRect(rect); err != nil {
			return Tile{}, false, err
		}
	} else {
		lvl := r.Levels[level]
		s := vp.Scale()
		rect = image.Rect(int(x1/s), int(y1/s), int(x2/s), int(y2/s))
		rect = nonEmpty(rect, lvl.Image.Bounds())
		crop = subImage(lvl.Image, rect)
	}

	out := r.Resampler.Resize(crop, outW, outH)
	sx, sy := vp.CanvasToScreen(max(vis.X0, math.Trunc(cont.X0)), max(vis.Y0, math.Trunc(cont.Y0)))
	tile = Tile{Image: out, At: image.Pt(int(math.Round(sx)), int(math.Round(sy))), Crop: rect, Level: level}
	if r.Logger != nil {
		r.Logger.Debug("tile rendered", "level", level, "crop", rect.String(), "size", fmt.Sprintf("%dx%d", outW, outH))
	}
	return tile, true, nil
}

// nonEmpty clips r to bounds, widening it to at least one pixel.
func nonEmpty(r, bounds image.Rectangle) image.Rectangle {
	r = r.Canon()
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	c := r.Intersect(bounds)
	if c.Empty() {
		x := min(max(r.Min.X, bounds.Min.X), bounds.Max.X-1)
		y := min(max(r.Min.Y, bounds.Min.Y), bounds.Max.Y-1)
		c = image.Rect(x, y, x+1, y+1)
	}
	return c
}

func subImage(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
