package viewer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Loupe is the magnifier image currently shown.
type Loupe struct {
	Image  image.Image     // MagnifierSize square
	Center image.Point     // screen point it is centred on
	Crop   image.Rectangle // source pixels it magnifies
}

// magnify replaces the loupe with a magnified crop of the full-resolution
// source around the screen point pt. Points outside the image are ignored.
func (v *Viewer) magnify(pt image.Point) error {
	cx, cy := v.vp.ScreenToCanvas(float64(pt.X), float64(pt.Y))
	if v.vp.Outside(cx, cy) {
		return nil
	}
	ix, iy := v.vp.CanvasToImage(cx, cy)
	size := v.cfg.MagnifierSize
	side := max(int(float64(size)/(v.cfg.MagnifierMultiplier*v.vp.Imscale())), 1)
	x0 := int(math.Floor(ix - float64(side)/2))
	y0 := int(math.Floor(iy - float64(side)/2))
	r := image.Rect(x0, y0, x0+side, y0+side)
	crop, err := v.Crop(r)
	if err != nil {
		v.logger.Error("magnifier crop failed", "rect", r.String(), "error", err)
		return err
	}
	v.loupe = &Loupe{Image: v.rs.Resize(crop, size, size), Center: pt, Crop: r}
	return nil
}

// hideLoupe removes the loupe and releases the source handle it used.
func (v *Viewer) hideLoupe() {
	v.loupe = nil
	if v.pyr != nil && v.pyr.Bands != nil {
		v.pyr.Bands.Release()
	}
}

// Crop returns the full-resolution pixels of r in image space. Parts of r
// outside the image are filled with the background colour so the result is
// always r.Dx() x r.Dy().
func (v *Viewer) Crop(r image.Rectangle) (image.Image, error) {
	if v.destroyed {
		return nil, ErrDestroyed
	}
	r = r.Canon()
	in := r.Intersect(image.Rect(0, 0, v.src.Width, v.src.Height))
	var part image.Image
	if !in.Empty() {
		var err error
		if v.pyr.Huge {
			part, err = v.pyr.Bands.ReadRect(in)
			if err != nil {
				return nil, err
			}
		} else {
			full := v.pyr.Levels[0].Image
			part = subImage(full, in.Add(full.Bounds().Min))
		}
		if in == r {
			return part, nil
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(v.bg), image.Point{}, draw.Src)
	if part != nil {
		draw.Draw(out, in.Sub(r.Min), part, part.Bounds().Min, draw.Src)
	}
	return out, nil
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
