// Package resample provides the resizing filters used for pyramid levels,
// tiles and the magnifier.
package resample

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Resampler resizes src to exactly width x height. The result is anchored
// at (0,0).
type Resampler interface {
	Resize(src image.Image, width, height int) image.Image
	Name() string
}

// New returns the resampler for a config filter name.
func New(name string) (Resampler, error) {
	switch strings.ToLower(name) {
	case "", "lanczos":
		return imagingFilter{name: "lanczos", f: imaging.Lanczos}, nil
	case "box":
		return imagingFilter{name: "box", f: imaging.Box}, nil
	case "linear":
		return imagingFilter{name: "linear", f: imaging.Linear}, nil
	case "catmullrom":
		return drawKernel{name: "catmullrom", k: draw.CatmullRom}, nil
	case "bilinear":
		return drawKernel{name: "bilinear", k: draw.BiLinear}, nil
	case "nearest":
		return drawKernel{name: "nearest", k: draw.NearestNeighbor}, nil
	}
	return nil, fmt.Errorf("unknown resample filter %q", name)
}

type imagingFilter struct {
	name string
	f    imaging.ResampleFilter
}

func (r imagingFilter) Name() string { return r.name }

func (r imagingFilter) Resize(src image.Image, width, height int) image.Image {
	width, height = atLeastOne(width), atLeastOne(height)
	return imaging.Resize(src, width, height, r.f)
}

type drawKernel struct {
	name string
	k    draw.Interpolator
}

func (r drawKernel) Name() string { return r.name }

func (r drawKernel) Resize(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, atLeastOne(width), atLeastOne(height)))
	r.k.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
