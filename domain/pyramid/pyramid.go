// Package pyramid builds the resolution pyramid of a source image.
package pyramid

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/domain/resample"
	"github.com/soocke/probedoc-go/domain/source"
)

// Level is one fully decoded copy of the source. Level k is REDUCTION^k
// times smaller than level 0.
type Level struct {
	Image     image.Image
	Width     int
	Height    int
	Synthetic bool // banded reduced copy of a huge source
}

// Pyramid holds the levels of one image, finest first.
type Pyramid struct {
	Levels    []Level
	Reduction int
	// Ratio is max(W,H)/HugeThreshold for huge sources and 1 otherwise; it
	// converts source pixels to level-0 pixels.
	Ratio float64
	Huge  bool
	// Bands reads full-resolution rows of a huge source. Nil otherwise.
	Bands *source.BandReader
}

// Close drops the levels and the source handle.
func (p *Pyramid) Close() {
	if p == nil {
		return
	}
	p.Levels = nil
	if p.Bands != nil {
		_ = p.Bands.Close()
	}
}

// Bytes returns the memory held by the decoded levels.
func (p *Pyramid) Bytes() uint64 {
	if p == nil {
		return 0
	}
	var n uint64
	for _, l := range p.Levels {
		bpp := uint64(4)
		if _, ok := l.Image.(*image.Gray); ok {
			bpp = 1
		}
		n += uint64(l.Width) * uint64(l.Height) * bpp
	}
	return n
}

// Builder constructs pyramids.
type Builder struct {
	Reduction          int
	Top                int
	HugeThreshold      int
	BandHeight         int
	MaxFullDecodeBytes int64
	Resampler          resample.Resampler
	Logger             *slog.Logger
}

// NewBuilder returns a builder configured from cfg.
func NewBuilder(cfg *config.Config, rs resample.Resampler, logger *slog.Logger) *Builder {
	return &Builder{
		Reduction:          cfg.Reduction,
		Top:                cfg.PyramidTopSize,
		HugeThreshold:      cfg.HugeThreshold,
		BandHeight:         cfg.BandHeight,
		MaxFullDecodeBytes: cfg.MaxFullDecodeBytes,
		Resampler:          rs,
		Logger:             logger,
	}
}

// Sizes returns the level dimensions that halving a w x h base yields:
// each level is floor(prev/reduction) until both sides are <= top.
func Sizes(w, h, reduction, top int) []image.Point {
	sizes := []image.Point{{w, h}}
	for w > top || h > top {
		w, h = max(w/reduction, 1), max(h/reduction, 1)
		sizes = append(sizes, image.Pt(w, h))
	}
	return sizes
}

// Build decodes src into a pyramid. Huge sources get a single banded
// reduced copy as level 0; everything else starts from a full decode.
// A huge pixel count without a raw layout is decoded fully only when it fits
// MaxFullDecodeBytes, otherwise ErrUnsupportedFormat is returned.
func (b *Builder) Build(src *source.Image) (*Pyramid, error) {
	p := &Pyramid{Reduction: b.Reduction, Ratio: 1, Huge: src.IsHuge()}
	var base image.Image
	if p.Huge {
		br, err := src.Bands()
		if err != nil {
			return nil, err
		}
		p.Bands = br
		p.Ratio = float64(max(src.Width, src.Height)) / float64(b.HugeThreshold)
		base, err = b.smaller(src, br)
		if err != nil {
			_ = br.Close()
			return nil, err
		}
	} else {
		if src.HugePixels() {
			need := int64(src.Width) * int64(src.Height) * 4
			if need > b.MaxFullDecodeBytes {
				_, err := src.Bands()
				return nil, fmt.Errorf("%w (full decode needs %s, limit %s)", err,
					humanize.IBytes(uint64(need)), humanize.IBytes(uint64(b.MaxFullDecodeBytes)))
			}
			b.Logger.Warn("huge image without raw layout, decoding fully",
				"path", src.Path, "format", src.Format, "bytes", humanize.IBytes(uint64(need)))
		}
		var err error
		if base, err = src.Decode(); err != nil {
			return nil, err
		}
	}
	bb := base.Bounds()
	p.Levels = append(p.Levels, Level{Image: base, Width: bb.Dx(), Height: bb.Dy(), Synthetic: p.Huge})
	for _, sz := range Sizes(bb.Dx(), bb.Dy(), b.Reduction, b.Top)[1:] {
		prev := p.Levels[len(p.Levels)-1].Image
		p.Levels = append(p.Levels, Level{Image: b.Resampler.Resize(prev, sz.X, sz.Y), Width: sz.X, Height: sz.Y})
	}
	b.Logger.Debug("pyramid built", "path", src.Path, "levels", len(p.Levels), "huge", p.Huge, "ratio", p.Ratio)
	return p, nil
}

// smaller builds the reduced copy of a huge source whose larger side equals
// HugeThreshold, one band of BandHeight rows at a time.
func (b *Builder) smaller(src *source.Image, br *source.BandReader) (image.Image, error) {
	w, h := src.Width, src.Height
	t := b.HugeThreshold
	k := float64(t) / float64(max(w, h))
	aspect := float64(w) / float64(h)
	var dw, dh int
	switch {
	case w == h:
		dw, dh = t, t
	case w > h:
		dw, dh = t, int(float64(t)/aspect)
	default:
		dw, dh = int(float64(t)*aspect), t
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for i := 0; i < h; {
		band := min(b.BandHeight, h-i)
		img, err := br.ReadBand(i, band)
		if err != nil {
			return nil, err
		}
		scaled := b.Resampler.Resize(img, dw, int(float64(band)*k)+1)
		y := int(float64(i) * k)
		draw.Draw(dst, scaled.Bounds().Add(image.Pt(0, y)), scaled, image.Point{}, draw.Src)
		i += band
	}
	br.Release()
	b.Logger.Info("reduced copy built", "path", src.Path,
		"source", fmt.Sprintf("%dx%d", w, h), "copy", fmt.Sprintf("%dx%d", dw, dh),
		"peak_band", humanize.Comma(int64(br.PeakPixels())))
	return dst, nil
}
