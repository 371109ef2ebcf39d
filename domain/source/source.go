// Package source opens images on durable storage and exposes banded,
// row-addressable reads for files that store raw packed pixels.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"os"

	// Registered decoders for the formats the viewer accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnreadableImage reports a missing, inaccessible or corrupt source.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrUnsupportedFormat reports a source that cannot be read in row bands.
	ErrUnsupportedFormat = errors.New("unsupported format for banded decoding")
)

// Image describes a source image. Only the header is decoded by Open.
type Image struct {
	Path   string
	Width  int
	Height int
	Format string

	hugePixels bool
	layout     *rawLayout
	layoutErr  error
}

// Open reads the header of path. hugeThreshold is the side of the square
// whose area an image must exceed to be treated as huge.
func Open(path string, hugeThreshold int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableImage, path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: empty image %dx%d", ErrUnreadableImage, path, cfg.Width, cfg.Height)
	}
	img := &Image{Path: path, Width: cfg.Width, Height: cfg.Height, Format: format}
	t := int64(hugeThreshold)
	img.hugePixels = int64(cfg.Width)*int64(cfg.Height) > t*t
	img.layout, img.layoutErr = probeLayout(f, format, cfg.Width, cfg.Height)
	return img, nil
}

// Size returns the source dimensions.
func (i *Image) Size() image.Point { return image.Pt(i.Width, i.Height) }

// CanBandDecode reports whether rows can be read straight from the file.
func (i *Image) CanBandDecode() bool { return i != nil && i.layout != nil }

// HugePixels reports whether the pixel count exceeds the huge threshold,
// regardless of whether the file supports banded reads.
func (i *Image) HugePixels() bool { return i != nil && i.hugePixels }

// IsHuge reports whether the image takes the banded path.
func (i *Image) IsHuge() bool { return i.HugePixels() && i.CanBandDecode() }

// Bands returns a reader over the raw pixel rows.
func (i *Image) Bands() (*BandReader, error) {
	if !i.CanBandDecode() {
		reason := i.layoutErr
		if reason == nil {
			reason = errors.New("no raw layout")
		}
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrUnsupportedFormat, i.Path, i.Format, reason)
	}
	return &BandReader{path: i.Path, width: i.Width, height: i.Height, layout: *i.layout}, nil
}

// Decode fully decodes the image into memory.
func (i *Image) Decode() (image.Image, error) {
	f, err := os.Open(i.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	defer f.Close()
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableImage, i.Path, err)
	}
	return img, nil
}
