package source

import (
	"fmt"
	"image"

	"golang.org/x/exp/mmap"
)

// BandReader reads horizontal bands or rectangles of raw rows from the
// source file. It holds at most one open handle, which is closed and
// reopened before every read. Not safe for concurrent use.
type BandReader struct {
	path   string
	width  int
	height int
	layout rawLayout

	r    *mmap.ReaderAt
	peak int
}

// Bounds returns the full image rectangle.
func (b *BandReader) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// ReadBand decodes rows [row, row+height) at full width.
func (b *BandReader) ReadBand(row, height int) (image.Image, error) {
	return b.ReadRect(image.Rect(0, row, b.width, row+height))
}

// ReadRect decodes exactly the pixels of r, clipped to the image. The result
// is anchored at (0,0).
func (b *BandReader) ReadRect(r image.Rectangle) (image.Image, error) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("band %v outside %dx%d image", r, b.width, b.height)
	}
	if err := b.reopen(); err != nil {
		return nil, err
	}
	dst := b.layout.newImage(r.Dx(), r.Dy())
	row := make([]byte, r.Dx()*b.layout.bpp)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if _, err := b.r.ReadAt(row, b.layout.rowOffset(r.Min.X, y)); err != nil {
			return nil, fmt.Errorf("%w: %s: row %d: %w", ErrUnreadableImage, b.path, y, err)
		}
		b.layout.putRow(dst, y-r.Min.Y, row)
	}
	if px := r.Dx() * r.Dy(); px > b.peak {
		b.peak = px
	}
	return dst, nil
}

func (b *BandReader) reopen() error {
	b.Release()
	r, err := mmap.Open(b.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	b.r = r
	return nil
}

// Held reports whether a file handle is currently open.
func (b *BandReader) Held() bool { return b != nil && b.r != nil }

// Release closes the open handle, if any. The reader stays usable.
func (b *BandReader) Release() {
	if b == nil || b.r == nil {
		return
	}
	_ = b.r.Close()
	b.r = nil
}

// Close releases the handle.
func (b *BandReader) Close() error {
	b.Release()
	return nil
}

// PeakPixels returns the largest pixel count decoded by a single read.
func (b *BandReader) PeakPixels() int { return b.peak }
