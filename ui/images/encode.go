// Package images converts composed frames into the byte form Tk photos load.
package images

import (
	"bytes"
	"image"
	"image/png"
	"sync"
)

// Frames are re-encoded on every pointer move, so favour speed over size.
var encoder = png.Encoder{CompressionLevel: png.BestSpeed, BufferPool: &bufferPool{}}

type bufferPool struct{ p sync.Pool }

func (b *bufferPool) Get() *png.EncoderBuffer {
	if eb, ok := b.p.Get().(*png.EncoderBuffer); ok {
		return eb
	}
	return nil
}

func (b *bufferPool) Put(eb *png.EncoderBuffer) { b.p.Put(eb) }

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = encoder.Encode(&buf, img)
	return buf.Bytes()
}

// Placeholder returns PNG bytes of a blank w x h frame.
func Placeholder(w, h int) []byte {
	return EncodePNG(image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1))))
}
