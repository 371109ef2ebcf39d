package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
)

type pixelModel int

const (
	modelGray pixelModel = iota
	modelRGB
	modelRGBA  // associated (premultiplied) alpha
	modelNRGBA // unassociated alpha
)

// rawLayout locates packed 8-bit rows inside a file: row y, column x starts
// at offset + y*stride + x*bpp.
type rawLayout struct {
	offset int64
	stride int64
	bpp    int
	model  pixelModel
}

func (l rawLayout) rowOffset(x, y int) int64 {
	return l.offset + int64(y)*l.stride + int64(x*l.bpp)
}

func (l rawLayout) newImage(w, h int) image.Image {
	r := image.Rect(0, 0, w, h)
	switch l.model {
	case modelGray:
		return image.NewGray(r)
	case modelNRGBA:
		return image.NewNRGBA(r)
	default:
		return image.NewRGBA(r)
	}
}

// putRow copies one packed row into row y of dst (created by newImage).
func (l rawLayout) putRow(dst image.Image, y int, row []byte) {
	switch d := dst.(type) {
	case *image.Gray:
		copy(d.Pix[y*d.Stride:], row)
	case *image.NRGBA:
		copy(d.Pix[y*d.Stride:], row)
	case *image.RGBA:
		pix := d.Pix[y*d.Stride:]
		if l.model == modelRGBA {
			copy(pix, row)
			return
		}
		for i, j := 0, 0; j+2 < len(row); i, j = i+4, j+3 {
			pix[i], pix[i+1], pix[i+2], pix[i+3] = row[j], row[j+1], row[j+2], 0xff
		}
	}
}

// probeLayout inspects the file behind f and returns where its raw rows
// live, or an error explaining why rows cannot be addressed directly.
func probeLayout(f *os.File, format string, w, h int) (*rawLayout, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	var l *rawLayout
	switch {
	case pnmChannels(f) > 0:
		l, err = pnmLayout(f, st.Size(), w, h)
	case format == "tiff":
		l, err = probeTIFF(f, w, h)
	default:
		return nil, fmt.Errorf("%s stores compressed pixels", format)
	}
	if err != nil {
		return nil, err
	}
	if end := l.rowOffset(0, h); end > st.Size() {
		return nil, fmt.Errorf("pixel data truncated: need %d bytes, file has %d", end, st.Size())
	}
	return l, nil
}

// TIFF tags consulted by probeTIFF.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagPlanarConfig    = 284
	tagExtraSamples    = 338
)

const maxTIFFValues = 1 << 20

// probeTIFF accepts baseline, uncompressed, chunky 8-bit grey/RGB/RGBA files
// whose strips follow each other without gaps.
func probeTIFF(r io.ReaderAt, w, h int) (*rawLayout, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, err
	}
	var bo binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, errors.New("tiff: bad byte order")
	}
	if bo.Uint16(hdr[2:]) != 42 {
		return nil, errors.New("tiff: not a classic tiff")
	}
	ifd := int64(bo.Uint32(hdr[4:]))
	var cnt [2]byte
	if _, err := r.ReadAt(cnt[:], ifd); err != nil {
		return nil, err
	}
	n := int(bo.Uint16(cnt[:]))
	entries := make([]byte, 12*n)
	if _, err := r.ReadAt(entries, ifd+2); err != nil {
		return nil, err
	}
	tags := make(map[uint16][]uint32, n)
	for i := 0; i < n; i++ {
		e := entries[12*i : 12*i+12]
		vals, err := tiffValues(r, bo, e)
		if err != nil {
			return nil, err
		}
		tags[bo.Uint16(e[0:2])] = vals
	}
	first := func(tag uint16, def uint32) uint32 {
		if v := tags[tag]; len(v) > 0 {
			return v[0]
		}
		return def
	}
	if int(first(tagImageWidth, 0)) != w || int(first(tagImageLength, 0)) != h {
		return nil, errors.New("tiff: size mismatch")
	}
	if c := first(tagCompression, 1); c != 1 {
		return nil, fmt.Errorf("tiff: compression %d", c)
	}
	if p := first(tagPlanarConfig, 1); p != 1 {
		return nil, errors.New("tiff: planar layout")
	}
	for _, b := range tags[tagBitsPerSample] {
		if b != 8 {
			return nil, fmt.Errorf("tiff: %d bits per sample", b)
		}
	}
	spp := int(first(tagSamplesPerPixel, 1))
	l := &rawLayout{bpp: spp, stride: int64(w * spp)}
	switch photometric := first(tagPhotometric, 1); {
	case photometric == 1 && spp == 1:
		l.model = modelGray
	case photometric == 2 && spp == 3:
		l.model = modelRGB
	case photometric == 2 && spp == 4:
		l.model = modelNRGBA
		if first(tagExtraSamples, 0) == 1 {
			l.model = modelRGBA
		}
	default:
		return nil, fmt.Errorf("tiff: photometric %d with %d samples", photometric, spp)
	}
	offsets := tags[tagStripOffsets]
	if len(offsets) == 0 {
		return nil, errors.New("tiff: no strips")
	}
	rps := int64(first(tagRowsPerStrip, uint32(h)))
	l.offset = int64(offsets[0])
	for i, off := range offsets {
		if int64(off) != l.offset+int64(i)*rps*l.stride {
			return nil, errors.New("tiff: strips are not contiguous")
		}
	}
	return l, nil
}

// tiffValues decodes a BYTE, SHORT or LONG IFD entry.
func tiffValues(r io.ReaderAt, bo binary.ByteOrder, e []byte) ([]uint32, error) {
	typ := bo.Uint16(e[2:4])
	count := bo.Uint32(e[4:8])
	var size int
	switch typ {
	case 1:
		size = 1
	case 3:
		size = 2
	case 4:
		size = 4
	default:
		return nil, nil
	}
	if count > maxTIFFValues {
		return nil, errors.New("tiff: oversized tag")
	}
	raw := e[8:12]
	if total := int(count) * size; total > 4 {
		raw = make([]byte, total)
		if _, err := r.ReadAt(raw, int64(bo.Uint32(e[8:12]))); err != nil {
			return nil, err
		}
	}
	out := make([]uint32, count)
	for i := range out {
		switch size {
		case 1:
			out[i] = uint32(raw[i])
		case 2:
			out[i] = uint32(bo.Uint16(raw[2*i:]))
		default:
			out[i] = bo.Uint32(raw[4*i:])
		}
	}
	return out, nil
}
