package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	// Registers PBM/PGM/PPM/PAM decoders with package image.
	_ "github.com/spakin/netpbm"
)

// Binary netpbm with maxval 255 (P5 grey, P6 RGB) ends with exactly
// w*h*channels packed sample bytes, so the header length follows from
// the file size. The header is still scanned to reject 16-bit samples.

const maxPNMHeader = 64 << 10

// pnmChannels returns the sample count per pixel for binary PGM/PPM files,
// or 0 for anything else.
func pnmChannels(r io.ReaderAt) int {
	var magic [2]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil || magic[0] != 'P' {
		return 0
	}
	switch magic[1] {
	case '5':
		return 1
	case '6':
		return 3
	}
	return 0
}

func pnmLayout(r io.ReaderAt, size int64, w, h int) (*rawLayout, error) {
	ch := pnmChannels(r)
	if ch == 0 {
		return nil, errors.New("pnm: not a binary PGM/PPM file")
	}
	offset := size - int64(w)*int64(h)*int64(ch)
	if offset < int64(len("P5 1 1 255\n")) || offset > maxPNMHeader {
		return nil, fmt.Errorf("pnm: %d header bytes, samples are not 8-bit", offset)
	}
	hdr := make([]byte, offset)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return nil, err
	}
	var fields [][]byte
	for _, line := range bytes.Split(hdr, []byte("\n")) {
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields = append(fields, bytes.Fields(line)...)
	}
	if len(fields) != 4 || string(fields[3]) != "255" {
		return nil, errors.New("pnm: header does not end in maxval 255")
	}
	l := &rawLayout{offset: offset, stride: int64(w * ch), bpp: ch, model: modelRGB}
	if ch == 1 {
		l.model = modelGray
	}
	return l, nil
}
