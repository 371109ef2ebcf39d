package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spakin/netpbm"
	"golang.org/x/image/tiff"
)

// gradient fills an RGBA image with position-dependent pixels.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x + y), 0xff})
		}
	}
	return img
}

func writeFile(t *testing.T, name string, write func(f *os.File) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// encodePPM writes img as binary PPM with 8-bit samples.
func encodePPM(f *os.File, img image.Image) error {
	return netpbm.Encode(f, img, &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255})
}

func TestOpen_PNMIsBandDecodable(t *testing.T) {
	src := gradient(40, 30)
	path := writeFile(t, "a.ppm", func(f *os.File) error { return encodePPM(f, src) })
	img, err := Open(path, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if img.Width != 40 || img.Height != 30 {
		t.Fatalf("unexpected header: %+v", img)
	}
	if !img.CanBandDecode() {
		t.Fatalf("expected band decodable: %v", img.layoutErr)
	}
	if img.IsHuge() {
		t.Fatalf("40x30 is not huge at threshold 100")
	}
	full, err := img.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := color.RGBAModel.Convert(full.At(7, 5)).(color.RGBA); got != src.RGBAAt(7, 5) {
		t.Fatalf("pixel mismatch: %v vs %v", got, src.RGBAAt(7, 5))
	}
}

func TestOpen_HugeNeedsBothPixelsAndLayout(t *testing.T) {
	path := writeFile(t, "a.ppm", func(f *os.File) error { return encodePPM(f, gradient(50, 40)) })
	img, err := Open(path, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !img.IsHuge() {
		t.Fatalf("expected huge")
	}
	pngPath := writeFile(t, "a.png", func(f *os.File) error { return png.Encode(f, gradient(50, 40)) })
	img, err = Open(pngPath, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !img.HugePixels() || img.IsHuge() {
		t.Fatalf("png must not take the banded path")
	}
	if _, err := img.Bands(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.png"), 100); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("missing file: expected ErrUnreadableImage, got %v", err)
	}
	path := writeFile(t, "junk.png", func(f *os.File) error {
		_, err := f.Write([]byte("definitely not an image"))
		return err
	})
	if _, err := Open(path, 100); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("corrupt file: expected ErrUnreadableImage, got %v", err)
	}
}

func TestTIFFLayouts(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 16, 12))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	cases := []struct {
		name string
		img  image.Image
		opts *tiff.Options
		band bool
	}{
		{"gray", gray, &tiff.Options{Compression: tiff.Uncompressed}, true},
		{"rgba", gradient(16, 12), &tiff.Options{Compression: tiff.Uncompressed}, true},
		{"deflate", gradient(16, 12), &tiff.Options{Compression: tiff.Deflate}, false},
	}
	for _, tc := range cases {
		path := writeFile(t, tc.name+".tif", func(f *os.File) error { return tiff.Encode(f, tc.img, tc.opts) })
		img, err := Open(path, 1)
		if err != nil {
			t.Fatalf("%s: open: %v", tc.name, err)
		}
		if img.CanBandDecode() != tc.band {
			t.Fatalf("%s: band decodable=%v want %v (%v)", tc.name, img.CanBandDecode(), tc.band, img.layoutErr)
		}
		if !tc.band {
			continue
		}
		br, err := img.Bands()
		if err != nil {
			t.Fatalf("%s: bands: %v", tc.name, err)
		}
		got, err := br.ReadRect(image.Rect(3, 4, 9, 7))
		br.Close()
		if err != nil {
			t.Fatalf("%s: read: %v", tc.name, err)
		}
		want := color.RGBAModel.Convert(tc.img.At(5, 6))
		if c := color.RGBAModel.Convert(got.At(2, 2)); c != want {
			t.Fatalf("%s: pixel (5,6) = %v want %v", tc.name, c, want)
		}
	}
}

func TestBandReader_SingleHandleAndPeak(t *testing.T) {
	src := gradient(64, 48)
	path := writeFile(t, "b.ppm", func(f *os.File) error { return encodePPM(f, src) })
	img, err := Open(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	br, err := img.Bands()
	if err != nil {
		t.Fatal(err)
	}
	if br.Held() {
		t.Fatalf("handle open before first read")
	}
	band, err := br.ReadBand(10, 8)
	if err != nil {
		t.Fatalf("read band: %v", err)
	}
	if b := band.Bounds(); b.Dx() != 64 || b.Dy() != 8 {
		t.Fatalf("band bounds %v", b)
	}
	if got := band.(*image.RGBA).RGBAAt(20, 3); got != src.RGBAAt(20, 13) {
		t.Fatalf("band pixel %v want %v", got, src.RGBAAt(20, 13))
	}
	if !br.Held() {
		t.Fatalf("expected held handle after read")
	}
	if _, err := br.ReadRect(image.Rect(60, 40, 80, 60)); err != nil {
		t.Fatalf("clipped read: %v", err)
	}
	if br.PeakPixels() != 64*8 {
		t.Fatalf("peak = %d want %d", br.PeakPixels(), 64*8)
	}
	br.Release()
	if br.Held() {
		t.Fatalf("handle still held after release")
	}
	if _, err := br.ReadRect(image.Rect(100, 100, 120, 120)); err == nil {
		t.Fatalf("expected error for rect outside image")
	}
}

func TestPNMHeaderComments(t *testing.T) {
	path := writeFile(t, "c.pgm", func(f *os.File) error {
		if _, err := f.Write([]byte("P5\n# made by hand\n3 2\n255\n")); err != nil {
			return err
		}
		_, err := f.Write([]byte{1, 2, 3, 4, 5, 6})
		return err
	})
	img, err := Open(path, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if img.Width != 3 || img.Height != 2 || !img.CanBandDecode() {
		t.Fatalf("unexpected: %+v", img)
	}
	full, err := img.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if g := color.GrayModel.Convert(full.At(2, 1)).(color.Gray).Y; g != 6 {
		t.Fatalf("pixel = %d want 6", g)
	}
}

func TestPNMLayout_RejectsWideSamples(t *testing.T) {
	path := writeFile(t, "wide.pgm", func(f *os.File) error {
		if _, err := f.Write([]byte("P5\n2 2\n65535\n")); err != nil {
			return err
		}
		_, err := f.Write(make([]byte, 2*2*2))
		return err
	})
	img, err := Open(path, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if img.CanBandDecode() {
		t.Fatalf("16-bit samples must not be band decodable")
	}
	if _, err := img.Bands(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
