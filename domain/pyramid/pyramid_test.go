package pyramid

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/domain/resample"
	"github.com/soocke/probedoc-go/domain/source"
	"github.com/spakin/netpbm"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func writeImage(t *testing.T, name string, img image.Image, enc func(*os.File, image.Image) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := enc(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func pnm(f *os.File, img image.Image) error {
	return netpbm.Encode(f, img, &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255})
}

func pngEnc(f *os.File, img image.Image) error { return png.Encode(f, img) }

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 120, 200, 255
	}
	return img
}

func newTestBuilder(t *testing.T, mut func(*config.Config)) *Builder {
	t.Helper()
	cfg := config.DefaultConfig()
	if mut != nil {
		mut(cfg)
	}
	rs, err := resample.New(cfg.Filter)
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(cfg, rs, discardLogger)
}

func TestSizes_Example(t *testing.T) {
	got := Sizes(4000, 3000, 2, 512)
	want := []image.Point{{4000, 3000}, {2000, 1500}, {1000, 750}, {500, 375}}
	if len(got) != len(want) {
		t.Fatalf("levels = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("level %d = %v want %v", i, got[i], want[i])
		}
	}
	// Halving continues while either side is above the top size.
	got = Sizes(2000, 300, 2, 512)
	if last := got[len(got)-1]; last != image.Pt(500, 75) {
		t.Fatalf("last = %v", last)
	}
}

func TestBuild_NormalImageMonotonic(t *testing.T) {
	path := writeImage(t, "n.png", solid(1100, 700), pngEnc)
	src, err := source.Open(path, 14000)
	if err != nil {
		t.Fatal(err)
	}
	p, err := newTestBuilder(t, nil).Build(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer p.Close()
	if p.Huge || p.Ratio != 1 || p.Bands != nil {
		t.Fatalf("unexpected huge pyramid: %+v", p)
	}
	if len(p.Levels) != 3 {
		t.Fatalf("levels = %d want 3", len(p.Levels))
	}
	for i := 1; i < len(p.Levels); i++ {
		prev, cur := p.Levels[i-1], p.Levels[i]
		if cur.Width != prev.Width/2 || cur.Height != prev.Height/2 {
			t.Fatalf("level %d = %dx%d after %dx%d", i, cur.Width, cur.Height, prev.Width, prev.Height)
		}
		if b := cur.Image.Bounds(); b.Dx() != cur.Width || b.Dy() != cur.Height {
			t.Fatalf("level %d image bounds %v", i, b)
		}
	}
	if top := p.Levels[2]; top.Width > 512 || top.Height > 512 {
		t.Fatalf("top level too large: %dx%d", top.Width, top.Height)
	}
	if got, want := p.Bytes(), uint64(1100*700+550*350+275*175)*4; got != want {
		t.Fatalf("bytes = %d want %d", got, want)
	}
}

func TestBuild_HugeBandedBoundsMemory(t *testing.T) {
	path := writeImage(t, "h.ppm", solid(200, 160), pnm)
	src, err := source.Open(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !src.IsHuge() {
		t.Fatalf("expected huge source")
	}
	b := newTestBuilder(t, func(c *config.Config) {
		c.HugeThreshold = 100
		c.BandHeight = 32
		c.PyramidTopSize = 40
	})
	p, err := b.Build(src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer p.Close()
	if !p.Huge || p.Ratio != 2 {
		t.Fatalf("huge=%v ratio=%v", p.Huge, p.Ratio)
	}
	l0 := p.Levels[0]
	if !l0.Synthetic || l0.Width != 100 || l0.Height != 80 {
		t.Fatalf("synthetic level = %+v", l0)
	}
	synthetic := 0
	for _, l := range p.Levels {
		if l.Synthetic {
			synthetic++
		}
	}
	if synthetic != 1 || len(p.Levels) != 3 {
		t.Fatalf("levels=%d synthetic=%d", len(p.Levels), synthetic)
	}
	if peak := p.Bands.PeakPixels(); peak > 200*32 {
		t.Fatalf("peak decoded pixels %d exceeds one band", peak)
	}
	if p.Bands.Held() {
		t.Fatalf("handle left open after build")
	}
	c := color.RGBAModel.Convert(l0.Image.At(50, 79)).(color.RGBA)
	if c.B < 190 || c.A != 255 {
		t.Fatalf("last row not filled: %v", c)
	}
}

func TestBuild_HugeWithoutLayout(t *testing.T) {
	path := writeImage(t, "h.png", solid(120, 100), pngEnc)
	src, err := source.Open(path, 50)
	if err != nil {
		t.Fatal(err)
	}
	b := newTestBuilder(t, func(c *config.Config) { c.HugeThreshold = 50 })
	b.MaxFullDecodeBytes = 1000
	if _, err := b.Build(src); !errors.Is(err, source.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	b.MaxFullDecodeBytes = 1 << 20
	p, err := b.Build(src)
	if err != nil {
		t.Fatalf("fallback decode: %v", err)
	}
	if p.Huge || p.Levels[0].Width != 120 {
		t.Fatalf("expected full decode fallback: %+v", p.Levels[0])
	}
}
