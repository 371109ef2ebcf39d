package viewport

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSelectLevel(t *testing.T) {
	cases := []struct {
		k         float64
		levels    int
		huge      bool
		wantLevel int
		wantScale float64
	}{
		{0.1, 4, false, 3, 0.8},
		{0.125, 4, false, 3, 1},
		{0.01, 4, false, 3, 0.08},
		{1, 4, false, 0, 1},
		{1.3, 4, false, 0, 1.3},
		{20000.0 / 14000.0, 4, true, Passthrough, 20000.0 / 14000.0},
		{3, 4, true, Passthrough, 3},
		{0.7, 4, true, 0, 0.7},
		{0.3, 4, true, 1, 0.6},
	}
	for _, tc := range cases {
		level, scale := SelectLevel(tc.k, 2, tc.levels, tc.huge)
		if level != tc.wantLevel || !near(scale, tc.wantScale, 1e-9) {
			t.Fatalf("k=%v: level=%d scale=%v want %d %v", tc.k, level, scale, tc.wantLevel, tc.wantScale)
		}
	}
}

func TestRoundTripMapping(t *testing.T) {
	v := New(Params{Width: 4000, Height: 3000, Reduction: 2, Levels: 4, ScreenW: 800, ScreenH: 600})
	v.ScaleAbout(123, 77, 1.3)
	v.ScaleAbout(400, 300, 1/1.3/1.3/1.3)
	v.ScrollBy(50, 20)
	for _, p := range [][2]float64{{0, 0}, {1, 1}, {3999, 2999}, {1234, 567}} {
		cx, cy := v.ImageToCanvas(p[0], p[1])
		ix, iy := v.CanvasToImage(cx, cy)
		if !near(ix, p[0], 1) || !near(iy, p[1], 1) {
			t.Fatalf("canvas round trip %v -> %v,%v", p, ix, iy)
		}
		sx, sy := v.ImageToScreen(p[0], p[1])
		ix, iy = v.ScreenToImage(sx, sy)
		if !near(ix, p[0], 1) || !near(iy, p[1], 1) {
			t.Fatalf("screen round trip %v -> %v,%v", p, ix, iy)
		}
	}
}

func TestScaleAboutKeepsCenterFixed(t *testing.T) {
	v := New(Params{Width: 1000, Height: 800, Reduction: 2, Levels: 2, ScreenW: 800, ScreenH: 600})
	ix, iy := v.CanvasToImage(250, 100)
	v.ScaleAbout(250, 100, 1.3)
	jx, jy := v.CanvasToImage(250, 100)
	if !near(ix, jx, 1e-9) || !near(iy, jy, 1e-9) {
		t.Fatalf("zoom center moved: %v,%v -> %v,%v", ix, iy, jx, jy)
	}
	if c := v.Container(); !near(c.Dx(), 1300, 1e-9) || !near(c.Dy(), 1040, 1e-9) {
		t.Fatalf("container = %+v", c)
	}
}

func TestOutsideOpenInterval(t *testing.T) {
	v := New(Params{Width: 100, Height: 50, Reduction: 2, Levels: 1, ScreenW: 800, ScreenH: 600})
	for _, p := range [][2]float64{{0, 10}, {100, 10}, {10, 0}, {10, 50}, {-1, -1}, {200, 10}} {
		if !v.Outside(p[0], p[1]) {
			t.Fatalf("%v should be outside", p)
		}
	}
	if v.Outside(50, 25) || v.Outside(0.5, 49.5) {
		t.Fatalf("interior point reported outside")
	}
}

func TestScrollRegionAndConfine(t *testing.T) {
	v := New(Params{Width: 4000, Height: 3000, Reduction: 2, Levels: 4, ScreenW: 800, ScreenH: 600})
	if r := v.Region(); r != (Rect{0, 0, 4000, 3000}) {
		t.Fatalf("initial region %+v", r)
	}
	v.ScrollUnits(-1, -1, 0.1)
	if x, y := v.Origin(); x != 0 || y != 0 {
		t.Fatalf("scrolled past region: %v,%v", x, y)
	}
	v.ScrollUnits(2, 1, 0.1)
	if x, y := v.Origin(); x != 160 || y != 60 {
		t.Fatalf("unit scroll origin %v,%v", x, y)
	}
	v.ScrollBy(1e6, 1e6)
	if x, y := v.Origin(); x != 3200 || y != 2400 {
		t.Fatalf("confined origin %v,%v", x, y)
	}

	small := New(Params{Width: 300, Height: 200, Reduction: 2, Levels: 1, ScreenW: 800, ScreenH: 600})
	if r := small.Region(); r != (Rect{0, 0, 300, 200}) {
		t.Fatalf("small image region %+v", r)
	}
	small.ScrollBy(-1000, 0)
	if x, _ := small.Origin(); x != -500 {
		t.Fatalf("image must stay inside a larger window, origin x=%v", x)
	}
}
