package viewer

import (
	"image"
	"testing"
)

func TestAcquireFrame_Sizes(t *testing.T) {
	big := acquireFrame(image.Rect(0, 0, 40, 30))
	if len(big.Pix) != 40*30*4 || big.Stride != 160 {
		t.Fatalf("bad frame: len=%d stride=%d", len(big.Pix), big.Stride)
	}
	RecycleFrame(big)
	small := acquireFrame(image.Rect(0, 0, 10, 5))
	if len(small.Pix) != 10*5*4 || small.Stride != 40 || small.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bad reused frame: len=%d stride=%d bounds=%v", len(small.Pix), small.Stride, small.Bounds())
	}
	if e := acquireFrame(image.Rect(0, 0, 0, 7)); len(e.Pix) != 0 {
		t.Fatalf("empty rect should have no pixels")
	}
	RecycleFrame(nil)
}
