package model

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/soocke/probedoc-go/domain/overlay"
)

func mk(name string, x, y int) overlay.Marker {
	return overlay.Marker{Name: name, Color: color.RGBA{R: 255, A: 255}, Pos: image.Pt(x, y)}
}

func TestMarkerModel_UniquePerImage(t *testing.T) {
	m := NewMarkerModel()
	if err := m.Add("a.png", mk(" p1 ", 1, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add("a.png", mk("p1", 5, 5)); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := m.Add("b.png", mk("p1", 5, 5)); err != nil {
		t.Fatalf("same name on another image should be fine: %v", err)
	}
	if err := m.Add("a.png", mk("  ", 0, 0)); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	got := m.Markers("a.png")
	if len(got) != 1 || got[0].Name != "p1" || got[0].Pos != image.Pt(1, 2) {
		t.Fatalf("unexpected markers %+v", got)
	}
	got[0].Name = "mutated"
	if m.Markers("a.png")[0].Name != "p1" {
		t.Fatalf("Markers must return a copy")
	}
}

func TestMarkerModel_RemoveAndAt(t *testing.T) {
	var m MarkerModel // zero value usable
	_ = m.Add("a", mk("x", 10, 10))
	_ = m.Add("a", mk("y", 20, 10))
	_ = m.Add("a", mk("z", 30, 10))
	if got, ok := m.At("a", image.Pt(18, 11), 3); !ok || got.Name != "y" {
		t.Fatalf("At = %+v, %v", got, ok)
	}
	if _, ok := m.At("a", image.Pt(15, 15), 3); ok {
		t.Fatalf("no marker expected within radius")
	}
	if !m.Remove("a", "y") || m.Remove("a", "y") {
		t.Fatalf("remove should succeed once")
	}
	got := m.Markers("a")
	if len(got) != 2 || got[0].Name != "x" || got[1].Name != "z" {
		t.Fatalf("order not preserved: %+v", got)
	}
	var nilModel *MarkerModel
	if nilModel.Markers("a") != nil || nilModel.Remove("a", "x") {
		t.Fatalf("nil model should be inert")
	}
}
