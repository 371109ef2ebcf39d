package model

import "testing"

func TestImageListModel(t *testing.T) {
	m := NewImageListModel("/data/a.png", "/data/b.tif", "/data/a.png")
	if m.Len() != 2 {
		t.Fatalf("duplicates not removed: %d", m.Len())
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("nothing selected yet")
	}
	if m.Append("/data/b.tif") != 1 || m.Append("/data/c.pgm") != 2 {
		t.Fatalf("append indices wrong")
	}
	titles := m.Titles()
	if titles[0] != "a.png" || titles[2] != "c.pgm" {
		t.Fatalf("titles %v", titles)
	}
	if m.Select(3) || !m.Select(1) {
		t.Fatalf("select bounds wrong")
	}
	if p, ok := m.Current(); !ok || p != "/data/b.tif" {
		t.Fatalf("current %q %v", p, ok)
	}
	var z ImageListModel
	if z.Len() != 0 || z.Index("x") != -1 {
		t.Fatalf("zero value not empty")
	}
}
