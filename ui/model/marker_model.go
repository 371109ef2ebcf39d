package model

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/soocke/probedoc-go/domain/overlay"
)

var (
	ErrEmptyName     = errors.New("marker name is empty")
	ErrDuplicateName = errors.New("marker name already used")
)

// MarkerModel holds the point markers of each image, keyed by image path.
// Names are unique per image. The zero value is usable.
// No synchronization needed: updates occur on the UI thread.
type MarkerModel struct {
	byPath map[string][]overlay.Marker
}

func NewMarkerModel() *MarkerModel { return &MarkerModel{} }

// Validate checks that name can be added to the markers of path.
func (m *MarkerModel) Validate(path, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if m == nil {
		return nil
	}
	for _, mk := range m.byPath[path] {
		if mk.Name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	return nil
}

// Add stores a marker for path. The name is trimmed before validation.
func (m *MarkerModel) Add(path string, mk overlay.Marker) error {
	if m == nil {
		return nil
	}
	mk.Name = strings.TrimSpace(mk.Name)
	if err := m.Validate(path, mk.Name); err != nil {
		return err
	}
	if m.byPath == nil {
		m.byPath = make(map[string][]overlay.Marker)
	}
	m.byPath[path] = append(m.byPath[path], mk)
	return nil
}

// Remove deletes the named marker and reports whether it existed.
func (m *MarkerModel) Remove(path, name string) bool {
	if m == nil {
		return false
	}
	list := m.byPath[path]
	for i, mk := range list {
		if mk.Name == name {
			m.byPath[path] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Markers returns a copy of the markers of path in insertion order.
func (m *MarkerModel) Markers(path string) []overlay.Marker {
	if m == nil {
		return nil
	}
	return append([]overlay.Marker(nil), m.byPath[path]...)
}

// At returns the marker of path nearest to pos within radius image pixels.
func (m *MarkerModel) At(path string, pos image.Point, radius int) (overlay.Marker, bool) {
	if m == nil {
		return overlay.Marker{}, false
	}
	best, bestD := -1, radius*radius
	for i, mk := range m.byPath[path] {
		d := mk.Pos.Sub(pos)
		if dd := d.X*d.X + d.Y*d.Y; dd <= bestD {
			best, bestD = i, dd
		}
	}
	if best < 0 {
		return overlay.Marker{}, false
	}
	return m.byPath[path][best], true
}
