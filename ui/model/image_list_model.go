package model

import "path/filepath"

// ImageListModel tracks the images offered in the selector and the one
// currently shown. The zero value is empty and usable.
type ImageListModel struct {
	paths   []string
	current int
	set     bool
}

// NewImageListModel returns a model holding paths with duplicates removed.
func NewImageListModel(paths ...string) *ImageListModel {
	m := &ImageListModel{}
	for _, p := range paths {
		m.Append(p)
	}
	return m
}

// Append adds p unless it is already listed and returns its index.
func (m *ImageListModel) Append(p string) int {
	if m == nil {
		return -1
	}
	if i := m.Index(p); i >= 0 {
		return i
	}
	m.paths = append(m.paths, p)
	return len(m.paths) - 1
}

func (m *ImageListModel) Index(p string) int {
	if m == nil {
		return -1
	}
	for i, q := range m.paths {
		if q == p {
			return i
		}
	}
	return -1
}

func (m *ImageListModel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paths)
}

func (m *ImageListModel) Path(i int) (string, bool) {
	if m == nil || i < 0 || i >= len(m.paths) {
		return "", false
	}
	return m.paths[i], true
}

// Titles returns the base names shown in the selector.
func (m *ImageListModel) Titles() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.paths))
	for i, p := range m.paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// Select marks index i as the current image.
func (m *ImageListModel) Select(i int) bool {
	if m == nil || i < 0 || i >= len(m.paths) {
		return false
	}
	m.current, m.set = i, true
	return true
}

// Current returns the selected path.
func (m *ImageListModel) Current() (string, bool) {
	if m == nil || !m.set {
		return "", false
	}
	return m.paths[m.current], true
}
