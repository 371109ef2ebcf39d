package presenter

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/soocke/probedoc-go/domain/overlay"
	"github.com/soocke/probedoc-go/domain/viewer"
	"github.com/soocke/probedoc-go/ui/model"
)

// ViewerHandle is the subset of *viewer.Viewer the presenter drives.
type ViewerHandle interface {
	Path() string
	ImageSize() image.Point
	Mode() viewer.Mode
	Zoom() (imscale float64, level int)
	AddModeListener(viewer.ModeListener)
	Resize(w, h int) error
	PointerPressed(pt image.Point)
	PointerDragged(pt image.Point) error
	PointerReleased(pt image.Point) (image.Point, bool, error)
	PointerMoved(pt image.Point) error
	KeyPressed(keysym string, ctrl bool) (bool, error)
	ToggleZoomIn() viewer.Mode
	ToggleZoomOut() viewer.Mode
	ToggleMagnifier() viewer.Mode
	RequestPosition(cb func(image.Point))
	Cancel()
	MarkerRadius() int
	SetMarkerRadius(r int)
	Frame(markers []overlay.Marker) *image.RGBA
	Stats() viewer.Stats
	Destroy()
}

var _ ViewerHandle = (*viewer.Viewer)(nil)

// Opener opens the image at path.
type Opener func(path string) (ViewerHandle, error)

// FrameView displays composed frames and a status line.
type FrameView interface {
	ShowFrame(img image.Image)
	SetStatus(text string)
}

var (
	// ErrNoImage is returned by operations that need an open image.
	ErrNoImage = errors.New("no image open")
	// ErrNoMarker is returned when a named marker does not exist.
	ErrNoMarker = errors.New("no such marker")
)

// ViewerPresenter owns the current viewer and forwards UI events to it.
// All methods run on the Tk event thread; the zero value ignores input.
type ViewerPresenter struct {
	open    Opener
	images  *model.ImageListModel
	markers *model.MarkerModel
	view    FrameView
	logger  *slog.Logger
	onMode  func(viewer.Mode)

	cur    ViewerHandle
	size   image.Point // last viewport size reported by the view
	radius int         // marker radius chosen in the UI, 0 keeps the configured one
	ctrl   bool
	dirty  bool
	notice string // one-shot status message

	stats atomic.Pointer[viewer.Stats]
}

func NewViewerPresenter(open Opener, images *model.ImageListModel, markers *model.MarkerModel, view FrameView, logger *slog.Logger) *ViewerPresenter {
	return &ViewerPresenter{open: open, images: images, markers: markers, view: view, logger: logger}
}

// OnMode registers fn for mode changes of every viewer opened afterwards.
func (p *ViewerPresenter) OnMode(fn func(viewer.Mode)) {
	if p != nil {
		p.onMode = fn
	}
}

// Current returns the open viewer, or nil.
func (p *ViewerPresenter) Current() ViewerHandle {
	if p == nil {
		return nil
	}
	return p.cur
}

// Open shows image i of the list. On failure the previous viewer stays.
func (p *ViewerPresenter) Open(i int) error {
	if p == nil || p.open == nil {
		return ErrNoImage
	}
	path, ok := p.images.Path(i)
	if !ok {
		return fmt.Errorf("image index %d out of range", i)
	}
	h, err := p.open(path)
	if err != nil {
		p.logger.Error("open failed", "path", path, "error", err)
		p.setNotice(fmt.Sprintf("Cannot open %s: %v", filepath.Base(path), err))
		return err
	}
	if p.cur != nil {
		p.cur.Destroy()
	}
	p.cur = h
	p.images.Select(i)
	h.AddModeListener(func(_, next viewer.Mode) {
		p.dirty = true
		if p.onMode != nil {
			p.onMode(next)
		}
	})
	if p.onMode != nil {
		p.onMode(h.Mode())
	}
	if p.radius > 0 {
		h.SetMarkerRadius(p.radius)
	}
	if p.size.X > 0 && p.size.Y > 0 {
		p.check(h.Resize(p.size.X, p.size.Y))
	}
	p.dirty = true
	return nil
}

// OpenPath adds path to the list and opens it. A path that fails to open
// stays in the list so it can be retried.
func (p *ViewerPresenter) OpenPath(path string) error {
	if p == nil {
		return ErrNoImage
	}
	path = strings.TrimSpace(path)
	if path == "" {
		p.setNotice("Enter an image path")
		return ErrNoImage
	}
	return p.Open(p.images.Append(path))
}

// Resize follows the viewport widget size.
func (p *ViewerPresenter) Resize(w, h int) {
	if p == nil || w <= 0 || h <= 0 || image.Pt(w, h) == p.size {
		return
	}
	p.size = image.Pt(w, h)
	if p.cur != nil {
		p.check(p.cur.Resize(w, h))
	}
}

func (p *ViewerPresenter) Press(pt image.Point) {
	if p == nil || p.cur == nil {
		return
	}
	p.cur.PointerPressed(pt)
}

func (p *ViewerPresenter) Drag(pt image.Point) {
	if p == nil || p.cur == nil {
		return
	}
	p.check(p.cur.PointerDragged(pt))
}

func (p *ViewerPresenter) Release(pt image.Point) {
	if p == nil || p.cur == nil {
		return
	}
	_, _, err := p.cur.PointerReleased(pt)
	p.check(err)
}

func (p *ViewerPresenter) Motion(pt image.Point) {
	if p == nil || p.cur == nil {
		return
	}
	if !p.cur.Mode().ShowsLoupe() {
		return
	}
	p.check(p.cur.PointerMoved(pt))
}

// KeyPress handles a key symbol. Control state is tracked from the
// Control_L/Control_R press and release events.
func (p *ViewerPresenter) KeyPress(keysym string) {
	if p == nil {
		return
	}
	switch keysym {
	case "Control_L", "Control_R":
		p.ctrl = true
		return
	}
	if p.cur == nil {
		return
	}
	if keysym == "Escape" {
		p.cur.Cancel()
		return
	}
	handled, err := p.cur.KeyPressed(keysym, p.ctrl)
	if handled {
		p.check(err)
	}
}

func (p *ViewerPresenter) KeyRelease(keysym string) {
	if p == nil {
		return
	}
	if keysym == "Control_L" || keysym == "Control_R" {
		p.ctrl = false
	}
}

// FocusLost forgets modifier state; the matching release goes elsewhere.
func (p *ViewerPresenter) FocusLost() {
	if p != nil {
		p.ctrl = false
	}
}

func (p *ViewerPresenter) ToggleZoomIn() {
	if p != nil && p.cur != nil {
		p.cur.ToggleZoomIn()
	}
}

func (p *ViewerPresenter) ToggleZoomOut() {
	if p != nil && p.cur != nil {
		p.cur.ToggleZoomOut()
	}
}

func (p *ViewerPresenter) ToggleMagnifier() {
	if p != nil && p.cur != nil {
		p.cur.ToggleMagnifier()
	}
}

// AddPoint validates a new marker and asks the viewer for its position.
// The marker is stored when the user clicks inside the image.
func (p *ViewerPresenter) AddPoint(name, colour string) error {
	if p == nil || p.cur == nil {
		return ErrNoImage
	}
	path := p.cur.Path()
	c, err := overlay.ParseColor(colour)
	if err != nil {
		p.setNotice(err.Error())
		return err
	}
	if err := p.markers.Validate(path, name); err != nil {
		p.setNotice(err.Error())
		return err
	}
	p.cur.RequestPosition(func(pos image.Point) {
		mk := overlay.Marker{Name: name, Color: c, Pos: pos}
		if err := p.markers.Add(path, mk); err != nil {
			p.setNotice(err.Error())
			return
		}
		p.logger.Info("marker added", "path", path, "name", mk.Name, "x", pos.X, "y", pos.Y)
		p.dirty = true
	})
	p.setNotice("Click the image to place " + name)
	return nil
}

// RemovePoint deletes the named marker of the current image. With an empty
// name the next click inside the image removes the nearest marker under it.
func (p *ViewerPresenter) RemovePoint(name string) error {
	if p == nil || p.cur == nil {
		return ErrNoImage
	}
	path := p.cur.Path()
	name = strings.TrimSpace(name)
	if name != "" {
		if !p.markers.Remove(path, name) {
			err := fmt.Errorf("%w: %q", ErrNoMarker, name)
			p.setNotice(err.Error())
			return err
		}
		p.logger.Info("marker removed", "path", path, "name", name)
		p.dirty = true
		return nil
	}
	radius := p.cur.MarkerRadius()
	p.cur.RequestPosition(func(pos image.Point) {
		mk, ok := p.markers.At(path, pos, radius)
		if !ok {
			p.setNotice("No marker there")
			return
		}
		p.markers.Remove(path, mk.Name)
		p.logger.Info("marker removed", "path", path, "name", mk.Name)
		p.dirty = true
	})
	p.setNotice("Click a marker to remove it")
	return nil
}

// SetMarkerRadius resizes the markers of this and every later image.
func (p *ViewerPresenter) SetMarkerRadius(r int) {
	if p == nil || r <= 0 {
		return
	}
	p.radius = r
	if p.cur != nil {
		p.cur.SetMarkerRadius(r)
		p.dirty = true
	}
}

// Stats returns the memory snapshot taken at the last redraw. It is safe
// to call from any goroutine.
func (p *ViewerPresenter) Stats() (viewer.Stats, bool) {
	if p == nil {
		return viewer.Stats{}, false
	}
	st := p.stats.Load()
	if st == nil {
		return viewer.Stats{}, false
	}
	return *st, true
}

// Tick pushes a new frame and status line when something changed.
func (p *ViewerPresenter) Tick() {
	if p == nil || p.view == nil || !p.dirty {
		return
	}
	p.dirty = false
	if p.cur == nil {
		if p.notice != "" {
			p.view.SetStatus(p.notice)
			p.notice = ""
		}
		return
	}
	frame := p.cur.Frame(p.markers.Markers(p.cur.Path()))
	p.view.ShowFrame(frame)
	viewer.RecycleFrame(frame)
	p.view.SetStatus(p.status())
	st := p.cur.Stats()
	p.stats.Store(&st)
}

// Close destroys the open viewer.
func (p *ViewerPresenter) Close() {
	if p == nil || p.cur == nil {
		return
	}
	p.cur.Destroy()
	p.cur = nil
	p.stats.Store(nil)
}

func (p *ViewerPresenter) status() string {
	if p.notice != "" {
		s := p.notice
		p.notice = ""
		return s
	}
	sz := p.cur.ImageSize()
	imscale, level := p.cur.Zoom()
	lv := fmt.Sprintf("level %d", level)
	if level < 0 {
		lv = "full resolution"
	}
	return fmt.Sprintf("%s  %dx%d  %.0f%%  %s  %d markers",
		filepath.Base(p.cur.Path()), sz.X, sz.Y, imscale*100, lv, len(p.markers.Markers(p.cur.Path())))
}

func (p *ViewerPresenter) setNotice(s string) {
	p.notice = s
	p.dirty = true
}

// check logs an input error and keeps the previous frame. Any successful
// input marks the frame dirty.
func (p *ViewerPresenter) check(err error) {
	if err != nil {
		p.logger.Error("viewer input failed", "error", err)
		return
	}
	p.dirty = true
}
