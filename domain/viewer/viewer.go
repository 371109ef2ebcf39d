// Package viewer ties the pyramid, viewport, renderer and overlays into one
// interactive image view driven by discrete input events.
//
// A Viewer is not safe for concurrent use; all methods must be called from
// the UI event thread.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/domain/overlay"
	"github.com/soocke/probedoc-go/domain/pyramid"
	"github.com/soocke/probedoc-go/domain/render"
	"github.com/soocke/probedoc-go/domain/resample"
	"github.com/soocke/probedoc-go/domain/source"
	"github.com/soocke/probedoc-go/domain/viewport"
)

// ErrDestroyed is returned by operations on a destroyed viewer.
var ErrDestroyed = errors.New("viewer destroyed")

// Zoom directions for ZoomStep.
const (
	ZoomOut = -1
	ZoomIn  = 1
)

// ZoomObserver is told about each accepted zoom step: the canvas point it
// was centred on and the factor applied.
type ZoomObserver func(cx, cy, factor float64)

// Viewer shows one image.
type Viewer struct {
	id     string
	cfg    *config.Config
	logger *slog.Logger

	src     *source.Image
	pyr     *pyramid.Pyramid
	vp      *viewport.Viewport
	rend    *render.Renderer
	rs      resample.Resampler
	modes   *ModeMachine
	painter *overlay.Painter
	bg      color.RGBA
	radius  int // marker radius in image pixels

	tile    render.Tile
	hasTile bool
	loupe   *Loupe
	pick    func(image.Point) // set only while ModePositionPick

	pressed   bool
	dragged   bool
	pressAt   image.Point
	lastDrag  image.Point
	pointer   image.Point
	observers []ZoomObserver
	destroyed bool
}

// Open decodes the image header, builds its pyramid and renders the first
// frame into a viewport of the configured size. A failed open leaves
// nothing behind.
func Open(path string, cfg *config.Config, logger *slog.Logger) (*Viewer, error) {
	rs, err := resample.New(cfg.Filter)
	if err != nil {
		return nil, err
	}
	src, err := source.Open(path, cfg.HugeThreshold)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger = logger.With("viewer", id)
	pyr, err := pyramid.NewBuilder(cfg, rs, logger).Build(src)
	if err != nil {
		return nil, err
	}
	bg, err := overlay.ParseColor(cfg.Background)
	if err != nil {
		bg = color.RGBA{A: 0xff}
	}
	v := &Viewer{
		id:      id,
		cfg:     cfg,
		logger:  logger,
		src:     src,
		pyr:     pyr,
		rs:      rs,
		rend:    render.New(pyr, rs, logger),
		modes:   NewModeMachine(logger),
		painter: overlay.NewPainter(64),
		bg:      bg,
		radius:  cfg.MarkerRadius,
		vp: viewport.New(viewport.Params{
			Width: src.Width, Height: src.Height,
			Reduction: pyr.Reduction, Levels: len(pyr.Levels),
			Ratio: pyr.Ratio, Huge: pyr.Huge,
			ScreenW: cfg.ViewportWidth, ScreenH: cfg.ViewportHeight,
		}),
	}
	v.modes.AddListener(v.onModeChange)
	if err := v.redraw(); err != nil {
		v.Destroy()
		return nil, err
	}
	logger.Info("image opened", "path", path, "format", src.Format,
		"size", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"pixels", humanize.Comma(int64(src.Width)*int64(src.Height)),
		"huge", pyr.Huge, "levels", len(pyr.Levels))
	return v, nil
}

func (v *Viewer) ID() string                     { return v.id }
func (v *Viewer) Path() string                   { return v.src.Path }
func (v *Viewer) ImageSize() image.Point         { return v.src.Size() }
func (v *Viewer) Viewport() *viewport.Viewport   { return v.vp }
func (v *Viewer) Pyramid() *pyramid.Pyramid      { return v.pyr }
func (v *Viewer) Mode() Mode                     { return v.modes.Current() }
func (v *Viewer) Loupe() *Loupe                  { return v.loupe }
func (v *Viewer) Tile() (render.Tile, bool)      { return v.tile, v.hasTile }
func (v *Viewer) AddModeListener(l ModeListener) { v.modes.AddListener(l) }

// Zoom reports the current zoom factor and pyramid level.
func (v *Viewer) Zoom() (imscale float64, level int) { return v.vp.Imscale(), v.vp.Level() }

// AddZoomObserver registers o for accepted zoom steps.
func (v *Viewer) AddZoomObserver(o ZoomObserver) {
	if o != nil {
		v.observers = append(v.observers, o)
	}
}

func (v *Viewer) redraw() error {
	tile, ok, err := v.rend.Render(v.vp)
	if err != nil {
		v.logger.Error("render failed", "error", err)
		return err
	}
	v.tile, v.hasTile = tile, ok
	return nil
}

// Resize changes the visible screen size and re-renders.
func (v *Viewer) Resize(w, h int) error {
	if v.destroyed {
		return ErrDestroyed
	}
	v.vp.Resize(w, h)
	return v.redraw()
}

// Scroll moves the view by (dx, dy) screen pixels within the scroll region.
func (v *Viewer) Scroll(dx, dy float64) error {
	if v.destroyed {
		return ErrDestroyed
	}
	v.vp.ScrollBy(dx, dy)
	return v.redraw()
}

// ScrollUnits scrolls by whole keyboard units.
func (v *Viewer) ScrollUnits(ux, uy int) error {
	if v.destroyed {
		return ErrDestroyed
	}
	v.vp.ScrollUnits(ux, uy, v.cfg.KeyScrollFraction)
	return v.redraw()
}

// PanDrag moves the image with the pointer by (dx, dy) screen pixels.
func (v *Viewer) PanDrag(dx, dy float64) error {
	return v.Scroll(-dx, -dy)
}

// ZoomStep applies one zoom step centred on the screen point pt. It reports
// false without changing anything when pt is outside the image or a zoom
// guard rejects the step.
func (v *Viewer) ZoomStep(dir int, pt image.Point) (bool, error) {
	if v.destroyed {
		return false, ErrDestroyed
	}
	cx, cy := v.vp.ScreenToCanvas(float64(pt.X), float64(pt.Y))
	if v.vp.Outside(cx, cy) {
		return false, nil
	}
	delta := v.cfg.ZoomDelta
	imscale := v.vp.Imscale()
	var factor float64
	switch {
	case dir < 0:
		minSide := float64(min(v.src.Width, v.src.Height))
		if math.Round(minSide*imscale/delta) < float64(v.cfg.MinImageSide) {
			v.logger.Debug("zoom out rejected", "imscale", imscale)
			return false, nil
		}
		factor = 1 / delta
	case dir > 0:
		sz := v.vp.ScreenSize()
		if imscale*delta > float64(min(sz.X, sz.Y)>>1) {
			v.logger.Debug("zoom in rejected", "imscale", imscale)
			return false, nil
		}
		factor = delta
	default:
		return false, nil
	}
	v.vp.ScaleAbout(cx, cy, factor)
	for _, o := range v.observers {
		o(cx, cy, factor)
	}
	v.logger.Debug("zoom", "imscale", v.vp.Imscale(), "level", v.vp.Level(), "scale", v.vp.Scale())
	if err := v.redraw(); err != nil {
		return true, err
	}
	if v.loupe != nil {
		return true, v.magnify(v.loupe.Center)
	}
	return true, nil
}

// ImageToScreen maps an image pixel to the screen.
func (v *Viewer) ImageToScreen(p image.Point) image.Point {
	x, y := v.vp.ImageToScreen(float64(p.X), float64(p.Y))
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// ScreenToImage maps a screen point to the image pixel under it. ok is false
// when the point is outside the image.
func (v *Viewer) ScreenToImage(pt image.Point) (image.Point, bool) {
	cx, cy := v.vp.ScreenToCanvas(float64(pt.X), float64(pt.Y))
	if v.vp.Outside(cx, cy) {
		return image.Point{}, false
	}
	ix, iy := v.vp.CanvasToImage(cx, cy)
	p := image.Pt(int(ix), int(iy))
	p.X = min(max(p.X, 0), v.src.Width-1)
	p.Y = min(max(p.Y, 0), v.src.Height-1)
	return p, true
}

// ToggleZoomIn arms or disarms zoom-in clicks.
func (v *Viewer) ToggleZoomIn() Mode {
	m, _ := v.modes.Fire(InputToggleZoomIn)
	return m
}

// ToggleZoomOut arms or disarms zoom-out clicks.
func (v *Viewer) ToggleZoomOut() Mode {
	m, _ := v.modes.Fire(InputToggleZoomOut)
	return m
}

// ToggleMagnifier arms or disarms the magnifier.
func (v *Viewer) ToggleMagnifier() Mode {
	m, _ := v.modes.Fire(InputToggleMagnifier)
	return m
}

// ArmMagnifier switches to ModeMagnifier unless it is active or a position
// pick is pending.
func (v *Viewer) ArmMagnifier() {
	if m := v.modes.Current(); m != ModeMagnifier && m != ModePositionPick {
		v.modes.Fire(InputToggleMagnifier)
	}
}

// DisarmMagnifier leaves ModeMagnifier, removing the loupe.
func (v *Viewer) DisarmMagnifier() {
	if v.modes.Current() == ModeMagnifier {
		v.modes.Fire(InputToggleMagnifier)
	}
}

// RequestPosition arms the magnifier and hands the image position of the
// next click inside the image to cb, then returns to ModeIdle.
func (v *Viewer) RequestPosition(cb func(image.Point)) {
	if cb == nil || v.destroyed {
		return
	}
	v.modes.Fire(InputRequestPick)
	if v.modes.Current() == ModePositionPick {
		v.pick = cb
	}
}

// Cancel returns to ModeIdle, dropping a pending position pick.
func (v *Viewer) Cancel() { v.modes.Fire(InputCancel) }

func (v *Viewer) onModeChange(prev, next Mode) {
	if !next.ShowsLoupe() {
		v.hideLoupe()
	}
	if prev == ModePositionPick {
		v.pick = nil
	}
}

// PointerPressed starts a press that becomes a click or a drag.
func (v *Viewer) PointerPressed(pt image.Point) {
	v.pressed, v.dragged = true, false
	v.pressAt, v.lastDrag, v.pointer = pt, pt, pt
}

// PointerDragged pans once the pointer has moved past the click slop.
// Drags are ignored while a zoom mode is armed.
func (v *Viewer) PointerDragged(pt image.Point) error {
	if !v.pressed || v.destroyed {
		return nil
	}
	v.pointer = pt
	if !v.dragged {
		d := pt.Sub(v.pressAt)
		slop := v.cfg.ClickSlop
		if d.X*d.X+d.Y*d.Y <= slop*slop {
			return nil
		}
		v.dragged = true
	}
	if m := v.modes.Current(); m == ModeZoomIn || m == ModeZoomOut {
		return nil
	}
	d := pt.Sub(v.lastDrag)
	v.lastDrag = pt
	if err := v.PanDrag(float64(d.X), float64(d.Y)); err != nil {
		return err
	}
	if v.loupe != nil {
		return v.magnify(pt)
	}
	return nil
}

// PointerReleased ends a press. A release without a drag is a click; see
// PointerClicked for the results.
func (v *Viewer) PointerReleased(pt image.Point) (image.Point, bool, error) {
	if !v.pressed {
		return image.Point{}, false, nil
	}
	v.pressed = false
	if v.dragged {
		v.dragged = false
		return image.Point{}, false, nil
	}
	return v.PointerClicked(pt)
}

// PointerClicked handles a click at a screen point. Clicks outside the image
// are ignored. While zooming, the click zooms. While a position pick is
// pending, the image position is returned with ok set and handed to the
// pick callback. Otherwise the click toggles the magnifier.
func (v *Viewer) PointerClicked(pt image.Point) (pos image.Point, ok bool, err error) {
	if v.destroyed {
		return image.Point{}, false, ErrDestroyed
	}
	p, inside := v.ScreenToImage(pt)
	if !inside {
		return image.Point{}, false, nil
	}
	switch v.modes.Current() {
	case ModeZoomIn:
		_, err = v.ZoomStep(ZoomIn, pt)
	case ModeZoomOut:
		_, err = v.ZoomStep(ZoomOut, pt)
	case ModePositionPick:
		cb := v.pick
		v.modes.Fire(InputPickDone)
		if cb != nil {
			cb(p)
		}
		return p, true, nil
	case ModeIdle:
		v.modes.Fire(InputClick)
		err = v.magnify(pt)
	case ModeMagnifier:
		v.modes.Fire(InputClick)
	}
	return image.Point{}, false, err
}

// PointerMoved updates the loupe while it is shown.
func (v *Viewer) PointerMoved(pt image.Point) error {
	if v.destroyed {
		return ErrDestroyed
	}
	v.pointer = pt
	if !v.modes.Current().ShowsLoupe() {
		return nil
	}
	return v.magnify(pt)
}

// keyScroll maps key symbols to unit scroll directions.
var keyScroll = map[string]image.Point{
	"Right": {1, 0}, "KP_Right": {1, 0}, "KP_6": {1, 0}, "d": {1, 0}, "D": {1, 0},
	"Left": {-1, 0}, "KP_Left": {-1, 0}, "KP_4": {-1, 0}, "a": {-1, 0}, "A": {-1, 0},
	"Up": {0, -1}, "KP_Up": {0, -1}, "KP_8": {0, -1}, "w": {0, -1}, "W": {0, -1},
	"Down": {0, 1}, "KP_Down": {0, 1}, "KP_2": {0, 1}, "s": {0, 1}, "S": {0, 1},
}

// KeyPressed scrolls one unit for the directional keys. Key presses with
// Control held are ignored. It reports whether the key was handled.
func (v *Viewer) KeyPressed(keysym string, ctrl bool) (bool, error) {
	if ctrl || v.destroyed {
		return false, nil
	}
	d, ok := keyScroll[keysym]
	if !ok {
		return false, nil
	}
	return true, v.ScrollUnits(d.X, d.Y)
}

// Compose paints the current frame into dst: background, image tile,
// markers and the loupe on top.
func (v *Viewer) Compose(dst draw.Image, markers []overlay.Marker) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(v.bg), image.Point{}, draw.Src)
	if v.destroyed {
		return
	}
	if v.hasTile {
		draw.Draw(dst, v.tile.Bounds(), v.tile.Image, v.tile.Image.Bounds().Min, draw.Src)
	}
	if len(markers) > 0 {
		v.painter.DrawMarkers(dst, markers, v.vp, float64(v.radius)*v.vp.Imscale())
	}
	if v.loupe != nil {
		overlay.DrawLoupe(dst, v.loupe.Image, v.loupe.Center)
	}
}

// MarkerRadius returns the marker radius in image pixels.
func (v *Viewer) MarkerRadius() int { return v.radius }

// SetMarkerRadius changes the marker radius for following frames. Values
// are clamped to [1, overlay.MaxMarkerRadius].
func (v *Viewer) SetMarkerRadius(r int) {
	v.radius = min(max(r, 1), overlay.MaxMarkerRadius)
}

// Stats summarizes the memory a viewer holds.
type Stats struct {
	Path           string
	Levels         int
	PyramidBytes   uint64
	PeakBandPixels int
	Sprites        int
}

// Stats returns a snapshot of the pyramid and band reader sizes.
func (v *Viewer) Stats() Stats {
	st := Stats{Path: v.src.Path, Sprites: v.painter.CachedSprites()}
	if v.pyr != nil {
		st.Levels = len(v.pyr.Levels)
		st.PyramidBytes = v.pyr.Bytes()
		if v.pyr.Bands != nil {
			st.PeakBandPixels = v.pyr.Bands.PeakPixels()
		}
	}
	return st
}

// Frame returns a composed screen-sized frame. Pass it to RecycleFrame once
// it has been displayed.
func (v *Viewer) Frame(markers []overlay.Marker) *image.RGBA {
	sz := v.vp.ScreenSize()
	dst := acquireFrame(image.Rect(0, 0, sz.X, sz.Y))
	v.Compose(dst, markers)
	return dst
}

// Destroy releases the source handle and all pyramid bitmaps. It is safe to
// call more than once.
func (v *Viewer) Destroy() {
	if v == nil || v.destroyed {
		return
	}
	v.destroyed = true
	v.hideLoupe()
	v.pick = nil
	v.tile, v.hasTile = render.Tile{}, false
	v.rend = nil
	v.pyr.Close()
	v.logger.Info("viewer destroyed")
}

// Destroyed reports whether Destroy has been called.
func (v *Viewer) Destroyed() bool { return v.destroyed }
