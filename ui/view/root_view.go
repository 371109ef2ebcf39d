package view

import (
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Viewport ViewportView
	Status   StatusBar
	Settings SettingsPanel

	// Widgets
	ImageSelect  *TComboboxWidget
	zoomInBtn    *TButtonWidget
	zoomOutBtn   *TButtonWidget
	magnifierBtn *TButtonWidget
	nameField    *TextWidget
	colourField  *TextWidget
	radiusSelect *TComboboxWidget
	pathField    *TextWidget
	titles       []string
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	ShowFrame(img image.Image)
	SetStatus(text string)
	SetModeLabel(text string)
	SetToggles(zoomIn, zoomOut, magnifier bool)
	SetTitles(titles []string, current int)
}

// Handlers are invoked on user actions.
type Handlers struct {
	ImageSelected   func(i int)
	ToggleZoomIn    func()
	ToggleZoomOut   func()
	ToggleMagnifier func()
	AddPoint        func(name, colour string)
	RemovePoint     func(name string)
	MarkerRadius    func(r int)
	AddImage        func(path string)
	Exit            func()
	Pointer         PointerHandlers
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. titles: list of image names for the selector.
func (rv *RootView) Build(titles []string, hs Handlers) {
	if rv == nil {
		return
	}
	// Row 0: toolbar
	bar := Frame()
	Grid(bar, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.titles = titles
	rv.ImageSelect = TCombobox(Values(selectorValues(titles)), Width(28))
	Grid(rv.ImageSelect, In(bar), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(rv.ImageSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.ImageSelect == nil || hs.ImageSelected == nil {
			return
		}
		idxStr := rv.ImageSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err == nil && idx >= 0 && idx < len(rv.titles) {
			hs.ImageSelected(idx)
		} else if rv.logger != nil {
			rv.logger.Error("image selection parse error", "value", idxStr, "error", err)
		}
	}))
	rv.zoomInBtn = TButton(Txt("Zoom In"), Style(theme.StyleToggleButton), Command(hs.ToggleZoomIn))
	Grid(rv.zoomInBtn, In(bar), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.zoomOutBtn = TButton(Txt("Zoom Out"), Style(theme.StyleToggleButton), Command(hs.ToggleZoomOut))
	Grid(rv.zoomOutBtn, In(bar), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.magnifierBtn = TButton(Txt("Magnifier"), Style(theme.StyleToggleButton), Command(hs.ToggleMagnifier))
	Grid(rv.magnifierBtn, In(bar), Row(0), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	Grid(Label(Txt("Name")), In(bar), Row(0), Column(4), Sticky("e"), Padx("0.4m"))
	rv.nameField = Text(Height(1), Width(14))
	Grid(rv.nameField, In(bar), Row(0), Column(5), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Grid(Label(Txt("Colour")), In(bar), Row(0), Column(6), Sticky("e"), Padx("0.4m"))
	rv.colourField = Text(Height(1), Width(9))
	Grid(rv.colourField, In(bar), Row(0), Column(7), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.colourField.Insert("1.0", "red")
	addBtn := Button(Txt("Add Point"), Command(func() {
		if hs.AddPoint != nil {
			hs.AddPoint(fieldText(rv.nameField), fieldText(rv.colourField))
		}
	}))
	Grid(addBtn, In(bar), Row(0), Column(8), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	removeBtn := Button(Txt("Remove Point"), Command(func() {
		if hs.RemovePoint != nil {
			hs.RemovePoint(fieldText(rv.nameField))
		}
	}))
	Grid(removeBtn, In(bar), Row(0), Column(9), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Grid(Label(Txt("Radius")), In(bar), Row(0), Column(10), Sticky("e"), Padx("0.4m"))
	rv.radiusSelect = TCombobox(Values(radiusValues), Width(4), State("readonly"))
	Grid(rv.radiusSelect, In(bar), Row(0), Column(11), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.radiusSelect.Current(radiusIndex(rv.cfg.MarkerRadius))
	Bind(rv.radiusSelect, "<<ComboboxSelected>>", Command(func() {
		idxStr := rv.radiusSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(radiusValues) {
			if rv.logger != nil {
				rv.logger.Error("radius selection parse error", "value", idxStr, "error", err)
			}
			return
		}
		if hs.MarkerRadius != nil {
			r, _ := strconv.Atoi(radiusValues[idx])
			hs.MarkerRadius(r)
		}
	}))
	exitBtn := Button(Txt("Exit"), Command(hs.Exit))
	Grid(exitBtn, In(bar), Row(0), Column(12), Sticky("e"), Padx("0.2m"), Pady("0.2m"))

	// Second toolbar line: open another image by path
	Grid(Label(Txt("Image path")), In(bar), Row(1), Column(0), Sticky("w"), Padx("0.4m"))
	rv.pathField = Text(Height(1), Width(40))
	Grid(rv.pathField, In(bar), Row(1), Column(1), Columnspan(7), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	addImgBtn := Button(Txt("Add Image"), Command(func() {
		if hs.AddImage != nil {
			hs.AddImage(fieldText(rv.pathField))
		}
	}))
	Grid(addImgBtn, In(bar), Row(1), Column(8), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: viewport and settings side panel
	rv.Viewport = NewViewportView(1, rv.cfg.ViewportWidth, rv.cfg.ViewportHeight, hs.Pointer)
	side := Frame()
	Grid(side, Row(1), Column(2), Sticky("n"), Padx("0.3m"), Pady("0.3m"))
	rv.Settings = NewSettingsPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.Settings.Build(side, 0)

	// Row 2: mode + status
	rv.Status = NewStatusBar(2)

	GridRowConfigure(App, 1, Weight(1))
	GridColumnConfigure(App, 1, Weight(1))
}

// ShowFrame proxies to the viewport view.
func (rv *RootView) ShowFrame(img image.Image) {
	if rv != nil && rv.Viewport != nil {
		rv.Viewport.ShowFrame(img)
	}
}

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetStatus(text)
	}
}

func (rv *RootView) SetModeLabel(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetMode(text)
	}
}

// SetToggles highlights the armed toolbar toggles.
func (rv *RootView) SetToggles(zoomIn, zoomOut, magnifier bool) {
	if rv == nil || rv.zoomInBtn == nil {
		return
	}
	rv.zoomInBtn.Configure(Style(theme.ToggleStyle(zoomIn)))
	rv.zoomOutBtn.Configure(Style(theme.ToggleStyle(zoomOut)))
	rv.magnifierBtn.Configure(Style(theme.ToggleStyle(magnifier)))
}

// SetTitles refreshes the image selector and selects current.
func (rv *RootView) SetTitles(titles []string, current int) {
	if rv == nil || rv.ImageSelect == nil {
		return
	}
	rv.titles = titles
	rv.ImageSelect.Configure(Values(selectorValues(titles)))
	if current >= 0 && current < len(titles) {
		rv.ImageSelect.Current(current)
	}
}

// radiusValues are the marker radii offered in the toolbar, in image pixels.
var radiusValues = []string{"2", "3", "5", "8", "12", "16", "24", "32"}

// radiusIndex returns the entry of radiusValues closest to r.
func radiusIndex(r int) int {
	best, bestD := 0, -1
	for i, s := range radiusValues {
		v, _ := strconv.Atoi(s)
		d := v - r
		if d < 0 {
			d = -d
		}
		if bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func selectorValues(titles []string) []string {
	if len(titles) == 0 {
		return []string{"<none>"}
	}
	return titles
}

func fieldText(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}
