package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/ui/theme"
	"github.com/soocke/probedoc-go/ui/view"
)

const (
	tick = 30 * time.Millisecond
)

type app struct {
	c       *AppContainer
	title   string
	afterID string
	logger  *slog.Logger
}

// NewApp builds the container for the given image paths and configures the main window.
func NewApp(title string, cfg *config.Config, cfgPath string, paths []string, logger *slog.Logger) *app {
	a := &app{title: title, logger: logger}
	a.c = BuildContainer(cfg, logger, cfgPath, paths)

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	// Leave room for the toolbar, status line and settings column.
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.ViewportWidth+260, cfg.ViewportHeight+120))
	return a
}

// Start builds the UI, opens the first image and blocks in the Tk event loop.
func (a *app) Start() {
	theme.SetDark(a.c.Config.DarkMode)
	vp := a.c.ViewerPresenter
	a.c.RootView.Build(a.c.Images.Titles(), view.Handlers{
		ImageSelected:   a.openImage,
		ToggleZoomIn:    vp.ToggleZoomIn,
		ToggleZoomOut:   vp.ToggleZoomOut,
		ToggleMagnifier: vp.ToggleMagnifier,
		AddPoint: func(name, colour string) {
			if err := vp.AddPoint(name, colour); err != nil {
				a.logger.Warn("add point rejected", "name", name, "colour", colour, "error", err)
			}
		},
		RemovePoint: func(name string) {
			if err := vp.RemovePoint(name); err != nil {
				a.logger.Warn("remove point rejected", "name", name, "error", err)
			}
		},
		MarkerRadius: vp.SetMarkerRadius,
		AddImage:     a.addImage,
		Exit:         a.exitHandler,
		Pointer: view.PointerHandlers{
			Press:      vp.Press,
			Drag:       vp.Drag,
			Release:    vp.Release,
			Motion:     vp.Motion,
			KeyPress:   vp.KeyPress,
			KeyRelease: vp.KeyRelease,
			Resize:     vp.Resize,
			FocusOut:   vp.FocusLost,
		},
	})
	vp.Resize(a.c.Config.ViewportWidth, a.c.Config.ViewportHeight)
	if a.c.Images.Len() > 0 {
		a.openImage(0)
	}
	a.c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) openImage(i int) {
	if err := a.c.ViewerPresenter.Open(i); err != nil {
		return
	}
	cur, _ := a.c.Images.Current()
	a.c.UI.SetTitles(a.c.Images.Titles(), a.c.Images.Index(cur))
	App.WmTitle(fmt.Sprintf("%s - %s", a.title, a.c.Images.Titles()[i]))
}

// addImage appends path to the selector and opens it. The selector is
// refreshed even when opening fails so the entry can be retried.
func (a *app) addImage(path string) {
	err := a.c.ViewerPresenter.OpenPath(path)
	cur, _ := a.c.Images.Current()
	a.c.UI.SetTitles(a.c.Images.Titles(), a.c.Images.Index(cur))
	if err != nil {
		return
	}
	App.WmTitle(fmt.Sprintf("%s - %s", a.title, filepath.Base(cur)))
}

// MemoryAttrs describes the open viewer for the debug memory logger. It is
// called from the logger goroutine.
func (a *app) MemoryAttrs() []slog.Attr {
	st, ok := a.c.ViewerPresenter.Stats()
	if !ok {
		return nil
	}
	return []slog.Attr{
		slog.String("image", filepath.Base(st.Path)),
		slog.Int("levels", st.Levels),
		slog.String("pyramid", humanize.IBytes(st.PyramidBytes)),
		slog.String("peak_band_pixels", humanize.Comma(int64(st.PeakBandPixels))),
		slog.Int("sprites", st.Sprites),
	}
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.ViewerPresenter.Close()
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}
