package app

import (
	"log/slog"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/domain/viewer"
	"github.com/soocke/probedoc-go/ui/model"
	"github.com/soocke/probedoc-go/ui/presenter"
	"github.com/soocke/probedoc-go/ui/view"
)

// AppContainer assembles models, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Images   *model.ImageListModel
	Markers  *model.MarkerModel
	RootView *view.RootView
	UI       view.UI

	// Presenters
	ViewerPresenter *presenter.ViewerPresenter
	ModePresenter   *presenter.ModePresenter
	Loop            *presenter.Loop
}

// BuildContainer constructs all components. Nothing touches Tk until the
// root view is built.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string, paths []string) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Images = model.NewImageListModel(paths...)
	c.Markers = model.NewMarkerModel()
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView
	c.ViewerPresenter = presenter.NewViewerPresenter(NewOpener(cfg, logger), c.Images, c.Markers, c.UI, logger)
	c.ModePresenter = presenter.NewModePresenter(c.UI)
	c.ViewerPresenter.OnMode(c.ModePresenter.OnMode)
	// Scheduler attached by the app once the Tk loop runs.
	c.Loop = presenter.NewLoop(c.ViewerPresenter, c.ModePresenter, nil)
	return c
}

// NewOpener returns an Opener backed by viewer.Open.
func NewOpener(cfg *config.Config, logger *slog.Logger) presenter.Opener {
	return func(path string) (presenter.ViewerHandle, error) {
		v, err := viewer.Open(path, cfg, logger)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
