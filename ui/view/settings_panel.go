package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/probedoc-go/config"
	"github.com/soocke/probedoc-go/domain/resample"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SettingsPanel edits the persisted viewer settings. The running config is
// never touched; saved values apply on the next start.
type SettingsPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	ApplyChanges() error
}

type settingsPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
}

// NewSettingsPanel creates the view seeded from cfg.
func NewSettingsPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) SettingsPanel {
	return &settingsPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *settingsPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(12))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("zoomDelta", "Zoom Step", fmt.Sprintf("%.2f", c.ZoomDelta))
	makeRow("keyScroll", "Key Scroll (0-1)", fmt.Sprintf("%.2f", c.KeyScrollFraction))
	makeRow("magSize", "Magnifier Size Px", fmt.Sprintf("%d", c.MagnifierSize))
	makeRow("magMult", "Magnification", fmt.Sprintf("%.2f", c.MagnifierMultiplier))
	makeRow("markerRadius", "Marker Radius", fmt.Sprintf("%d", c.MarkerRadius))
	makeRow("filter", "Filter", c.Filter)
	makeRow("background", "Background", c.Background)
	makeRow("darkMode", "Dark Mode (true/false)", fmt.Sprintf("%t", c.DarkMode))
	v.applyBtn = Button(Txt("Save Settings"), Command(func() { _ = v.ApplyChanges() }))
	Grid(v.applyBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *settingsPanel) ApplyChanges() error {
	if v.cfg == nil {
		return nil
	}
	cfg := *v.cfg // copy
	field := func(id string) (string, bool) {
		s := fieldText(v.widgets[id])
		return s, s != ""
	}
	assignFloat := func(id string, dst *float64) {
		if s, ok := field(id); ok {
			if f, ok := parseFloatField(s); ok {
				*dst = f
			}
		}
	}
	assignInt := func(id string, dst *int) {
		if s, ok := field(id); ok {
			if i, ok := parseIntField(s); ok {
				*dst = i
			}
		}
	}
	assignFloat("zoomDelta", &cfg.ZoomDelta)
	assignFloat("keyScroll", &cfg.KeyScrollFraction)
	assignInt("magSize", &cfg.MagnifierSize)
	assignFloat("magMult", &cfg.MagnifierMultiplier)
	assignInt("markerRadius", &cfg.MarkerRadius)
	if s, ok := field("filter"); ok {
		if _, err := resample.New(s); err != nil {
			v.logger.Warn("settings not saved", "error", err)
			return err
		}
		cfg.Filter = s
	}
	if s, ok := field("background"); ok {
		cfg.Background = s
	}
	if s, ok := field("darkMode"); ok {
		if b, ok := parseBoolLoose(s); ok {
			cfg.DarkMode = b
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(v.cfgPath); err != nil {
		v.logger.Error("config save failed", "error", err)
		return err
	}
	v.logger.Info("config saved", "path", v.cfgPath)
	return nil
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
