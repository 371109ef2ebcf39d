package view

import (
	"github.com/soocke/probedoc-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatusBar shows the viewer mode and a one-line status.
type StatusBar interface {
	SetMode(text string)
	SetStatus(text string)
}

type statusBar struct {
	modeLbl   *TLabelWidget
	statusLbl *TLabelWidget
}

// NewStatusBar creates the mode label at (row, 0) and the status line at (row, 1).
func NewStatusBar(row int) StatusBar {
	s := &statusBar{
		modeLbl:   TLabel(Style(theme.StyleModeLabel), Width(16)),
		statusLbl: TLabel(Style(theme.StyleStatusLabel), Anchor("w")),
	}
	Grid(s.modeLbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	Grid(s.statusLbl, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	s.modeLbl.Configure(Txt("Mode: idle"))
	s.statusLbl.Configure(Txt("No image"))
	return s
}

func (s *statusBar) SetMode(text string) {
	if s == nil || s.modeLbl == nil {
		return
	}
	s.modeLbl.Configure(Txt(text))
}

func (s *statusBar) SetStatus(text string) {
	if s == nil || s.statusLbl == nil {
		return
	}
	s.statusLbl.Configure(Txt(text))
}
