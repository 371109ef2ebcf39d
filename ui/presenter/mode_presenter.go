package presenter

import (
	"time"

	"github.com/soocke/probedoc-go/domain/viewer"
)

// ModeView sets the mode label and toggle highlights in the view.
type ModeView interface {
	SetModeLabel(string)
	SetToggles(zoomIn, zoomOut, magnifier bool)
}

// ModePresenter receives viewer mode transitions and updates the view.
type ModePresenter struct {
	view    ModeView
	latest  viewer.Mode // last reflected mode
	shown   bool
	pending []viewer.Mode
}

func NewModePresenter(view ModeView) *ModePresenter {
	return &ModePresenter{view: view}
}

// OnMode queues a transitioned mode from a viewer listener.
//
// The latest queued mode will be reflected on the next Tick.
func (p *ModePresenter) OnMode(m viewer.Mode) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, m)
}

// Tick processes queued modes and updates the view with the most recent one.
// It clears the pending queue after processing.
func (p *ModePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil || len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if p.shown && last == p.latest {
		return
	}
	p.latest, p.shown = last, true
	p.view.SetModeLabel("Mode: " + last.String())
	p.view.SetToggles(last == viewer.ModeZoomIn, last == viewer.ModeZoomOut, last.ShowsLoupe())
}
