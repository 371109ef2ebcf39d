package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Viewer   *ViewerPresenter
	Mode     *ModePresenter
	Schedule func()
}

func NewLoop(vp *ViewerPresenter, mode *ModePresenter, schedule func()) *Loop {
	return &Loop{Viewer: vp, Mode: mode, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	// Flush mode changes before the frame so label and frame agree.
	if l.Mode != nil {
		l.Mode.Tick(time.Now())
	}
	if l.Viewer != nil {
		l.Viewer.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
