package viewer

import "log/slog"

// Mode enumerates the interaction modes of a viewer.
type Mode int

const (
	ModeIdle Mode = iota
	ModeZoomIn
	ModeZoomOut
	ModeMagnifier
	ModePositionPick
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeZoomIn:
		return "zoom-in"
	case ModeZoomOut:
		return "zoom-out"
	case ModeMagnifier:
		return "magnifier"
	case ModePositionPick:
		return "pick-position"
	default:
		return "unknown"
	}
}

// ShowsLoupe reports whether pointer motion drives the magnifier.
func (m Mode) ShowsLoupe() bool { return m == ModeMagnifier || m == ModePositionPick }

// Input enumerates the events that move the mode machine.
type Input int

const (
	InputToggleZoomIn Input = iota
	InputToggleZoomOut
	InputToggleMagnifier
	InputRequestPick
	InputPickDone
	InputClick // click inside the image that no zoom mode consumed
	InputCancel
)

func (in Input) String() string {
	switch in {
	case InputToggleZoomIn:
		return "toggle-zoom-in"
	case InputToggleZoomOut:
		return "toggle-zoom-out"
	case InputToggleMagnifier:
		return "toggle-magnifier"
	case InputRequestPick:
		return "request-pick"
	case InputPickDone:
		return "pick-done"
	case InputClick:
		return "click"
	case InputCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// transitions is the complete table; pairs not listed leave the mode as is.
var transitions = map[Mode]map[Input]Mode{
	ModeIdle: {
		InputToggleZoomIn:    ModeZoomIn,
		InputToggleZoomOut:   ModeZoomOut,
		InputToggleMagnifier: ModeMagnifier,
		InputRequestPick:     ModePositionPick,
		InputClick:           ModeMagnifier,
	},
	ModeZoomIn: {
		InputToggleZoomIn:    ModeIdle,
		InputToggleZoomOut:   ModeZoomOut,
		InputToggleMagnifier: ModeMagnifier,
		InputRequestPick:     ModePositionPick,
		InputCancel:          ModeIdle,
	},
	ModeZoomOut: {
		InputToggleZoomIn:    ModeZoomIn,
		InputToggleZoomOut:   ModeIdle,
		InputToggleMagnifier: ModeMagnifier,
		InputRequestPick:     ModePositionPick,
		InputCancel:          ModeIdle,
	},
	ModeMagnifier: {
		InputToggleZoomIn:    ModeZoomIn,
		InputToggleZoomOut:   ModeZoomOut,
		InputToggleMagnifier: ModeIdle,
		InputRequestPick:     ModePositionPick,
		InputClick:           ModeIdle,
		InputCancel:          ModeIdle,
	},
	ModePositionPick: {
		InputToggleMagnifier: ModeIdle,
		InputPickDone:        ModeIdle,
		InputCancel:          ModeIdle,
	},
}

// ModeListener is called on each successful mode transition.
type ModeListener func(prev, next Mode)

// ModeMachine applies the transition table and notifies listeners.
type ModeMachine struct {
	mode      Mode
	listeners []ModeListener
	logger    *slog.Logger
}

// NewModeMachine returns a machine in ModeIdle.
func NewModeMachine(logger *slog.Logger) *ModeMachine {
	return &ModeMachine{mode: ModeIdle, logger: logger}
}

func (m *ModeMachine) Current() Mode { return m.mode }

func (m *ModeMachine) AddListener(l ModeListener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// Fire applies in and reports whether the mode changed.
func (m *ModeMachine) Fire(in Input) (Mode, bool) {
	prev := m.mode
	next, ok := transitions[prev][in]
	if !ok || next == prev {
		return prev, false
	}
	m.mode = next
	if m.logger != nil {
		m.logger.Debug("mode transition", "from", prev.String(), "to", next.String(), "input", in.String())
	}
	for _, l := range m.listeners {
		l(prev, next)
	}
	return next, true
}
