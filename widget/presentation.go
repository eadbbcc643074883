package widget

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// PresentationState is the open/closed state of the panel.
type PresentationState int

const (
	Closed PresentationState = iota
	Opening
	Open
	Closing
)

func (s PresentationState) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "closed"
	}
}

const (
	// OpenDelay lets the panel become visible before it settles.
	OpenDelay = 20 * time.Millisecond
	// CloseDuration is how long the closing animation runs before the panel hides.
	CloseDuration = 300 * time.Millisecond
)

type transitionKind int

const (
	transitionSettle transitionKind = iota + 1
	transitionHide
)

// TransitionMsg fires when a scheduled transition timer elapses. Timers from
// an older generation are ignored.
type TransitionMsg struct {
	gen  int
	kind transitionKind
}

// Transition is a timer the caller must schedule.
type Transition struct {
	After time.Duration
	msg   TransitionMsg
}

// Cmd schedules the transition on the Bubble Tea runtime.
func (t Transition) Cmd() tea.Cmd {
	msg := t.msg
	return tea.Tick(t.After, func(time.Time) tea.Msg { return msg })
}

// Msg returns the message the timer will deliver.
func (t Transition) Msg() TransitionMsg { return t.msg }

// Presentation is the panel state machine. It is changed only through
// Toggle and Advance.
type Presentation struct {
	state          PresentationState
	panelVisible   bool
	panelSettled   bool
	launcherHidden bool
	gen            int
}

// State returns the current state.
func (p Presentation) State() PresentationState { return p.state }

// PanelVisible reports whether the panel is drawn at all.
func (p Presentation) PanelVisible() bool { return p.panelVisible }

// PanelSettled reports whether the panel is in its fully open position.
func (p Presentation) PanelSettled() bool { return p.panelSettled }

// LauncherVisible reports whether the launcher affordance is shown.
func (p Presentation) LauncherVisible() bool { return !p.launcherHidden }

// Toggle starts a transition toward the opposite rest state. A toggle during
// a transition cancels the pending timer and reverses direction.
func (p *Presentation) Toggle() Transition {
	p.gen++
	switch p.state {
	case Closed, Closing:
		p.state = Opening
		p.panelVisible = true
		p.panelSettled = false
		p.launcherHidden = true
		return Transition{After: OpenDelay, msg: TransitionMsg{gen: p.gen, kind: transitionSettle}}
	default:
		p.state = Closing
		p.panelSettled = false
		p.launcherHidden = false
		return Transition{After: CloseDuration, msg: TransitionMsg{gen: p.gen, kind: transitionHide}}
	}
}

// Advance applies an elapsed timer. It reports false for stale timers.
func (p *Presentation) Advance(msg TransitionMsg) bool {
	if msg.gen != p.gen {
		return false
	}
	switch {
	case msg.kind == transitionSettle && p.state == Opening:
		p.state = Open
		p.panelSettled = true
	case msg.kind == transitionHide && p.state == Closing:
		p.state = Closed
		p.panelVisible = false
	default:
		return false
	}
	return true
}
