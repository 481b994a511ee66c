package stages

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const maxTouches = 10

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// --- Event shapes ---

// PointerEvent is a unified pointer event in client coordinates.
type PointerEvent struct {
	PointerID        int
	ClientX, ClientY float64
	Pressed          bool
}

// MouseEvent is a mouse event in client coordinates.
type MouseEvent struct {
	ClientX, ClientY float64
	Button           MouseButton
	Pressed          bool
}

// TouchPoint is one active contact of a TouchEvent.
type TouchPoint struct {
	ID               int
	ClientX, ClientY float64
}

// TouchEvent lists the active touches. Only the first is used for
// coordinate conversion.
type TouchEvent struct {
	Touches []TouchPoint
}

// ClientPositioner lets custom event types take part in normalization.
type ClientPositioner interface {
	ClientPosition() (x, y float64)
}

// clientPosition extracts a single client position from a supported event.
func clientPosition(ev any) (x, y float64, ok bool) {
	switch e := ev.(type) {
	case TouchEvent:
		return firstTouch(e.Touches)
	case *TouchEvent:
		if e == nil {
			return 0, 0, false
		}
		return firstTouch(e.Touches)
	case PointerEvent:
		return e.ClientX, e.ClientY, true
	case *PointerEvent:
		if e == nil {
			return 0, 0, false
		}
		return e.ClientX, e.ClientY, true
	case MouseEvent:
		return e.ClientX, e.ClientY, true
	case *MouseEvent:
		if e == nil {
			return 0, 0, false
		}
		return e.ClientX, e.ClientY, true
	case ClientPositioner:
		x, y = e.ClientPosition()
		return x, y, true
	}
	return 0, 0, false
}

func firstTouch(touches []TouchPoint) (x, y float64, ok bool) {
	if len(touches) == 0 {
		return 0, 0, false
	}
	return touches[0].ClientX, touches[0].ClientY, true
}

// --- Ebitengine polling ---

// InputPoller reads Ebitengine input state once per tick and produces
// normalized events. Touches take priority over the mouse.
type InputPoller struct {
	touchIDs []ebiten.TouchID
	touches  []TouchPoint
}

// Poll returns a TouchEvent while any finger is down, otherwise a MouseEvent
// for the cursor. Must be called from the game's Update.
func (p *InputPoller) Poll() any {
	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	if len(p.touchIDs) > 0 {
		p.touches = p.touches[:0]
		for i, id := range p.touchIDs {
			if i >= maxTouches {
				break
			}
			tx, ty := ebiten.TouchPosition(id)
			p.touches = append(p.touches, TouchPoint{ID: int(id), ClientX: float64(tx), ClientY: float64(ty)})
		}
		return TouchEvent{Touches: p.touches}
	}

	mx, my := ebiten.CursorPosition()
	ev := MouseEvent{ClientX: float64(mx), ClientY: float64(my)}
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		ev.Pressed, ev.Button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		ev.Pressed, ev.Button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		ev.Pressed, ev.Button = true, MouseButtonMiddle
	}
	return ev
}

// --- Pointer tracking ---

// PointerCapturer routes a pointer's events to one target for the duration of
// a press. Release is best-effort and may fail.
type PointerCapturer interface {
	CapturePointer(pointerID int) error
	ReleasePointer(pointerID int) error
}

// PointerState is the tracked state of the primary pointer in stage space.
type PointerState struct {
	Down     bool
	Start    StageCoordinates
	Last     StageCoordinates
	InStage  bool
	Captured bool
}

// PointerTracker follows press, move and release of the primary pointer in
// stage coordinates using a Viewport for conversion.
type PointerTracker struct {
	viewport *Viewport
	capturer PointerCapturer
	state    PointerState
	id       int
}

// NewPointerTracker creates a tracker. capturer may be nil.
func NewPointerTracker(v *Viewport, capturer PointerCapturer) *PointerTracker {
	return &PointerTracker{viewport: v, capturer: capturer}
}

// State returns the current pointer state.
func (t *PointerTracker) State() PointerState {
	return t.state
}

// Handle feeds one normalized event. It returns false when the event could
// not be mapped to the stage.
func (t *PointerTracker) Handle(ev any) bool {
	pressed, id, known := eventPressed(ev)
	pos, ok := t.viewport.TransformEvent(ev)
	if !ok {
		// A touch lift carries no position; release at the last one.
		if known && !pressed && t.state.Down {
			t.release()
			t.state.Down = false
			return true
		}
		return false
	}

	switch {
	case pressed && !t.state.Down:
		t.state = PointerState{Down: true, Start: pos, Last: pos}
		t.id = id
		if t.capturer != nil {
			t.state.Captured = t.capturer.CapturePointer(id) == nil
		}
	case !pressed && t.state.Down:
		t.release()
		t.state.Down = false
		t.state.Last = pos
	default:
		t.state.Last = pos
	}
	t.state.InStage = t.viewport.IsWithinStage(pos.X, pos.Y)
	return true
}

// release frees a captured pointer, ignoring any failure from the platform.
func (t *PointerTracker) release() {
	if !t.state.Captured || t.capturer == nil {
		return
	}
	t.state.Captured = false
	defer func() {
		if r := recover(); r != nil {
			logger().Debug("pointer release panicked", "pointer", t.id, "panic", r)
		}
	}()
	if err := t.capturer.ReleasePointer(t.id); err != nil {
		logger().Debug("pointer release failed", "pointer", t.id, "err", err)
	}
}

// eventPressed reports the press state and pointer id of ev. ok is false for
// unrecognized or nil events.
func eventPressed(ev any) (pressed bool, id int, ok bool) {
	switch e := ev.(type) {
	case TouchEvent:
		return len(e.Touches) > 0, touchID(e.Touches), true
	case *TouchEvent:
		if e != nil {
			return len(e.Touches) > 0, touchID(e.Touches), true
		}
	case PointerEvent:
		return e.Pressed, e.PointerID, true
	case *PointerEvent:
		if e != nil {
			return e.Pressed, e.PointerID, true
		}
	case MouseEvent:
		return e.Pressed, 0, true
	case *MouseEvent:
		if e != nil {
			return e.Pressed, 0, true
		}
	}
	return false, 0, false
}

func touchID(touches []TouchPoint) int {
	if len(touches) == 0 {
		return 0
	}
	return touches[0].ID
}
