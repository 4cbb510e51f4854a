package explorer

import (
	"errors"
	"sync"
)

// GestureKind names an independently tracked pointer gesture.
type GestureKind string

const (
	GestureDragModal  GestureKind = "drag-modal"
	GestureResizePane GestureKind = "resize-pane"
)

// PointerEvent is one sampled pointer position.
type PointerEvent struct {
	X float64
	Y float64
}

// PointerSurface is the ambient input surface pointer listeners attach to.
// Attach returns a detach function that must be invoked exactly once.
type PointerSurface interface {
	Attach(onMove func(PointerEvent), onUp func(PointerEvent)) (detach func())
}

type gestureSession struct {
	kind    GestureKind
	onMove  func(PointerEvent)
	detach  func()
	stopped bool
}

// GestureTracker runs at most one pointer-tracking session per gesture kind.
// Each kind is an explicit idle/active state machine: listeners attach on
// entry into active and detach on every exit path, whether the gesture ends,
// is cancelled, or the tracker is torn down.
type GestureTracker struct {
	surface PointerSurface

	mu       sync.Mutex
	sessions map[GestureKind]*gestureSession
	closed   bool
}

// NewGestureTracker constructs a tracker over the given input surface.
func NewGestureTracker(surface PointerSurface) (*GestureTracker, error) {
	if surface == nil {
		return nil, errors.New("explorer: nil pointer surface")
	}
	return &GestureTracker{
		surface:  surface,
		sessions: map[GestureKind]*gestureSession{},
	}, nil
}

// Begin enters the active state for kind, attaching move tracking. If a
// session of the same kind is already live it is cancelled first, so at most
// one is ever attached. onMove receives every pointer sample until the
// session exits.
func (g *GestureTracker) Begin(kind GestureKind, onMove func(PointerEvent)) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return errors.New("explorer: gesture tracker closed")
	}
	if prev := g.sessions[kind]; prev != nil {
		g.stopLocked(prev)
	}
	s := &gestureSession{kind: kind, onMove: onMove}
	g.sessions[kind] = s
	g.mu.Unlock()

	detach := g.surface.Attach(
		func(ev PointerEvent) { g.deliver(s, ev) },
		func(PointerEvent) { g.End(kind) },
	)

	g.mu.Lock()
	defer g.mu.Unlock()
	if s.stopped || g.sessions[kind] != s {
		// Ended between attach and registration.
		detach()
		return nil
	}
	s.detach = detach
	return nil
}

// End returns kind to idle, detaching its listeners. Calling End while idle
// is a no-op.
func (g *GestureTracker) End(kind GestureKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s := g.sessions[kind]; s != nil {
		g.stopLocked(s)
		delete(g.sessions, kind)
	}
}

// Cancel aborts the session for kind without delivering further samples.
// It takes the same exit path as End.
func (g *GestureTracker) Cancel(kind GestureKind) {
	g.End(kind)
}

// Active reports whether kind currently has a live session.
func (g *GestureTracker) Active(kind GestureKind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessions[kind] != nil
}

// Close tears the tracker down, detaching every live session. Begin fails
// afterwards.
func (g *GestureTracker) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for kind, s := range g.sessions {
		g.stopLocked(s)
		delete(g.sessions, kind)
	}
}

func (g *GestureTracker) stopLocked(s *gestureSession) {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

func (g *GestureTracker) deliver(s *gestureSession, ev PointerEvent) {
	g.mu.Lock()
	stopped := s.stopped
	onMove := s.onMove
	g.mu.Unlock()
	if stopped || onMove == nil {
		return
	}
	onMove(ev)
}
