package explorer

import (
	"sync"
	"testing"
)

type fakeSurface struct {
	mu       sync.Mutex
	attached int
	onMove   func(PointerEvent)
	onUp     func(PointerEvent)
}

func (f *fakeSurface) Attach(onMove func(PointerEvent), onUp func(PointerEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached++
	f.onMove = onMove
	f.onUp = onUp
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.attached--
	}
}

func (f *fakeSurface) liveListeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attached
}

func (f *fakeSurface) move(ev PointerEvent) {
	f.mu.Lock()
	onMove := f.onMove
	f.mu.Unlock()
	if onMove != nil {
		onMove(ev)
	}
}

func (f *fakeSurface) release() {
	f.mu.Lock()
	onUp := f.onUp
	f.mu.Unlock()
	if onUp != nil {
		onUp(PointerEvent{})
	}
}

func TestGestureAttachesOnlyWhileActive(t *testing.T) {
	surface := &fakeSurface{}
	tracker, err := NewGestureTracker(surface)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	var samples []PointerEvent
	if err := tracker.Begin(GestureDragModal, func(ev PointerEvent) {
		samples = append(samples, ev)
	}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if surface.liveListeners() != 1 {
		t.Fatalf("live listeners = %d after begin", surface.liveListeners())
	}

	surface.move(PointerEvent{X: 3, Y: 4})
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}

	tracker.End(GestureDragModal)
	if surface.liveListeners() != 0 {
		t.Fatalf("live listeners = %d after end", surface.liveListeners())
	}
	if tracker.Active(GestureDragModal) {
		t.Fatal("session still active after end")
	}
}

func TestGestureReleaseEndsSession(t *testing.T) {
	surface := &fakeSurface{}
	tracker, err := NewGestureTracker(surface)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	if err := tracker.Begin(GestureResizePane, nil); err != nil {
		t.Fatalf("begin: %v", err)
	}
	surface.release()
	if surface.liveListeners() != 0 {
		t.Fatalf("live listeners = %d after pointer release", surface.liveListeners())
	}
	if tracker.Active(GestureResizePane) {
		t.Fatal("session survived pointer release")
	}
}

func TestGestureAtMostOneSessionPerKind(t *testing.T) {
	surface := &fakeSurface{}
	tracker, err := NewGestureTracker(surface)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	if err := tracker.Begin(GestureDragModal, nil); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := tracker.Begin(GestureDragModal, nil); err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if surface.liveListeners() != 1 {
		t.Fatalf("live listeners = %d, want 1", surface.liveListeners())
	}

	tracker.Cancel(GestureDragModal)
	if surface.liveListeners() != 0 {
		t.Fatalf("live listeners = %d after cancel", surface.liveListeners())
	}
}

func TestGestureKindsTrackIndependently(t *testing.T) {
	surface := &fakeSurface{}
	tracker, err := NewGestureTracker(surface)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	if err := tracker.Begin(GestureDragModal, nil); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	if err := tracker.Begin(GestureResizePane, nil); err != nil {
		t.Fatalf("begin resize: %v", err)
	}
	if surface.liveListeners() != 2 {
		t.Fatalf("live listeners = %d, want one per kind", surface.liveListeners())
	}

	tracker.End(GestureDragModal)
	if !tracker.Active(GestureResizePane) {
		t.Fatal("ending one kind stopped the other")
	}
}

func TestGestureCloseDetachesEverything(t *testing.T) {
	surface := &fakeSurface{}
	tracker, err := NewGestureTracker(surface)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	tracker.Begin(GestureDragModal, nil)
	tracker.Begin(GestureResizePane, nil)
	tracker.Close()

	if surface.liveListeners() != 0 {
		t.Fatalf("live listeners = %d after close", surface.liveListeners())
	}
	if err := tracker.Begin(GestureDragModal, nil); err == nil {
		t.Fatal("begin succeeded on a closed tracker")
	}
}
