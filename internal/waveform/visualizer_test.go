package waveform

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxtake/voxtake/internal/capture"
)

type frameCollector struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *frameCollector) SendFrame(f Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
}

func (c *frameCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *frameCollector) last() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

func TestVisualizer_FramesFlowWhileRunning(t *testing.T) {
	sink := &frameCollector{}
	v := New(sink, zerolog.Nop())
	window := capture.NewWindow(64)

	v.Start(window)
	defer v.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.count() < 3 {
		t.Fatal("Expected frames while running")
	}
}

func TestVisualizer_StopHaltsFrames(t *testing.T) {
	sink := &frameCollector{}
	v := New(sink, zerolog.Nop())
	window := capture.NewWindow(64)

	v.Start(window)
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	v.Stop()

	if v.Running() {
		t.Error("Expected Running() false after Stop")
	}

	// No frame may be issued after the loop drains.
	time.Sleep(50 * time.Millisecond)
	settled := sink.count()
	time.Sleep(100 * time.Millisecond)
	if sink.count() != settled {
		t.Errorf("Frames kept flowing after Stop: %d -> %d", settled, sink.count())
	}
}

func TestVisualizer_StartStopIdempotent(t *testing.T) {
	sink := &frameCollector{}
	v := New(sink, zerolog.Nop())
	window := capture.NewWindow(64)

	v.Start(window)
	v.Start(window)
	v.Stop()
	v.Stop()

	if v.Running() {
		t.Error("Expected stopped visualizer")
	}

	// A second session can reuse the visualizer.
	v.Start(window)
	if !v.Running() {
		t.Error("Expected visualizer to restart")
	}
	v.Stop()
}

func TestVisualizer_RenderScalesToCanvas(t *testing.T) {
	sink := &frameCollector{}
	v := New(sink, zerolog.Nop())
	v.SetCanvasSize(800, 200)

	window := capture.NewWindow(4)
	window.Write([]int16{0, 32767, -32768, 0})

	frame := v.render(window)
	if frame.Width != 800 || frame.Height != 200 {
		t.Errorf("Expected 800x200 frame, got %dx%d", frame.Width, frame.Height)
	}
	if len(frame.Points) != 4 {
		t.Fatalf("Expected one point per window sample, got %d", len(frame.Points))
	}

	// Silence sits at the vertical midpoint.
	if frame.Points[0] != 100 {
		t.Errorf("Expected silence at midline 100, got %d", frame.Points[0])
	}
	// Full positive amplitude approaches the bottom edge.
	if frame.Points[1] < 195 || frame.Points[1] > 200 {
		t.Errorf("Expected max amplitude near 200, got %d", frame.Points[1])
	}
	// Full negative amplitude approaches the top edge.
	if frame.Points[2] != 0 {
		t.Errorf("Expected min amplitude at 0, got %d", frame.Points[2])
	}
}

func TestVisualizer_SetCanvasSizeIgnoresInvalid(t *testing.T) {
	v := New(&frameCollector{}, zerolog.Nop())
	v.SetCanvasSize(800, 200)
	v.SetCanvasSize(0, -5)

	window := capture.NewWindow(2)
	frame := v.render(window)
	if frame.Width != 800 || frame.Height != 200 {
		t.Errorf("Invalid sizes must be ignored, got %dx%d", frame.Width, frame.Height)
	}
}
