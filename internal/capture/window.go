package capture

import "sync"

// Window is a thread-safe ring holding the most recent fixed-size block
// of samples, the analysis window the waveform visualizer reads each
// frame.
type Window struct {
	mu     sync.Mutex
	buf    []int16
	pos    int
	filled bool
}

// NewWindow creates a window holding the latest size samples.
func NewWindow(size int) *Window {
	return &Window{buf: make([]int16, size)}
}

// Write appends samples, overwriting the oldest when full.
func (w *Window) Write(samples []int16) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range samples {
		w.buf[w.pos] = s
		w.pos++
		if w.pos == len(w.buf) {
			w.pos = 0
			w.filled = true
		}
	}
}

// Snapshot returns the window contents oldest-first. Positions not yet
// written read as silence.
func (w *Window) Snapshot() []int16 {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]int16, len(w.buf))
	if w.filled {
		n := copy(out, w.buf[w.pos:])
		copy(out[n:], w.buf[:w.pos])
	} else {
		copy(out[len(w.buf)-w.pos:], w.buf[:w.pos])
	}
	return out
}

// Size returns the fixed window length.
func (w *Window) Size() int {
	return len(w.buf)
}

// Reset clears the window to silence.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.buf {
		w.buf[i] = 0
	}
	w.pos = 0
	w.filled = false
}
