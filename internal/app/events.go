package app

import "github.com/voxtake/voxtake/internal/capture"

// EventSink pushes session state, the result display, and history
// changes to the UI. Implementations must not block.
type EventSink interface {
	StateChanged(state capture.State)
	ResultUpdated(text string)
	HistoryChanged()
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) StateChanged(capture.State) {}
func (NopEvents) ResultUpdated(string)       {}
func (NopEvents) HistoryChanged()            {}
