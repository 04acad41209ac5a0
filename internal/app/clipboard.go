package app

import (
	"github.com/atotto/clipboard"
)

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(text string) error
}

// SystemClipboard uses the platform clipboard.
type SystemClipboard struct{}

func (SystemClipboard) SetText(text string) error {
	return clipboard.WriteAll(text)
}
