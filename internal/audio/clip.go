// Package audio assembles captured sample chunks into a finalized clip.
package audio

import (
	"bytes"
	"fmt"

	wav "github.com/youpy/go-wav"
)

const (
	// SampleRate is the capture rate for all clips.
	SampleRate = 44100
	// Channels is mono capture.
	Channels = 1
	// BitsPerSample matches the int16 capture format.
	BitsPerSample = 16

	// ClipMIMEType declares the clip's content type on the wire.
	ClipMIMEType = "audio/wav"
	// ClipExtension is the clip's file extension, leading dot included.
	ClipExtension = ".wav"
)

// Clip is the finalized binary payload of one completed recording.
type Clip struct {
	Data      []byte
	MIMEType  string
	Extension string
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	dataBytes := len(c.Data) - 44 // WAV header
	if dataBytes <= 0 {
		return 0
	}
	return float64(dataBytes) / float64(SampleRate*Channels*BitsPerSample/8)
}

// EncodeClip packs accumulated int16 chunks into a single WAV clip.
func EncodeClip(chunks [][]int16) (Clip, error) {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}

	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(total), Channels, SampleRate, BitsPerSample)

	samples := make([]wav.Sample, 0, total)
	for _, chunk := range chunks {
		for _, s := range chunk {
			samples = append(samples, wav.Sample{Values: [2]int{int(s), int(s)}})
		}
	}
	if err := writer.WriteSamples(samples); err != nil {
		return Clip{}, fmt.Errorf("failed to encode clip: %w", err)
	}

	return Clip{
		Data:      buf.Bytes(),
		MIMEType:  ClipMIMEType,
		Extension: ClipExtension,
	}, nil
}
