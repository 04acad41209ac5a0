package capture

import (
	"strconv"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Device is one audio input source exposed by the platform.
type Device struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Initialize brings up the audio host. Call once at startup; pair with
// Terminate on shutdown.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases the audio host.
func Terminate() error {
	return portaudio.Terminate()
}

// ListInputDevices enumerates capture devices. A short-lived probe
// stream is opened first so the platform grants capture access before
// labels are read, and released before returning so the microphone is
// never held open. Any failure degrades to an empty list; recording can
// still be attempted and will renegotiate access then.
func ListInputDevices(logger zerolog.Logger) []Device {
	if err := probeDefaultStream(); err != nil {
		logger.Warn().Err(err).Msg("Capture probe failed, returning empty device list")
		return []Device{}
	}

	devices, err := portaudio.Devices()
	if err != nil {
		logger.Warn().Err(err).Msg("Device enumeration failed, returning empty device list")
		return []Device{}
	}

	defaultDevice, err := portaudio.DefaultInputDevice()
	if err != nil {
		logger.Debug().Err(err).Msg("No default input device reported")
		defaultDevice = nil
	}

	inputs := make([]Device, 0, len(devices))
	for i, device := range devices {
		if device.MaxInputChannels == 0 {
			continue
		}
		label := device.Name
		if label == "" {
			label = "Microphone " + strconv.Itoa(len(inputs)+1)
		}
		inputs = append(inputs, Device{
			ID:      strconv.Itoa(i),
			Label:   label,
			Default: defaultDevice != nil && device.Name == defaultDevice.Name,
		})
	}

	logger.Debug().Int("devices", len(inputs)).Msg("Enumerated input devices")
	return inputs
}

// HasInputDevice reports whether the host exposes at least one capture
// device. It only inspects the device table and never opens a stream,
// so periodic probes do not touch the microphone.
func HasInputDevice() (bool, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return false, err
	}
	for _, device := range devices {
		if device.MaxInputChannels > 0 {
			return true, nil
		}
	}
	return false, nil
}

// probeDefaultStream opens and immediately closes a default input
// stream. The stream must not remain open once enumeration completes.
func probeDefaultStream() error {
	stream, err := portaudio.OpenDefaultStream(Channels, 0, float64(SampleRate), FramesPerBuffer, func(in []int16) {})
	if err != nil {
		return err
	}
	return stream.Close()
}
