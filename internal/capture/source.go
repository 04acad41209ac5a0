package capture

import (
	"fmt"
	"strconv"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Source abstracts the platform capture boundary: acquire a live input
// stream constrained to a device (or the platform default), deliver
// sample chunks, release the hardware on Stop.
//
// The chunk slice passed to the callback is only valid for the duration
// of the call; receivers must copy what they keep.
type Source interface {
	Start(deviceID string, onSamples func([]int16)) error
	Stop() error
}

// PortAudioSource captures microphone audio through PortAudio.
type PortAudioSource struct {
	logger zerolog.Logger
	stream *portaudio.Stream
}

// NewPortAudioSource creates a capture source. The audio host must be
// initialized before Start is called.
func NewPortAudioSource(logger zerolog.Logger) *PortAudioSource {
	return &PortAudioSource{logger: logger}
}

// Start acquires a capture stream. An empty deviceID selects the
// platform default input device.
func (s *PortAudioSource) Start(deviceID string, onSamples func([]int16)) error {
	params, err := s.streamParameters(deviceID)
	if err != nil {
		return err
	}

	stream, err := portaudio.OpenStream(params, func(in []int16) {
		onSamples(in)
	})
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	s.stream = stream
	return nil
}

// Stop stops capture and releases the hardware.
func (s *PortAudioSource) Stop() error {
	if s.stream == nil {
		return nil
	}
	stream := s.stream
	s.stream = nil

	if err := stream.Stop(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to stop audio stream")
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close audio stream: %w", err)
	}
	return nil
}

func (s *PortAudioSource) streamParameters(deviceID string) (portaudio.StreamParameters, error) {
	var device *portaudio.DeviceInfo

	if deviceID == "" {
		defaultDevice, err := portaudio.DefaultInputDevice()
		if err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("failed to get default input device: %w", err)
		}
		device = defaultDevice
		s.logger.Info().Str("device", device.Name).Msg("Using default audio device")
	} else {
		index, err := strconv.Atoi(deviceID)
		if err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("invalid device id %q", deviceID)
		}
		devices, err := portaudio.Devices()
		if err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("failed to get audio devices: %w", err)
		}
		if index < 0 || index >= len(devices) {
			return portaudio.StreamParameters{}, fmt.Errorf("unknown device id %q", deviceID)
		}
		device = devices[index]
		if device.MaxInputChannels == 0 {
			return portaudio.StreamParameters{}, fmt.Errorf("device %q is not an input device", device.Name)
		}
		s.logger.Info().Str("device", device.Name).Msg("Using selected audio device")
	}

	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(SampleRate),
		FramesPerBuffer: FramesPerBuffer,
	}, nil
}
