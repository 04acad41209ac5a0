package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recording session metrics
	activeRecordings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxtake_active_recordings",
		Help: "Number of live recording sessions (0 or 1)",
	})

	recordingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxtake_recordings_total",
		Help: "Total number of recording sessions started",
	})

	recordingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxtake_recording_duration_seconds",
		Help:    "Duration of recording sessions in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1200},
	})

	recordingTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxtake_recording_timeouts_total",
		Help: "Recording sessions stopped by the duration cap",
	})

	// Transcription pipeline metrics
	transcriptionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxtake_transcription_requests_total",
		Help: "Total number of transcription requests",
	}, []string{"status"}) // status: success, provider_error, transport_error, config_error

	transcriptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxtake_transcription_latency_seconds",
		Help:    "Transcription round-trip latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	})

	// Upload handling metrics
	tempCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxtake_temp_cleanup_failures_total",
		Help: "Temporary upload files that could not be deleted",
	})

	// Audio metrics
	audioSamplesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxtake_audio_samples_total",
		Help: "Total audio samples captured from the microphone",
	})

	waveformFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxtake_waveform_frames_total",
		Help: "Total waveform frames pushed to UI clients",
	})
)

// RecordRecordingStart records the start of a recording session.
func RecordRecordingStart() {
	activeRecordings.Inc()
	recordingsTotal.Inc()
}

// RecordRecordingEnd records the end of a recording session.
func RecordRecordingEnd(start time.Time) {
	activeRecordings.Dec()
	recordingDuration.Observe(time.Since(start).Seconds())
}

// RecordRecordingTimeout records a session stopped by the duration cap.
func RecordRecordingTimeout() {
	recordingTimeouts.Inc()
}

// RecordTranscription records one transcription attempt with its outcome.
func RecordTranscription(status string, latency time.Duration) {
	transcriptionRequests.WithLabelValues(status).Inc()
	transcriptionLatency.Observe(latency.Seconds())
}

// RecordCleanupFailure records a temp file that survived its request.
func RecordCleanupFailure() {
	tempCleanupFailures.Inc()
}

// RecordAudioSamples records samples captured from the microphone.
func RecordAudioSamples(n int) {
	audioSamplesCaptured.Add(float64(n))
}

// RecordWaveformFrame records one frame pushed to UI clients.
func RecordWaveformFrame() {
	waveformFrames.Inc()
}
