package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/audio"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRecording Phase = "recording"
	PhaseRecorded  Phase = "recorded"
)

var (
	// ErrRecorderBusy guards the capture mutual exclusion: no new recording
	// while one is active or a finished one has not been cleared.
	ErrRecorderBusy    = errors.New("a recording is already active or pending")
	ErrNotRecording    = errors.New("no recording is active")
	ErrNoAudioCaptured = errors.New("no audio recorded")
	ErrNothingRecorded = errors.New("no finished recording")
)

const (
	defaultChunkDuration = time.Second
	defaultTickInterval  = time.Second
)

// Recorder owns one recording session: device acquisition, time-sliced
// chunk capture, the elapsed-seconds ticker and clip assembly on stop.
type Recorder struct {
	input      audio.Input
	player     audio.Player
	encoders   []audio.Encoder
	sampleRate int

	chunkDuration time.Duration
	tickInterval  time.Duration
	onElapsed     func(seconds int)

	mu     sync.Mutex
	phase  Phase
	chunks [][]byte
	clip   *audio.Clip
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecorder(input audio.Input, player audio.Player, encoders []audio.Encoder, sampleRate int) *Recorder {
	return &Recorder{
		input:         input,
		player:        player,
		encoders:      encoders,
		sampleRate:    sampleRate,
		chunkDuration: defaultChunkDuration,
		tickInterval:  defaultTickInterval,
		phase:         PhaseIdle,
	}
}

// SetElapsedFunc registers the callback invoked once per tick with the
// elapsed whole seconds, and with zero when recording stops.
func (r *Recorder) SetElapsedFunc(fn func(seconds int)) {
	r.onElapsed = fn
}

func (r *Recorder) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Clip returns the finished recording, nil unless in the recorded phase.
func (r *Recorder) Clip() *audio.Clip {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clip
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhaseIdle {
		r.mu.Unlock()
		return ErrRecorderBusy
	}
	r.phase = PhaseRecording
	r.mu.Unlock()

	stream, err := r.input.Open(ctx, audio.InputSettings{
		SampleRate:       r.sampleRate,
		EchoCancellation: true,
		NoiseSuppression: true,
	})
	if err != nil {
		r.mu.Lock()
		r.phase = PhaseIdle
		r.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.chunks = nil
	r.clip = nil
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go r.run(runCtx, stream, done)
	return nil
}

// run owns the stream for the lifetime of one recording. The device is
// released on every exit path.
func (r *Recorder) run(ctx context.Context, stream audio.Stream, done chan struct{}) {
	defer close(done)
	defer func() {
		_ = stream.Close()
	}()

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	readDone := make(chan error, 1)
	go func() {
		readDone <- r.readChunks(stream)
	}()

	elapsed := 0
	for {
		select {
		case <-ctx.Done():
			// Closing the stream unblocks the pending Read.
			_ = stream.Close()
			<-readDone
			return
		case <-ticker.C:
			elapsed++
			if r.onElapsed != nil {
				r.onElapsed(elapsed)
			}
		case err := <-readDone:
			if err != nil {
				slog.Warn("capture stream ended", "error", err)
			}
			return
		}
	}
}

func (r *Recorder) readChunks(stream audio.Stream) error {
	chunkBytes := r.sampleRate * 2 * int(r.chunkDuration.Milliseconds()) / 1000
	if chunkBytes <= 0 {
		chunkBytes = r.sampleRate * 2
	}
	buf := make([]byte, chunkBytes)
	fill := 0
	for {
		n, err := stream.Read(buf[fill:])
		fill += n
		if fill == len(buf) {
			r.appendChunk(buf[:fill])
			fill = 0
		}
		if err != nil {
			// The trailing partial chunk still belongs to the recording.
			if fill > 0 {
				r.appendChunk(buf[:fill])
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (r *Recorder) appendChunk(chunk []byte) {
	copied := make([]byte, len(chunk))
	copy(copied, chunk)
	r.mu.Lock()
	r.chunks = append(r.chunks, copied)
	r.mu.Unlock()
}

// Stop ends the active recording: the ticker is cancelled and the counter
// reset, the device released, and the captured chunks assembled into a
// single clip. Zero captured chunks yield ErrNoAudioCaptured and the
// recorder returns to idle.
func (r *Recorder) Stop() (*audio.Clip, error) {
	r.mu.Lock()
	if r.phase != PhaseRecording {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
	if r.onElapsed != nil {
		r.onElapsed(0)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	chunks := r.chunks
	r.chunks = nil
	r.cancel = nil
	r.done = nil

	if len(chunks) == 0 {
		r.phase = PhaseIdle
		return nil, ErrNoAudioCaptured
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	pcm := make([]byte, 0, total)
	for _, c := range chunks {
		pcm = append(pcm, c...)
	}

	clip := r.encode(pcm)
	r.clip = &clip
	r.phase = PhaseRecorded
	slog.Debug("recording assembled", "bytes", len(clip.Data), "mime", clip.MIME, "chunks", len(chunks))
	return r.clip, nil
}

// encode walks the encoder preference chain and falls back to the raw
// samples tagged with the default WAV MIME when no encoder applies.
func (r *Recorder) encode(pcm []byte) audio.Clip {
	for _, enc := range r.encoders {
		if !enc.Supported() {
			continue
		}
		data, err := enc.Encode(pcm, r.sampleRate)
		if err != nil {
			slog.Warn("encoder failed, trying next", "encoder", enc.Name(), "error", err)
			continue
		}
		mime := enc.MIME()
		if mime == "" {
			mime = audio.FallbackMIME
		}
		return audio.Clip{MIME: mime, Data: data}
	}
	return audio.Clip{MIME: audio.FallbackMIME, Data: pcm}
}

// Discard drops a finished recording and returns the recorder to idle.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRecorded {
		return ErrNothingRecorded
	}
	r.clip = nil
	r.phase = PhaseIdle
	return nil
}

// Play replays the finished recording through the configured player.
func (r *Recorder) Play(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhaseRecorded || r.clip == nil {
		r.mu.Unlock()
		return ErrNothingRecorded
	}
	clip := *r.clip
	r.mu.Unlock()
	return r.player.Play(ctx, clip)
}

// MicFailureMessage maps an input acquisition error onto the message shown
// to the candidate, distinguishing denied permission from a missing device.
func MicFailureMessage(err error) string {
	switch {
	case errors.Is(err, audio.ErrPermissionDenied):
		return "Microphone permission denied. Allow audio capture and try again."
	case errors.Is(err, audio.ErrNoDevice):
		return "No microphone found. Check your audio input device."
	default:
		return "Could not start recording: " + err.Error()
	}
}
