package audio

import (
	"context"
	"errors"
)

// Input failure reasons, mapped by adapters so the capture layer can tell
// the candidate why the microphone did not start.
var (
	ErrPermissionDenied = errors.New("audio input permission denied")
	ErrNoDevice         = errors.New("no audio input device found")
)

// FallbackMIME is the tag applied to clips whose encoder did not report one.
const FallbackMIME = "audio/wav"

type InputSettings struct {
	SampleRate       int
	EchoCancellation bool
	NoiseSuppression bool
}

// Stream is an open capture stream of raw PCM16LE mono samples. Close
// releases the underlying input device and must be called on every exit
// path, error paths included.
type Stream interface {
	Read(buf []byte) (int, error)
	Close() error
}

type Input interface {
	Open(ctx context.Context, settings InputSettings) (Stream, error)
}

// Clip is a finished recording assembled from captured chunks.
type Clip struct {
	MIME string
	Data []byte
}

// Encoder wraps raw PCM16LE mono samples in a transportable container.
type Encoder interface {
	Name() string
	MIME() string
	// Supported reports whether the encoder can run on this host. The
	// capture layer walks its encoder list in preference order and takes
	// the first supported one.
	Supported() bool
	Encode(pcm []byte, sampleRate int) ([]byte, error)
}

type Player interface {
	Play(ctx context.Context, clip Clip) error
}
