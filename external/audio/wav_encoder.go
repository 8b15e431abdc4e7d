package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	wavHeaderSize = 44
	wavChannels   = 1
	wavBitDepth   = 16
)

// WAVEncoder wraps PCM16LE mono samples in a RIFF/WAVE container. It has no
// host requirements and serves as the fallback when the compressed encoder
// is unavailable.
type WAVEncoder struct{}

func NewWAVEncoder() *WAVEncoder {
	return &WAVEncoder{}
}

func (e *WAVEncoder) Name() string { return "wav" }

func (e *WAVEncoder) MIME() string { return "audio/wav" }

func (e *WAVEncoder) Supported() bool { return true }

func (e *WAVEncoder) Encode(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav encode: invalid sample rate %d", sampleRate)
	}
	byteRate := sampleRate * wavChannels * wavBitDepth / 8
	blockAlign := wavChannels * wavBitDepth / 8

	b := make([]byte, 0, wavHeaderSize+len(pcm))
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(wavHeaderSize-8+len(pcm)))
	b = append(b, "WAVE"...)

	b = append(b, "fmt "...)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint16(b, 1) // PCM
	b = binary.LittleEndian.AppendUint16(b, wavChannels)
	b = binary.LittleEndian.AppendUint32(b, uint32(sampleRate))
	b = binary.LittleEndian.AppendUint32(b, uint32(byteRate))
	b = binary.LittleEndian.AppendUint16(b, uint16(blockAlign))
	b = binary.LittleEndian.AppendUint16(b, wavBitDepth)

	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(pcm)))
	b = append(b, pcm...)
	return b, nil
}
