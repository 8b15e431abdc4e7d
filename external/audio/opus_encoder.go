package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/hraban/opus"
)

const (
	opusFrameMs = 20
	// Granule positions in Ogg Opus always count 48 kHz samples.
	opusGranuleRate   = 48000
	opusMaxPacketSize = 4000
)

// OpusEncoder is the preferred clip encoder: Opus frames muxed into an Ogg
// container. Availability depends on the host having libopus, so callers
// probe Supported before use and fall back to WAV.
type OpusEncoder struct{}

func NewOpusEncoder() *OpusEncoder {
	return &OpusEncoder{}
}

func (e *OpusEncoder) Name() string { return "opus" }

func (e *OpusEncoder) MIME() string { return "audio/ogg" }

func (e *OpusEncoder) Supported() bool {
	_, err := opus.NewEncoder(opusGranuleRate, 1, opus.AppVoIP)
	return err == nil
}

func (e *OpusEncoder) Encode(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("opus encode: empty input")
	}
	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}

	samples := pcmToInt16(pcm)
	frameSize := sampleRate * opusFrameMs / 1000
	packetBuf := make([]byte, opusMaxPacketSize)

	var packets [][]byte
	for off := 0; off < len(samples); off += frameSize {
		end := off + frameSize
		frame := make([]int16, frameSize)
		if end > len(samples) {
			// Final partial frame is padded with silence.
			copy(frame, samples[off:])
		} else {
			copy(frame, samples[off:end])
		}
		n, err := enc.Encode(frame, packetBuf)
		if err != nil {
			return nil, fmt.Errorf("opus encode frame at %d: %w", off, err)
		}
		packet := make([]byte, n)
		copy(packet, packetBuf[:n])
		packets = append(packets, packet)
	}

	granulePerPacket := uint64(opusGranuleRate * opusFrameMs / 1000)
	return muxOggOpus(packets, sampleRate, granulePerPacket)
}

func pcmToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}
