package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Minimal Ogg page writer, enough to mux Opus packets into a file that
// players and transcription services accept. RFC 3533 framing with the
// RFC 7845 OpusHead/OpusTags header packets.

const (
	oggFlagBOS = 0x02
	oggFlagEOS = 0x04

	// Segment table limit per page. Packets are batched into pages but a
	// page is flushed before its lacing table would overflow.
	oggMaxSegments = 255

	oggStreamSerial = 0x6d656e73
)

var oggCRCTable = makeOggCRCTable()

func makeOggCRCTable() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}

func oggCRC(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

type oggWriter struct {
	buf     bytes.Buffer
	pageSeq uint32
}

func (w *oggWriter) writePage(flags byte, granule uint64, packets [][]byte) error {
	var lacing []byte
	var payload []byte
	for _, p := range packets {
		remaining := len(p)
		for {
			if remaining >= 255 {
				lacing = append(lacing, 255)
				remaining -= 255
				continue
			}
			lacing = append(lacing, byte(remaining))
			break
		}
		payload = append(payload, p...)
	}
	if len(lacing) > oggMaxSegments {
		return fmt.Errorf("ogg page overflow: %d segments", len(lacing))
	}

	header := make([]byte, 0, 27+len(lacing))
	header = append(header, "OggS"...)
	header = append(header, 0, flags)
	header = binary.LittleEndian.AppendUint64(header, granule)
	header = binary.LittleEndian.AppendUint32(header, oggStreamSerial)
	header = binary.LittleEndian.AppendUint32(header, w.pageSeq)
	header = binary.LittleEndian.AppendUint32(header, 0) // CRC placeholder
	header = append(header, byte(len(lacing)))
	header = append(header, lacing...)

	page := append(header, payload...)
	binary.LittleEndian.PutUint32(page[22:], oggCRC(page))

	w.pageSeq++
	_, err := w.buf.Write(page)
	return err
}

func opusHeadPacket(sampleRate int) []byte {
	p := make([]byte, 0, 19)
	p = append(p, "OpusHead"...)
	p = append(p, 1)                           // version
	p = append(p, 1)                           // channel count
	p = binary.LittleEndian.AppendUint16(p, 0) // pre-skip
	p = binary.LittleEndian.AppendUint32(p, uint32(sampleRate))
	p = binary.LittleEndian.AppendUint16(p, 0) // output gain
	p = append(p, 0)                           // channel mapping family
	return p
}

func opusTagsPacket() []byte {
	const vendor = "mensetsukun"
	p := make([]byte, 0, 8+4+len(vendor)+4)
	p = append(p, "OpusTags"...)
	p = binary.LittleEndian.AppendUint32(p, uint32(len(vendor)))
	p = append(p, vendor...)
	p = binary.LittleEndian.AppendUint32(p, 0) // comment count
	return p
}

// muxOggOpus frames already-encoded Opus packets. granulePerPacket is the
// packet duration in 48 kHz samples, which is what Ogg Opus granule
// positions count regardless of the input sample rate.
func muxOggOpus(packets [][]byte, sampleRate int, granulePerPacket uint64) ([]byte, error) {
	w := &oggWriter{}
	if err := w.writePage(oggFlagBOS, 0, [][]byte{opusHeadPacket(sampleRate)}); err != nil {
		return nil, err
	}
	if err := w.writePage(0, 0, [][]byte{opusTagsPacket()}); err != nil {
		return nil, err
	}

	var granule uint64
	var pending [][]byte
	var pendingSegments int
	flush := func(last bool) error {
		if len(pending) == 0 {
			return nil
		}
		flags := byte(0)
		if last {
			flags = oggFlagEOS
		}
		err := w.writePage(flags, granule, pending)
		pending = nil
		pendingSegments = 0
		return err
	}

	for i, p := range packets {
		segments := len(p)/255 + 1
		if pendingSegments+segments > oggMaxSegments {
			if err := flush(false); err != nil {
				return nil, err
			}
		}
		pending = append(pending, p)
		pendingSegments += segments
		granule += granulePerPacket
		if i == len(packets)-1 {
			if err := flush(true); err != nil {
				return nil, err
			}
		}
	}
	return w.buf.Bytes(), nil
}
