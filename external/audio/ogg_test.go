package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// parsePages walks the ogg stream and returns (flags, packet payload sizes)
// per page, checking framing invariants along the way.
func parsePages(t *testing.T, stream []byte) (flags []byte, payloads [][]byte) {
	t.Helper()
	off := 0
	for off < len(stream) {
		if string(stream[off:off+4]) != "OggS" {
			t.Fatalf("missing OggS capture pattern at %d", off)
		}
		if stream[off+4] != 0 {
			t.Fatalf("unexpected stream structure version: %d", stream[off+4])
		}
		pageFlags := stream[off+5]
		segCount := int(stream[off+26])
		lacing := stream[off+27 : off+27+segCount]
		payloadLen := 0
		for _, v := range lacing {
			payloadLen += int(v)
		}
		bodyStart := off + 27 + segCount
		flags = append(flags, pageFlags)
		payloads = append(payloads, stream[bodyStart:bodyStart+payloadLen])
		off = bodyStart + payloadLen
	}
	return flags, payloads
}

func TestMuxOggOpus_StructureAndFlags(t *testing.T) {
	packets := [][]byte{{1, 2, 3}, {4, 5}, {6}}
	out, err := muxOggOpus(packets, 16000, 960)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	flags, payloads := parsePages(t, out)
	if len(flags) != 3 {
		t.Fatalf("expected head, tags and one audio page, got %d pages", len(flags))
	}
	if flags[0] != oggFlagBOS {
		t.Fatalf("first page must carry BOS, got flags %#x", flags[0])
	}
	if !bytes.HasPrefix(payloads[0], []byte("OpusHead")) {
		t.Fatalf("first page must carry OpusHead, got %q", payloads[0][:8])
	}
	if !bytes.HasPrefix(payloads[1], []byte("OpusTags")) {
		t.Fatalf("second page must carry OpusTags, got %q", payloads[1][:8])
	}
	if flags[len(flags)-1]&oggFlagEOS == 0 {
		t.Fatal("last page must carry EOS")
	}
	if !bytes.Equal(payloads[2], []byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("unexpected audio payload: %v", payloads[2])
	}
}

func TestMuxOggOpus_HeadDeclaresInputRate(t *testing.T) {
	out, err := muxOggOpus([][]byte{{9}}, 24000, 960)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, payloads := parsePages(t, out)
	head := payloads[0]
	if got := binary.LittleEndian.Uint32(head[12:]); got != 24000 {
		t.Fatalf("unexpected input sample rate in OpusHead: %d", got)
	}
	if head[9] != 1 {
		t.Fatalf("unexpected channel count: %d", head[9])
	}
}

func TestMuxOggOpus_LargePacketLacing(t *testing.T) {
	// A 510-byte packet needs lacing 255,255,0.
	big := make([]byte, 510)
	out, err := muxOggOpus([][]byte{big}, 16000, 960)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, payloads := parsePages(t, out)
	if len(payloads[2]) != 510 {
		t.Fatalf("payload size mismatch: %d", len(payloads[2]))
	}
}

func TestMuxOggOpus_CRCIsFilledIn(t *testing.T) {
	out, err := muxOggOpus([][]byte{{1}}, 16000, 960)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Recompute the first page's CRC and compare with the stored value.
	segCount := int(out[26])
	pageLen := 27 + segCount
	for _, v := range out[27 : 27+segCount] {
		pageLen += int(v)
	}
	page := make([]byte, pageLen)
	copy(page, out[:pageLen])
	stored := binary.LittleEndian.Uint32(page[22:])
	binary.LittleEndian.PutUint32(page[22:], 0)
	if computed := oggCRC(page); computed != stored {
		t.Fatalf("CRC mismatch: stored %#x computed %#x", stored, computed)
	}
}

func TestOpusEncoder_EncodesWhenSupported(t *testing.T) {
	enc := NewOpusEncoder()
	if !enc.Supported() {
		t.Skip("libopus not available on this host")
	}
	pcm := make([]byte, 16000*2/10) // 100ms of silence at 16kHz
	out, err := enc.Encode(pcm, 16000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.HasPrefix(out, []byte("OggS")) {
		t.Fatal("expected an ogg stream")
	}
	if enc.MIME() != "audio/ogg" {
		t.Fatalf("unexpected MIME: %s", enc.MIME())
	}
}

func TestOpusEncoder_RejectsEmptyInput(t *testing.T) {
	if _, err := NewOpusEncoder().Encode(nil, 16000); err == nil {
		t.Fatal("expected error for empty input")
	}
}
