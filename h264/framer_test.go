package h264

import (
	"bytes"
	"testing"
)

// TestFrameScenarioS6 is spec scenario S6.
func TestFrameScenarioS6(t *testing.T) {
	src := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0xaa,
		0x00, 0x00, 0x01, 0x68, 0xbb,
		0x00, 0x00, 0x00, 0x01, 0x65, 0xcc,
	}
	want := [][]byte{
		{0x67, 0xaa},
		{0x68, 0xbb},
		{0x65, 0xcc},
	}

	got := Frame(src)
	if len(got) != len(want) {
		t.Fatalf("got %d NAL units, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("NAL %d = % x, want % x", i, got[i], want[i])
		}
	}
}

func TestFrameNoStartCode(t *testing.T) {
	got := Frame([]byte{0x01, 0x02, 0x03})
	if len(got) != 0 {
		t.Fatalf("got %d NAL units, want 0: %v", len(got), got)
	}
}

func TestFrameStartCodeAtZero(t *testing.T) {
	src := []byte{0x00, 0x00, 0x01, 0x67, 0xaa, 0x00, 0x00, 0x01, 0x68, 0xbb}
	got := Frame(src)
	want := [][]byte{{0x67, 0xaa}, {0x68, 0xbb}}
	if len(got) != len(want) {
		t.Fatalf("got %d NAL units, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("NAL %d = % x, want % x", i, got[i], want[i])
		}
	}
}

func TestFrameFourByteStartCode(t *testing.T) {
	src := []byte{0x00, 0x00, 0x00, 0x01, 0x09, 0xf0}
	got := Frame(src)
	want := [][]byte{{0x09, 0xf0}}
	if len(got) != 1 || !bytes.Equal(got[0], want[0]) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestFrameRoundTrip is spec property P5: re-prefixing each produced NAL
// with a 4-byte start code and re-feeding it reproduces the same list.
func TestFrameRoundTrip(t *testing.T) {
	src := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0xaa, 0xbb,
		0x00, 0x00, 0x01, 0x68, 0xcc,
		0x00, 0x00, 0x00, 0x01, 0x65, 0xdd, 0xee, 0xff,
	}
	first := Frame(src)

	var rebuilt []byte
	for _, nalu := range first {
		rebuilt = append(rebuilt, 0x00, 0x00, 0x00, 0x01)
		rebuilt = append(rebuilt, nalu...)
	}
	second := Frame(rebuilt)

	if len(first) != len(second) {
		t.Fatalf("round trip changed NAL count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Errorf("NAL %d changed on round trip: % x vs % x", i, first[i], second[i])
		}
	}
}
