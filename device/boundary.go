package device

// Rotator rotates a planar YUV frame by angleDeg degrees. It is an
// external collaborator (spec.md §1): no concrete implementation lives
// in this repo. On allocation failure within an implementation, callers
// of Rotator are expected to forward the original frame unchanged
// rather than treat the error as fatal (spec.md §4.6).
type Rotator interface {
	Rotate(frame []byte, angleDeg int, w, h uint32) ([]byte, error)
}

// RTPPacketiser packs a list of NAL units into RTP packets for
// transport, stamped with a 90 kHz RTP video timestamp and an optional
// marker bit. It is an external collaborator consumed as an opaque
// service; the only implementation in this repo is cmd/camsrcd's
// logPacketiser, which logs instead of sending RTP packets.
type RTPPacketiser interface {
	PackNALUs(nalus [][]byte, timestamp90kHz uint32, marker bool) error
}

// VideoSink receives a presented non-H.264 frame, stamped with a 90 kHz
// timestamp and marker bit, per spec.md §4.6's "push to the downstream
// sink" step. It is an external collaborator; the only implementation
// in this repo is cmd/camsrcd's fileSink, which writes each frame to a
// file.
type VideoSink interface {
	PushFrame(data []byte, timestamp90kHz uint32, marker bool) error
}
