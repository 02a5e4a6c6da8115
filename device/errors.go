package device

import "errors"

// Sentinel errors of the device package. ErrNotCaptureDevice and
// ErrNoCompatibleFormat are setup-fatal and returned synchronously by
// CaptureState.Start; the capture worker performs no setup of its own.
// ErrBufferIndexOutOfRange is returned by Pool.Dequeue, and DrainOnce
// logs it at Warning and carries on.
var (
	// ErrNotCaptureDevice is returned when a node lacks VIDEO_CAPTURE or
	// STREAMING, or advertises VIDEO_OUTPUT (rejected during discovery
	// and open).
	ErrNotCaptureDevice = errors.New("device: not a suitable capture device")

	// ErrNoCompatibleFormat is returned when the format negotiator
	// exhausts geometry degradation and the YUV420P last-resort fallback
	// without finding an accepted (pix_fmt, size).
	ErrNoCompatibleFormat = errors.New("device: no compatible pixel format/size negotiated")

	// ErrBufferIndexOutOfRange is returned when DQBUF reports an index
	// outside [0, SlotCount) -- spec.md's "Runtime unrecoverable" case.
	ErrBufferIndexOutOfRange = errors.New("device: dequeued buffer index out of range")
)
