package device

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ausocean/utils/logging"
	sys "golang.org/x/sys/unix"

	"github.com/arlojames/camsrc/camconfig"
	"github.com/arlojames/camsrc/uvcx"
	"github.com/arlojames/camsrc/v4l2"
)

// mimeH264 is the MIME type camconfig.Config.NoEncodeMIME compares
// against to suppress the UVC H.264 extension-unit negotiation.
const mimeH264 = "video/h264"

// outputQueueCapacity bounds the raw-video producer/consumer queue of
// spec.md §3's CaptureState. Raw frames are trimmed to the newest on
// every presentation tick, so the bound mostly protects against an
// unusually slow consumer; overflow silently drops the oldest queued
// frame, which is harmless since only the newest one is ever delivered.
const outputQueueCapacity = 8

// h264QueueCapacity bounds the H.264 access-unit queue. Unlike raw
// video, every access unit matters (spec.md §5: "strictly FIFO; every
// captured access unit is delivered"), so this is sized generously and
// overflow is never a silent drop: it is logged at Warning, since a
// full H.264 queue means the consumer has fallen far enough behind
// that something downstream needs attention.
const h264QueueCapacity = 256

// pollTimeout is the capture worker's per-iteration poll budget
// (spec.md §4.5/§5).
const pollTimeout = 50 * time.Millisecond

// QueuedFrame is one frame handed from the capture worker to the
// presentation step: a shared-ownership handle on its backing
// FrameSlot, the number of valid bytes, and whether it closes an RTP
// access unit (true for every MJPEG frame, since MJPEG frames are
// always a complete unit).
type QueuedFrame struct {
	Handle *Handle
	Length uint32
	Marker bool
}

// CaptureState is the process-wide state for one open capture device:
// negotiated format, buffer pool, background capture worker, and the
// bounded queue it feeds the presentation step through. Grounded in the
// teacher's device.Device open/close lifecycle and functional-option
// configuration, generalized to the reference-counted pool and
// producer/consumer split that spec.md §3's CaptureState describes.
type CaptureState struct {
	cfg      camconfig.Config
	strategy ScoringStrategy
	log      logging.Logger

	fd   uintptr
	pool *Pool
	fmt  NegotiatedFormat

	running atomic.Bool

	mu        sync.Mutex
	queue     []QueuedFrame
	h264Queue []QueuedFrame

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCaptureState builds a CaptureState that has not yet opened its
// device. Call Start to open it, negotiate a format, and launch the
// background capture worker.
func NewCaptureState(cfg camconfig.Config, log logging.Logger) *CaptureState {
	return &CaptureState{
		cfg:      cfg,
		strategy: DetectStrategy(),
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Format returns the format this CaptureState negotiated. Valid only
// after a successful Start.
func (c *CaptureState) Format() NegotiatedFormat { return c.fmt }

// SupportsEncoding reports whether this CaptureState is permitted to
// advertise and negotiate the given MIME type, consulting
// camconfig.Config.NoEncodeMIME (V4L2_NO_ENCODE): a case-insensitive
// match there suppresses that MIME type, regardless of what the device
// itself is capable of.
func (c *CaptureState) SupportsEncoding(mime string) bool {
	return !strings.EqualFold(c.cfg.NoEncodeMIME, mime)
}

// Start opens the device, rejects it if unsuitable, negotiates a
// format, allocates the buffer pool, and launches the background
// capture worker goroutine (spec.md §4.5's "created in the graph's
// pre-processing hook"). Setup-fatal failures are returned here,
// synchronously, rather than discovered later inside the worker.
func (c *CaptureState) Start() error {
	fd, err := v4l2.OpenDevice(c.cfg.DevicePath, sys.O_RDWR|sys.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("device: open %s: %w", c.cfg.DevicePath, err)
	}

	cap, err := v4l2.GetCapability(fd)
	if err != nil {
		v4l2.CloseDevice(fd)
		return fmt.Errorf("device: query capability: %w", err)
	}
	if !cap.IsSuitableCaptureDevice() {
		v4l2.CloseDevice(fd)
		return fmt.Errorf("%w: %s", ErrNotCaptureDevice, c.cfg.DevicePath)
	}

	nf, err := Negotiate(fd, c.cfg, c.strategy, c.log)
	if err != nil {
		v4l2.CloseDevice(fd)
		return err
	}

	if nf.PixFmt == camconfig.PixelFormatH264 && c.SupportsEncoding(mimeH264) {
		if _, err := uvcx.Negotiate(fd, uvcx.Config{}, c.log); err != nil {
			c.log.Warning("uvc h264 extension unit negotiation failed, continuing with raw stream settings", "error", err)
		}
	}

	pool, err := NewPool(fd)
	if err != nil {
		v4l2.CloseDevice(fd)
		return fmt.Errorf("device: allocate buffer pool: %w", err)
	}
	if err := v4l2.StreamOn(fd); err != nil {
		pool.Close()
		v4l2.CloseDevice(fd)
		return fmt.Errorf("device: stream on: %w", err)
	}

	c.fd = fd
	c.pool = pool
	c.fmt = nf
	c.running.Store(true)

	go c.run()
	return nil
}

// run is the capture worker's producer loop (spec.md §4.5): each
// iteration grabs at most one frame within pollTimeout, duplicates the
// slot's ownership for downstream delivery, tags the MJPEG marker, and
// pushes it onto the bounded queue.
func (c *CaptureState) run() {
	defer close(c.doneCh)
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		result, err := DrainOnce(c.pool, c.fd, pollTimeout, c.fmt.PictureSize, c.log)
		if err != nil {
			c.log.Error("capture worker: unrecoverable drain failure, stopping", "error", err)
			return
		}
		if result == nil {
			continue
		}

		frame := QueuedFrame{
			Handle: result.Handle,
			Length: result.Length,
			Marker: c.fmt.PixFmt == camconfig.PixelFormatMJPEG,
		}
		c.push(frame)
	}
}

// push appends frame to the format-appropriate output queue. Raw video
// uses the bounded drop-oldest queue, since only the newest frame is
// ever delivered. H.264 uses the capacity-large queue and never drops:
// an access unit is only ever discarded once popOne has delivered it,
// so an overflow here is logged at Warning rather than silently
// dropped (spec.md §5's "every captured access unit is delivered").
func (c *CaptureState) push(frame QueuedFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fmt.PixFmt == camconfig.PixelFormatH264 {
		if len(c.h264Queue) >= h264QueueCapacity {
			c.log.Warning("h264 queue full, consumer is falling behind", "capacity", h264QueueCapacity)
		}
		c.h264Queue = append(c.h264Queue, frame)
		return
	}

	if len(c.queue) >= outputQueueCapacity {
		dropped := c.queue[0]
		c.queue = c.queue[1:]
		dropped.Handle.Release()
	}
	c.queue = append(c.queue, frame)
}

// popOne removes and returns the oldest queued H.264 access unit, FIFO,
// or false if the queue is empty.
func (c *CaptureState) popOne() (QueuedFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.h264Queue) == 0 {
		return QueuedFrame{}, false
	}
	f := c.h264Queue[0]
	c.h264Queue = c.h264Queue[1:]
	return f, true
}

// drainKeepLast removes every queued frame, releasing all but the
// newest, and returns the newest (or false if the queue was empty).
// Used for raw video, where only the most recent frame matters.
func (c *CaptureState) drainKeepLast() (QueuedFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return QueuedFrame{}, false
	}
	for _, dropped := range c.queue[:len(c.queue)-1] {
		dropped.Handle.Release()
	}
	last := c.queue[len(c.queue)-1]
	c.queue = c.queue[:0]
	return last, true
}

// Stop signals the capture worker to exit, joins it with no timeout,
// releases any frames remaining in the queues, and tears the device
// down: Pool.Close (STREAMOFF, then unmap), then the fd is closed.
// Kernel-held buffers are not drained before STREAMOFF.
func (c *CaptureState) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	close(c.stopCh)
	<-c.doneCh

	c.mu.Lock()
	for _, f := range c.queue {
		f.Handle.Release()
	}
	c.queue = nil
	for _, f := range c.h264Queue {
		f.Handle.Release()
	}
	c.h264Queue = nil
	c.mu.Unlock()

	var firstErr error
	if err := c.pool.Close(); err != nil {
		firstErr = err
	}
	if err := v4l2.CloseDevice(c.fd); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
