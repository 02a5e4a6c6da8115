package device

import (
	"errors"
	"time"

	"github.com/ausocean/utils/logging"
	sys "golang.org/x/sys/unix"

	"github.com/arlojames/camsrc/v4l2"
)

// emptyFrameThreshold is the known empty-frame driver quirk of spec.md
// §4.4: a dequeued buffer reporting this few bytes or fewer carries no
// real frame and is dropped rather than delivered.
const emptyFrameThreshold = 30

// idleSleep bounds the drain loop's hot-spin when nothing was eligible
// to queue and nothing is currently with the kernel.
const idleSleep = 100 * time.Millisecond

// eagainSleep is the pause applied when DQBUF reports EAGAIN despite a
// successful poll, a known driver bug spec.md §4.4 asks us to paper
// over rather than treat as fatal.
const eagainSleep = 20 * time.Millisecond

// DrainResult is one delivered frame out of DrainOnce: a shared-ownership
// handle on the kernel buffer plus the number of bytes the caller should
// treat as valid frame data.
type DrainResult struct {
	Handle *Handle
	Length uint32
}

// DrainOnce runs one tick of the buffer pool drain loop described in
// spec.md §4.4: queue every slot with no downstream holder, poll for a
// readable buffer within timeout, and dequeue at most one filled frame.
// A nil result with a nil error means nothing was ready this tick; that
// is the expected steady-state outcome, not a failure.
//
// pictureSize, when nonzero, overrides the driver-reported bytesused as
// the frame's logical length, guarding against drivers that leave a
// meaningless value there.
func DrainOnce(pool *Pool, fd uintptr, timeout time.Duration, pictureSize uint32, log logging.Logger) (*DrainResult, error) {
	queuedAny, err := pool.QueueEligible()
	if err != nil {
		return nil, err
	}

	if !pool.AnyWithKernel() {
		if !queuedAny {
			time.Sleep(idleSleep)
		}
		return nil, nil
	}

	if err := v4l2.WaitForDeviceRead(fd, timeout); err != nil {
		// Plain timeout (the common case) and any other poll failure are
		// both just "nothing ready this tick".
		return nil, nil
	}

	slot, buf, err := pool.Dequeue()
	if err != nil {
		// v4l2.send leaks the raw errno through for EAGAIN/ETIMEDOUT rather
		// than its ErrorTemporary/ErrorTimeout sentinels (see v4l2/syscalls.go),
		// so EAGAIN is matched against the errno directly here.
		if errors.Is(err, sys.EAGAIN) {
			time.Sleep(eagainSleep)
			return nil, nil
		}
		if errors.Is(err, sys.EIO) {
			// Ignored per spec.md §4.4/§7: a known driver quirk, not a
			// condition worth logging every occurrence of.
			return nil, nil
		}
		// An out-of-range index and any other kernel error are
		// "runtime unrecoverable" per spec.md §7: warn and produce
		// nothing this cycle rather than fail the worker.
		log.Warning("dequeue buffer failed", "error", err)
		return nil, nil
	}

	if buf.BytesUsed <= emptyFrameThreshold {
		pool.RecordEmptyQuirk()
		pool.Drop(slot)
		return nil, nil
	}

	length := buf.BytesUsed
	if pictureSize != 0 {
		length = pictureSize
	}

	return &DrainResult{Handle: pool.Acquire(slot), Length: length}, nil
}
