package device

import (
	"fmt"
	"sync/atomic"

	"github.com/arlojames/camsrc/v4l2"
)

// SlotCount is the number of kernel buffers (N) requested at pool
// setup, per spec.md §4.4.
const SlotCount = 4

// SlotState is a FrameSlot's position in the state machine of spec.md
// §4.4: WithKernel -> FilledLocal -> FreeLocal -> WithKernel, with any
// state able to transition to Destroyed at teardown.
type SlotState int32

const (
	SlotFreeLocal SlotState = iota
	SlotWithKernel
	SlotFilledLocal
	SlotDestroyed
)

func (s SlotState) String() string {
	switch s {
	case SlotFreeLocal:
		return "FreeLocal"
	case SlotWithKernel:
		return "WithKernel"
	case SlotFilledLocal:
		return "FilledLocal"
	case SlotDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// FrameSlot is one kernel buffer index in [0, SlotCount), its mmap'd
// region, and a reference count governed by the state machine of
// spec.md §4.4: the baseline count of 1 represents the pool's own
// ownership; QBUF and a downstream handoff each add one, their
// counterparts (DQBUF, handle release) each remove one.
//
// Grounded in the teacher's device/frame_pool.go for the atomic
// counter style; the mechanism itself is new, since this is an
// index-addressed kernel buffer table, not a generic sync.Pool of byte
// slices.
type FrameSlot struct {
	Index  uint32
	mem    []byte
	length uint32

	refCount int32 // atomic
	state    int32 // atomic SlotState
}

// RefCount returns the slot's current reference count.
func (s *FrameSlot) RefCount() int32 { return atomic.LoadInt32(&s.refCount) }

// State returns the slot's current state.
func (s *FrameSlot) State() SlotState { return SlotState(atomic.LoadInt32(&s.state)) }

func (s *FrameSlot) setState(st SlotState) { atomic.StoreInt32(&s.state, int32(st)) }

// eligibleForQueue reports whether s may be handed back to the kernel:
// no downstream holder outstanding, and not already with the kernel or
// destroyed.
func (s *FrameSlot) eligibleForQueue() bool {
	st := s.State()
	return s.RefCount() == 1 && st != SlotWithKernel && st != SlotDestroyed
}

// Bytes returns the slot's mmap'd memory, truncated to n bytes (the
// caller-supplied write-pointer override of spec.md §4.4 step 3).
func (s *FrameSlot) Bytes(n uint32) []byte {
	if n > uint32(len(s.mem)) {
		n = uint32(len(s.mem))
	}
	return s.mem[:n]
}

// PoolStats are atomic counters describing the pool's lifetime
// activity, in the teacher's Stats()-struct style.
type PoolStats struct {
	Queued     uint64
	Dequeued   uint64
	Delivered  uint64
	Dropped    uint64
	EmptyQuirk uint64
}

// Pool owns the SlotCount memory-mapped kernel buffers for one capture
// session: REQBUFS, per-buffer QUERYBUF+mmap, and the FrameSlot table.
// Grounded in the teacher's v4l2/streaming.go (InitBuffers,
// MapMemoryBuffer, QueueBuffer, DequeueBuffer).
type Pool struct {
	fd    uintptr
	slots []*FrameSlot

	queuedCount int32 // atomic; must equal count of slots in SlotWithKernel (invariant I1)

	queued     atomic.Uint64
	dequeued   atomic.Uint64
	delivered  atomic.Uint64
	dropped    atomic.Uint64
	emptyQuirk atomic.Uint64
}

// NewPool requests SlotCount kernel buffers in MMAP mode, queries and
// maps each, and wraps each in a FrameSlot at its initial FreeLocal
// state with reference count 1.
func NewPool(fd uintptr) (*Pool, error) {
	if _, err := v4l2.InitBuffers(fd, SlotCount); err != nil {
		return nil, fmt.Errorf("device: request buffers: %w", err)
	}

	p := &Pool{fd: fd, slots: make([]*FrameSlot, SlotCount)}
	for i := uint32(0); i < SlotCount; i++ {
		buf, err := v4l2.GetBuffer(fd, i)
		if err != nil {
			p.unmapAll()
			return nil, fmt.Errorf("device: query buffer %d: %w", i, err)
		}
		mem, err := v4l2.MapMemoryBuffer(fd, int64(buf.Info.Offset), int(buf.Length))
		if err != nil {
			p.unmapAll()
			return nil, fmt.Errorf("device: map buffer %d: %w", i, err)
		}
		p.slots[i] = &FrameSlot{Index: i, mem: mem, length: buf.Length, refCount: 1, state: int32(SlotFreeLocal)}
	}
	return p, nil
}

func (p *Pool) unmapAll() {
	for _, s := range p.slots {
		if s != nil && s.mem != nil {
			_ = v4l2.UnmapMemoryBuffer(s.mem)
		}
	}
}

// QueueCount returns the number of slots currently held by the kernel,
// satisfying invariant I1.
func (p *Pool) QueueCount() int32 { return atomic.LoadInt32(&p.queuedCount) }

// Stats returns a snapshot of the pool's lifetime counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Queued:     p.queued.Load(),
		Dequeued:   p.dequeued.Load(),
		Delivered:  p.delivered.Load(),
		Dropped:    p.dropped.Load(),
		EmptyQuirk: p.emptyQuirk.Load(),
	}
}

// QueueEligible enqueues every slot with no downstream holder
// outstanding to the kernel (QBUF), per spec.md §4.4 drain-loop step 1.
// It returns whether at least one slot was queued.
func (p *Pool) QueueEligible() (bool, error) {
	queuedAny := false
	for _, s := range p.slots {
		if !s.eligibleForQueue() {
			continue
		}
		if _, err := v4l2.QueueBuffer(p.fd, s.Index); err != nil {
			return queuedAny, fmt.Errorf("device: queue buffer %d: %w", s.Index, err)
		}
		atomic.AddInt32(&s.refCount, 1)
		s.setState(SlotWithKernel)
		atomic.AddInt32(&p.queuedCount, 1)
		p.queued.Add(1)
		queuedAny = true
	}
	return queuedAny, nil
}

// AnyWithKernel reports whether at least one slot is currently held by
// the kernel (awaiting DQBUF).
func (p *Pool) AnyWithKernel() bool {
	for _, s := range p.slots {
		if s.State() == SlotWithKernel {
			return true
		}
	}
	return false
}

// Dequeue takes one filled buffer from the kernel (DQBUF), reverses the
// QBUF reference-count increment, and transitions the slot to
// FilledLocal. It returns the slot and the raw v4l2.Buffer metadata.
func (p *Pool) Dequeue() (*FrameSlot, v4l2.Buffer, error) {
	buf, err := v4l2.DequeueBuffer(p.fd)
	if err != nil {
		return nil, v4l2.Buffer{}, err
	}
	if buf.Index >= uint32(len(p.slots)) {
		return nil, buf, fmt.Errorf("%w: index %d, want [0,%d)", ErrBufferIndexOutOfRange, buf.Index, len(p.slots))
	}
	s := p.slots[buf.Index]
	atomic.AddInt32(&s.refCount, -1)
	s.setState(SlotFilledLocal)
	atomic.AddInt32(&p.queuedCount, -1)
	p.dequeued.Add(1)
	return s, buf, nil
}

// Drop releases a dequeued slot without delivering it downstream
// (spec.md's bytesused<=30 empty-frame quirk), making it immediately
// eligible for re-queueing.
func (p *Pool) Drop(s *FrameSlot) {
	s.setState(SlotFreeLocal)
	p.dropped.Add(1)
}

// Acquire marks s as handed to a downstream consumer: increments its
// reference count and returns a Handle whose Release reverses that
// increment and frees the slot for re-queueing.
func (p *Pool) Acquire(s *FrameSlot) *Handle {
	atomic.AddInt32(&s.refCount, 1)
	p.delivered.Add(1)
	return &Handle{pool: p, slot: s}
}

// RecordEmptyQuirk counts a bytesused<=30 drop for observability.
func (p *Pool) RecordEmptyQuirk() { p.emptyQuirk.Add(1) }

// Handle is a downstream-visible, shared-ownership reference to a
// FrameSlot's data. Exactly one Release must be called per Handle;
// calling it more than once is a no-op.
type Handle struct {
	pool     *Pool
	slot     *FrameSlot
	released int32 // atomic
}

// Data returns n bytes of the slot's backing memory.
func (h *Handle) Data(n uint32) []byte { return h.slot.Bytes(n) }

// Release drops this handle's reference. Once the last outstanding
// handle is released, the slot returns to FreeLocal and becomes
// eligible for re-queueing on the next drain cycle.
func (h *Handle) Release() {
	if !atomic.CompareAndSwapInt32(&h.released, 0, 1) {
		return
	}
	if atomic.AddInt32(&h.slot.refCount, -1) == 1 {
		h.slot.setState(SlotFreeLocal)
	}
}

// Close tears the pool down: STREAMOFF, then unmap every slot's
// memory. It does not dequeue or wait for slots still WithKernel;
// every slot is unmapped and marked Destroyed regardless of its state.
func (p *Pool) Close() error {
	var firstErr error
	if err := v4l2.StreamOff(p.fd); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("device: stream off: %w", err)
	}
	for _, s := range p.slots {
		if s == nil {
			continue
		}
		if err := v4l2.UnmapMemoryBuffer(s.mem); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("device: unmap buffer %d: %w", s.Index, err)
		}
		s.setState(SlotDestroyed)
	}
	return firstErr
}
