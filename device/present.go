package device

import (
	"fmt"
	"time"

	"github.com/arlojames/camsrc/camconfig"
	"github.com/arlojames/camsrc/h264"
)

// rtpClockHz is the RTP video clock rate used to stamp delivered
// frames (spec.md §4.6: timestamp = tick_time_ms * 90).
const rtpClockHz = 90

// fpsAverageAlpha weights each new inter-frame interval in the rolling
// FPS average's exponential moving average; spec.md names only the
// requirement ("a rolling FPS average is updated on every delivered
// frame"), not a specific algorithm, so this is an implementation
// decision.
const fpsAverageAlpha = 0.2

// FPSGate is the frame-rate controller of spec.md §4.6: it tracks
// elapsed wall-clock time against a target rate and admits a new
// delivery only when (now-start)*fps >= produced_frames.
type FPSGate struct {
	fps      int
	start    time.Time
	produced int64
}

// NewFPSGate returns a gate targeting fps deliveries per second.
func NewFPSGate(fps int) *FPSGate {
	return &FPSGate{fps: fps}
}

// Admit reports whether a delivery is due at now; if so it records the
// delivery so subsequent calls account for it.
func (g *FPSGate) Admit(now time.Time) bool {
	if g.start.IsZero() {
		g.start = now
	}
	elapsed := now.Sub(g.start).Seconds()
	if elapsed*float64(g.fps) < float64(g.produced) {
		return false
	}
	g.produced++
	return true
}

// FPSAverage is a rolling average of delivered-frame rate, updated on
// every delivery via an exponential moving average of the inter-frame
// interval.
type FPSAverage struct {
	last    time.Time
	average float64
}

// Update records a delivery at now and returns the current average fps.
func (a *FPSAverage) Update(now time.Time) float64 {
	if a.last.IsZero() {
		a.last = now
		return a.average
	}
	interval := now.Sub(a.last).Seconds()
	a.last = now
	if interval <= 0 {
		return a.average
	}
	instant := 1 / interval
	if a.average == 0 {
		a.average = instant
	} else {
		a.average = fpsAverageAlpha*instant + (1-fpsAverageAlpha)*a.average
	}
	return a.average
}

// Presenter is the presentation step of spec.md §4.6: invoked by the
// graph ticker, it gates delivery by frame rate, then either pops one
// H.264 access unit (FIFO) or drains the queue keeping only the newest
// raw frame, stamps it, and hands it to the appropriate external
// collaborator.
type Presenter struct {
	state *CaptureState

	gate    *FPSGate
	average FPSAverage

	framer     func([]byte) [][]byte
	packetiser RTPPacketiser
	rotator    Rotator
	sink       VideoSink
}

// NewPresenter builds a Presenter for state, targeting the configured
// fps, delivering H.264 access units to packetiser and raw frames to
// sink. rotator may be nil when rotation is not in use.
func NewPresenter(state *CaptureState, packetiser RTPPacketiser, sink VideoSink, rotator Rotator) *Presenter {
	return &Presenter{
		state:      state,
		gate:       NewFPSGate(state.cfg.FPS),
		framer:     h264.Frame,
		packetiser: packetiser,
		rotator:    rotator,
		sink:       sink,
	}
}

// AverageFPS returns the current rolling delivery-rate estimate.
func (p *Presenter) AverageFPS() float64 { return p.average.average }

// Tick runs one presentation step at wall-clock time now, identified to
// downstream consumers by tickTimeMs. It returns immediately without
// error if the frame-rate gate declines this tick or the queue is
// empty; both are the expected steady state, not failures.
func (p *Presenter) Tick(now time.Time, tickTimeMs uint32) error {
	if !p.gate.Admit(now) {
		return nil
	}

	timestamp := tickTimeMs * rtpClockHz

	if p.state.fmt.PixFmt == camconfig.PixelFormatH264 {
		frame, ok := p.state.popOne()
		if !ok {
			return nil
		}
		defer frame.Handle.Release()

		nalus := p.framer(frame.Handle.Data(frame.Length))
		if err := p.packetiser.PackNALUs(nalus, timestamp, frame.Marker); err != nil {
			return fmt.Errorf("device: pack NAL units: %w", err)
		}
		p.average.Update(now)
		return nil
	}

	frame, ok := p.state.drainKeepLast()
	if !ok {
		return nil
	}
	defer frame.Handle.Release()

	data := frame.Handle.Data(frame.Length)
	if p.rotator != nil && p.state.cfg.Orientation != 0 {
		rotated, err := p.rotator.Rotate(data, p.state.cfg.Orientation, p.state.fmt.Size.Width, p.state.fmt.Size.Height)
		if err == nil {
			data = rotated
		}
		// On rotation failure the original frame is forwarded unchanged
		// (spec.md §4.6).
	}

	if err := p.sink.PushFrame(data, timestamp, true); err != nil {
		return fmt.Errorf("device: push frame: %w", err)
	}
	p.average.Update(now)
	return nil
}
