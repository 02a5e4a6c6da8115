// Package device implements the capture-source pipeline: format
// negotiation against a V4L2 capture node, a reference-counted
// memory-mapped buffer pool, a background capture worker, and the
// frame-rate-gated presentation step that hands finished frames to an
// external sink or RTP packetiser.
//
// # Overview
//
// CaptureState is the package's entry point. Start opens the device,
// rejects it if it isn't a suitable capture device, negotiates a pixel
// format and resolution against the requested configuration, allocates
// the buffer pool, and launches a background goroutine that drains the
// kernel's filled buffers into a bounded in-memory queue.
//
// Presenter, driven externally on a timer (the media graph's tick, or
// camsrcd's own ticker), gates delivery to the configured frame rate
// and then either pops one H.264 access unit FIFO or keeps only the
// newest raw frame, discarding the rest.
//
// # Basic Usage
//
//	cfg := camconfig.New(
//	    camconfig.WithDevicePath("/dev/video0"),
//	    camconfig.WithSize(camconfig.VideoSize{Width: 1280, Height: 720}),
//	    camconfig.WithFPS(15),
//	)
//
//	state := device.NewCaptureState(cfg, log)
//	if err := state.Start(); err != nil {
//	    log.Fatal("start failed", "error", err)
//	}
//	defer state.Stop()
//
//	presenter := device.NewPresenter(state, packetiser, sink, rotator)
//	for range time.Tick(time.Second / time.Duration(cfg.FPS)) {
//	    presenter.Tick(time.Now(), tickTimeMs)
//	}
//
// # Device Discovery
//
// DiscoverCaptureDevices probes /dev/video0 through /dev/video9 and
// returns the paths whose reported capabilities mark them suitable
// capture devices (VIDEO_CAPTURE and STREAMING, not VIDEO_OUTPUT).
//
// # Buffer Ownership
//
// Every frame delivered out of the package arrives as a *Handle: a
// shared-ownership reference into one of the pool's memory-mapped
// kernel buffers. Exactly one Release must be called per Handle; the
// underlying buffer only becomes eligible for re-queueing to the
// kernel once its last outstanding Handle is released, leaving only
// the pool's own baseline reference (refcount 1).
//
// # Error Handling
//
// Start's failures are all setup-fatal and returned synchronously:
// device-open failure, an unsuitable device, a failed negotiation, or
// buffer allocation failure. Once running, per-frame errors (EAGAIN,
// a known empty-frame driver quirk, EIO) are absorbed inside the
// capture worker and never surface to the caller; only an
// unrecoverable drain failure stops the worker early, logged via the
// configured logging.Logger.
//
// # Thread Safety
//
// CaptureState's queue is internally synchronized; push runs on the
// capture worker goroutine while popOne/drainKeepLast run on whatever
// goroutine calls Presenter.Tick. Start and Stop are not safe to call
// concurrently with each other.
package device
