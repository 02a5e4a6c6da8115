// Command camsrcd is a minimal standalone driver for the capture
// pipeline: it opens one device, negotiates a format, and ticks the
// presentation step on a timer in place of the media-graph ticker
// that spec.md treats as an external collaborator.
//
// It wires a file-writing VideoSink for raw video and a logging-only
// stub RTPPacketiser for H.264 -- neither is the real downstream
// consumer spec.md describes (the RTP packetiser and rotation helper
// are both out of this repo's scope), but they exercise the capture
// pipeline end to end without inventing protocol code this repo
// doesn't own.
package main

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arlojames/camsrc/camconfig"
	"github.com/arlojames/camsrc/device"
)

// Logging related constants, in the teacher pack's daemon style
// (ausocean-av's cmd/looper).
const (
	logMaxSizeMB = 50
	logMaxBackup = 5
	logMaxAgeDays = 28
)

// fileSink writes delivered raw frames to a single rolling output
// file, truncated and reopened on every frame (one frame per tick is
// the steady state for raw video under spec.md's newest-wins policy).
type fileSink struct {
	path string
}

func (s fileSink) PushFrame(data []byte, timestamp90kHz uint32, marker bool) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// logPacketiser stands in for the RTP packetiser external collaborator
// (spec.md §1): it logs what it would have sent rather than emitting
// RTP packets itself.
type logPacketiser struct {
	log logging.Logger
}

func (p logPacketiser) PackNALUs(nalus [][]byte, timestamp90kHz uint32, marker bool) error {
	p.log.Debug("would pack NAL units for RTP", "count", len(nalus), "timestamp", timestamp90kHz, "marker", marker)
	return nil
}

func main() {
	devPath := flag.String("d", "/dev/video0", "capture device path")
	width := flag.Uint("w", 1280, "requested capture width")
	height := flag.Uint("h", 720, "requested capture height")
	fps := flag.Int("r", 15, "requested frames per second")
	orientation := flag.Int("orientation", 0, "device orientation in degrees (0/90/180/270)")
	outPath := flag.String("o", "/tmp/camsrcd-frame.raw", "raw frame output path")
	logPath := flag.String("log", "/var/log/camsrcd/camsrcd.log", "log file path")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAgeDays,
	}
	l := logging.New(logging.Info, io.MultiWriter(fileLog, os.Stderr), false)

	cfg := camconfig.FromEnv(
		camconfig.WithDevicePath(*devPath),
		camconfig.WithSize(camconfig.VideoSize{Width: uint32(*width), Height: uint32(*height)}),
		camconfig.WithFPS(*fps),
		camconfig.WithOrientation(*orientation),
	)

	state := device.NewCaptureState(cfg, l)
	if err := state.Start(); err != nil {
		l.Fatal("capture start failed", "error", err)
	}
	l.Info("capture started", "device", cfg.DevicePath, "format", state.Format().PixFmt.String(),
		"width", state.Format().Size.Width, "height", state.Format().Size.Height)

	presenter := device.NewPresenter(state, logPacketiser{log: l}, fileSink{path: *outPath}, nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(max(cfg.FPS, 1)))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-sigCh:
			l.Info("shutting down", "averageFPS", presenter.AverageFPS())
			if err := state.Stop(); err != nil {
				l.Error("capture stop failed", "error", err)
			}
			return
		case now := <-ticker.C:
			tickMs := uint32(now.Sub(start).Milliseconds())
			if err := presenter.Tick(now, tickMs); err != nil {
				l.Warning("presentation tick failed", "error", err)
			}
		}
	}
}

