package loopback_test

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/arlojames/camsrc/benchmark/loopback"
	"github.com/arlojames/camsrc/camconfig"
	"github.com/arlojames/camsrc/device"
)

// Example demonstrates spinning up a v4l2loopback test device and running
// one Start/Stop cycle of a CaptureState against it.
func Example() {
	if !loopback.IsAvailable() {
		log.Println("loopback not available: install ffmpeg and v4l2loopback-dkms")
		return
	}

	dev, err := loopback.Setup(50, 640, 480, 30, "testsrc")
	if err != nil {
		log.Fatalf("failed to setup loopback: %v", err)
	}
	defer dev.Close()

	cfg := camconfig.New(
		camconfig.WithDevicePath(dev.DevicePath),
		camconfig.WithSize(camconfig.VideoSize{Width: 640, Height: 480}),
		camconfig.WithFPS(30),
	)
	l := logging.New(logging.Debug, os.Stdout, false)

	state := device.NewCaptureState(cfg, l)
	if err := state.Start(); err != nil {
		l.Fatal("capture start failed", "error", err)
	}
	defer state.Stop()

	fmt.Printf("capturing from %s at %v\n", dev.DevicePath, state.Format().Size)
	time.Sleep(2 * time.Second)
}
