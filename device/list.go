package device

import (
	"fmt"

	sys "golang.org/x/sys/unix"

	"github.com/arlojames/camsrc/v4l2"
)

// maxProbedDevice is the highest /dev/videoN index probed by
// DiscoverCaptureDevices, per spec.md §6 ("probe /dev/video0...video9").
const maxProbedDevice = 9

// DiscoverCaptureDevices probes /dev/video0 through /dev/video9,
// opening each in turn and keeping only the ones whose capabilities
// satisfy spec.md §6: VIDEO_CAPTURE and STREAMING present, VIDEO_OUTPUT
// absent, preferring the per-device DeviceCapabilities split when the
// driver provides one. Devices that fail to open (commonly: the node
// doesn't exist) are skipped rather than treated as an error.
//
// This is the discovery primitive the out-of-scope enumeration
// CLI/registry (spec.md §1) would sit on top of; no such CLI lives in
// this repo.
func DiscoverCaptureDevices() ([]string, error) {
	var found []string
	for i := 0; i <= maxProbedDevice; i++ {
		path := fmt.Sprintf("/dev/video%d", i)
		fd, err := v4l2.OpenDevice(path, sys.O_RDWR|sys.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		cap, err := v4l2.GetCapability(fd)
		v4l2.CloseDevice(fd)
		if err != nil {
			continue
		}
		if cap.IsSuitableCaptureDevice() {
			found = append(found, path)
		}
	}
	return found, nil
}
