package v4l2

import (
	"testing"
)

// TestOpenDevice_MissingPath verifies the character-device validation
// path rejects a path that does not exist before ever reaching openDev.
func TestOpenDevice_MissingPath(t *testing.T) {
	_, err := OpenDevice("/dev/video-does-not-exist-999", 0, 0)
	if err == nil {
		t.Fatal("expected error opening a non-existent device path")
	}
}

// TestOpenDevice_RegularFileRejected verifies a regular file (not a
// character device) is rejected rather than handed to the kernel.
func TestOpenDevice_RegularFileRejected(t *testing.T) {
	_, err := OpenDevice("/etc/hostname", 0, 0)
	if err == nil {
		t.Fatal("expected error opening a regular file as a V4L2 device")
	}
}

// TestCloseDevice_BadFd verifies CloseDevice surfaces the kernel's EBADF
// rather than panicking on an invalid descriptor.
func TestCloseDevice_BadFd(t *testing.T) {
	if err := CloseDevice(^uintptr(0)); err == nil {
		t.Fatal("expected error closing an invalid file descriptor")
	}
}
