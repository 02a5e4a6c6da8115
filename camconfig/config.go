// Package camconfig collects the environment-derived configuration for a
// capture session into a single explicit value. Nothing below `device`
// reads the environment directly; every knob named in the configuration
// surface is gathered once, here, via FromEnv or the functional Option
// constructors, and passed down.
package camconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/arlojames/camsrc/v4l2"
)

// PixelFormat is a tagged variant over the recognised media codes, with a
// bidirectional mapping to the 32-bit kernel FourCC codes for the
// supported subset.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatYUV420P
	PixelFormatYUYV
	PixelFormatRGB24
	PixelFormatMJPEG
	PixelFormatH264
)

// String returns a human-readable name for p, matching the constant name.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatYUV420P:
		return "YUV420P"
	case PixelFormatYUYV:
		return "YUYV"
	case PixelFormatRGB24:
		return "RGB24"
	case PixelFormatMJPEG:
		return "MJPEG"
	case PixelFormatH264:
		return "H264"
	default:
		return "Unknown"
	}
}

// FourCC returns the kernel FourCC code for p, or 0 if p has no kernel
// representation (PixelFormatUnknown).
func (p PixelFormat) FourCC() v4l2.FourCCType {
	switch p {
	case PixelFormatYUV420P:
		return v4l2.PixelFmtYUV420P
	case PixelFormatYUYV:
		return v4l2.PixelFmtYUYV
	case PixelFormatRGB24:
		return v4l2.PixelFmtRGB24
	case PixelFormatMJPEG:
		return v4l2.PixelFmtMJPEG
	case PixelFormatH264:
		return v4l2.PixelFmtH264
	default:
		return 0
	}
}

// PixelFormatFromFourCC maps a kernel FourCC back to a PixelFormat,
// returning PixelFormatUnknown for any code outside the recognised set.
func PixelFormatFromFourCC(fourcc v4l2.FourCCType) PixelFormat {
	switch fourcc {
	case v4l2.PixelFmtYUV420P:
		return PixelFormatYUV420P
	case v4l2.PixelFmtYUYV:
		return PixelFormatYUYV
	case v4l2.PixelFmtRGB24:
		return PixelFormatRGB24
	case v4l2.PixelFmtMJPEG:
		return PixelFormatMJPEG
	case v4l2.PixelFmtH264:
		return PixelFormatH264
	default:
		return PixelFormatUnknown
	}
}

// Focus names the recognised values of CAM_FOCUS.
type Focus int

const (
	FocusDefault Focus = iota
	FocusAuto
	FocusInfinity
)

// Config is the configuration surface of spec.md §6, collected once at
// startup (see FromEnv) and threaded down to device and uvcx. Neither
// package consults the environment itself.
type Config struct {
	DevicePath string
	Size       VideoSize
	FPS        int
	PixFmt     PixelFormat

	// Orientation is the device orientation in degrees: one of 0, 90,
	// 180, 270.
	Orientation int

	// Focus is derived from CAM_FOCUS.
	Focus Focus

	// UseRotation is derived from V4L2_USE_ROTATION=1. When set, the
	// negotiator keeps the requested format first, then YUV420P, and
	// drops the YUYV/MJPEG/RGB24 fallback candidates (rotation requires
	// planar YUV).
	UseRotation bool

	// NoEncodeMIME is derived from V4L2_NO_ENCODE=<mime>; when non-empty
	// it names a MIME type the device must not be advertised as capable
	// of producing (used to suppress H.264 pass-through).
	NoEncodeMIME string
}

// Option mutates a Config under construction, mirroring the teacher's
// device.Option functional-option style.
type Option func(*Config)

// WithDevicePath sets the capture node path.
func WithDevicePath(path string) Option {
	return func(c *Config) { c.DevicePath = path }
}

// WithSize sets the requested capture geometry.
func WithSize(size VideoSize) Option {
	return func(c *Config) { c.Size = size }
}

// WithFPS sets the requested frame rate.
func WithFPS(fps int) Option {
	return func(c *Config) { c.FPS = fps }
}

// WithPixelFormat sets the requested pixel format; PixelFormatUnknown
// leaves the choice entirely to the negotiator.
func WithPixelFormat(pf PixelFormat) Option {
	return func(c *Config) { c.PixFmt = pf }
}

// WithOrientation sets the device orientation in degrees.
func WithOrientation(deg int) Option {
	return func(c *Config) { c.Orientation = deg }
}

// WithFocus sets the focus hint.
func WithFocus(f Focus) Option {
	return func(c *Config) { c.Focus = f }
}

// WithRotation enables or disables the rotation path.
func WithRotation(enabled bool) Option {
	return func(c *Config) { c.UseRotation = enabled }
}

// WithNoEncodeMIME suppresses advertisement of the given MIME type.
func WithNoEncodeMIME(mime string) Option {
	return func(c *Config) { c.NoEncodeMIME = mime }
}

// defaultConfig mirrors the original source's defaults: /dev/video0,
// 720p, 15 fps, format auto-negotiated.
func defaultConfig() Config {
	return Config{
		DevicePath: "/dev/video0",
		Size:       VideoSize{Width: 1280, Height: 720},
		FPS:        15,
		PixFmt:     PixelFormatUnknown,
	}
}

// New builds a Config from defaults plus the given options, without
// touching the environment. Use FromEnv to seed from the process
// environment first.
func New(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FromEnv collects the recognised environment variables (spec.md §6:
// CAM_FOCUS, V4L2_USE_ROTATION, V4L2_NO_ENCODE) into a Config, applying
// any additional options on top. This is the only place in the module
// that is expected to call os.Getenv for capture configuration.
func FromEnv(opts ...Option) Config {
	cfg := defaultConfig()

	switch strings.ToLower(os.Getenv("CAM_FOCUS")) {
	case "auto":
		cfg.Focus = FocusAuto
	case "infinity":
		cfg.Focus = FocusInfinity
	}

	if v, err := strconv.Atoi(os.Getenv("V4L2_USE_ROTATION")); err == nil && v == 1 {
		cfg.UseRotation = true
	}

	cfg.NoEncodeMIME = os.Getenv("V4L2_NO_ENCODE")

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
