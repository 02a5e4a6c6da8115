package device

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/arlojames/camsrc/camconfig"
	"github.com/arlojames/camsrc/v4l2"
)

// NegotiatedFormat is the outcome of a successful Negotiate call: the
// format and size the device actually ended up programmed with, read
// back via a fresh GET_FMT, plus the derived picture_size.
type NegotiatedFormat struct {
	PixFmt      camconfig.PixelFormat
	FourCC      v4l2.FourCCType
	Size        camconfig.VideoSize
	PictureSize uint32
}

// isARM reports whether the running binary targets an ARM platform,
// the platform-architecture tag spec.md §4.2 uses to order the
// candidate list (MJPEG preferred over YUYV on ARM, since software YUV
// conversion is slow there).
func isARM() bool {
	return strings.HasPrefix(runtime.GOARCH, "arm")
}

// candidateList builds the ordered, deduplicated candidate list of
// spec.md §4.2: the requested format (if any), then YUV420P always,
// then the platform-ordered fallback trio, skipped entirely when
// rotation is requested since rotation requires planar YUV exclusively.
func candidateList(cfg camconfig.Config) []camconfig.PixelFormat {
	var list []camconfig.PixelFormat
	seen := make(map[camconfig.PixelFormat]bool, 5)
	add := func(pf camconfig.PixelFormat) {
		if pf == camconfig.PixelFormatUnknown || seen[pf] {
			return
		}
		seen[pf] = true
		list = append(list, pf)
	}

	add(cfg.PixFmt)
	add(camconfig.PixelFormatYUV420P)
	if !cfg.UseRotation {
		if isARM() {
			add(camconfig.PixelFormatMJPEG)
			add(camconfig.PixelFormatYUYV)
			add(camconfig.PixelFormatRGB24)
		} else {
			add(camconfig.PixelFormatYUYV)
			add(camconfig.PixelFormatMJPEG)
			add(camconfig.PixelFormatRGB24)
		}
	}
	return list
}

// enrich probes the kernel's enumerated formats and frame intervals to
// build a FormatDescription per candidate: whether the driver lists it
// at all, its best-known max fps, and whether it is native or
// emulated/compressed.
func enrich(fd uintptr, candidates []camconfig.PixelFormat) []FormatDescription {
	descs, _ := v4l2.GetAllFormatDescriptions(fd)
	byFourCC := make(map[v4l2.FourCCType]v4l2.FormatDescription, len(descs))
	for _, d := range descs {
		byFourCC[d.PixelFormat] = d
	}

	out := make([]FormatDescription, 0, len(candidates))
	for _, pf := range candidates {
		fourcc := pf.FourCC()
		kd, ok := byFourCC[fourcc]
		fd2 := FormatDescription{FourCC: fourcc, MaxFPS: -1, Supported: ok}
		if !ok {
			out = append(out, fd2)
			continue
		}
		fd2.Native = kd.Flags&v4l2.FmtDescFlagEmulated == 0
		fd2.Compressed = kd.Flags&v4l2.FmtDescFlagCompressed != 0
		fd2.MaxFPS = maxFPS(fd, fourcc)
		out = append(out, fd2)
	}
	return out
}

// maxFPS enumerates the frame intervals the driver offers for fourcc at
// any resolution it was asked about and returns the largest frame rate
// found, or -1 if the enumeration yields nothing (unknown).
func maxFPS(fd uintptr, fourcc v4l2.FourCCType) int {
	best := -1
	for index := uint32(0); ; index++ {
		fi, err := v4l2.GetFormatFrameInterval(fd, index, fourcc, 0, 0)
		if err != nil {
			break
		}
		for _, fract := range []v4l2.Fract{fi.Interval.Min, fi.Interval.Max} {
			if fract.Numerator == 0 {
				continue
			}
			fps := int(fract.Denominator / fract.Numerator)
			if fps > best {
				best = fps
			}
		}
	}
	return best
}

// attempt tries TRY_FMT then S_FMT for fourcc at size, per spec.md
// §4.2's acceptance rule: both ioctls must succeed and the FourCC they
// report back must equal the one requested.
func attempt(fd uintptr, fourcc v4l2.FourCCType, size camconfig.VideoSize) (v4l2.PixFormat, bool) {
	want := v4l2.PixFormat{Width: size.Width, Height: size.Height, PixelFormat: fourcc, Field: v4l2.FieldAny}

	tried, err := v4l2.TryPixFormat(fd, want)
	if err != nil || tried.PixelFormat != fourcc {
		return v4l2.PixFormat{}, false
	}
	if err := v4l2.SetPixFormat(fd, tried); err != nil {
		return v4l2.PixFormat{}, false
	}
	got, err := v4l2.GetPixFormat(fd)
	if err != nil || got.PixelFormat != fourcc {
		return v4l2.PixFormat{}, false
	}
	return got, true
}

// pictureSize computes the byte size of one frame at the given geometry
// and pixel format, per spec.md §4.2's post-programming step.
func pictureSize(pf camconfig.PixelFormat, w, h uint32) uint32 {
	switch pf {
	case camconfig.PixelFormatYUV420P:
		return w * h * 3 / 2
	case camconfig.PixelFormatRGB24:
		return w * h * 3
	case camconfig.PixelFormatYUYV:
		return w * h * 2
	default:
		return 0
	}
}

// negotiateAt runs one candidate-construction/enrichment/scoring round
// at a fixed size, returning the first accepted candidate.
func negotiateAt(fd uintptr, cfg camconfig.Config, size camconfig.VideoSize, strategy ScoringStrategy) (NegotiatedFormat, bool) {
	candidates := candidateList(cfg)
	descs := enrich(fd, candidates)
	byFourCC := make(map[v4l2.FourCCType]camconfig.PixelFormat, len(candidates))
	for _, pf := range candidates {
		byFourCC[pf.FourCC()] = pf
	}

	for _, pass := range strategy.Passes(descs, cfg.FPS) {
		for _, d := range pass {
			got, ok := attempt(fd, d.FourCC, size)
			if !ok {
				continue
			}
			pf := byFourCC[d.FourCC]
			return NegotiatedFormat{
				PixFmt:      pf,
				FourCC:      got.PixelFormat,
				Size:        camconfig.VideoSize{Width: got.Width, Height: got.Height},
				PictureSize: pictureSize(pf, got.Width, got.Height),
			}, true
		}
	}
	return NegotiatedFormat{}, false
}

// Negotiate runs the format negotiator of spec.md §4.2: candidate
// construction, enrichment, scoring via the given strategy, geometry
// degradation on failure, and a last-resort YUV420P attempt at the
// original size before failing fatally with ErrNoCompatibleFormat.
func Negotiate(fd uintptr, cfg camconfig.Config, strategy ScoringStrategy, log logging.Logger) (NegotiatedFormat, error) {
	size := cfg.Size
	for {
		if nf, ok := negotiateAt(fd, cfg, size, strategy); ok {
			log.Info("negotiated format", "fourcc", v4l2.PixelFormats[nf.FourCC], "width", nf.Size.Width, "height", nf.Size.Height)
			applyFocusHint(fd, cfg, log)
			applyFrameRate(fd, cfg.FPS, log)
			return nf, nil
		}
		log.Debug("format negotiation failed at size, degrading", "width", size.Width, "height", size.Height)
		size = size.NextLower()
		if size.IsZero() {
			break
		}
	}

	// Last resort: original size, YUV420P only.
	last := camconfig.Config{Size: cfg.Size, FPS: cfg.FPS, PixFmt: camconfig.PixelFormatYUV420P, UseRotation: true}
	if nf, ok := negotiateAt(fd, last, cfg.Size, strategy); ok {
		log.Warning("format negotiation fell back to last-resort YUV420P", "width", nf.Size.Width, "height", nf.Size.Height)
		applyFocusHint(fd, cfg, log)
		applyFrameRate(fd, cfg.FPS, log)
		return nf, nil
	}

	return NegotiatedFormat{}, fmt.Errorf("%w: device %v, candidates exhausted", ErrNoCompatibleFormat, cfg.DevicePath)
}

// applyFocusHint programs the auto-focus range and mode controls per
// spec.md §4.2's CAM_FOCUS handling. Failures are logged as warnings,
// never treated as fatal: a camera without focus controls, or one that
// rejects the value, still captures.
func applyFocusHint(fd uintptr, cfg camconfig.Config, log logging.Logger) {
	switch cfg.Focus {
	case camconfig.FocusAuto:
		if err := v4l2.SetControlValue(fd, v4l2.CtrlCameraAutoFocusRange, v4l2.CtrlValue(v4l2.AutoFocusRangeAuto)); err != nil {
			log.Warning("set auto focus range failed", "error", err)
		}
		if err := v4l2.SetControlValue(fd, v4l2.CtrlCameraFocusAuto, 1); err != nil {
			log.Warning("enable auto focus failed", "error", err)
		}
	case camconfig.FocusInfinity:
		if err := v4l2.SetControlValue(fd, v4l2.CtrlCameraAutoFocusRange, v4l2.CtrlValue(v4l2.AutoFocusRangeInfinity)); err != nil {
			log.Warning("set auto focus range failed", "error", err)
		}
		if err := v4l2.SetControlValue(fd, v4l2.CtrlCameraFocusAuto, 1); err != nil {
			log.Warning("enable auto focus failed", "error", err)
		}
	}
}

// applyFrameRate programs the capture frame interval via G_PARM/S_PARM,
// per original_source's post-format-negotiation step: G_PARM first to
// read back the driver's capability flags, then S_PARM with
// numerator/denominator = 1/fps only if the driver actually advertises
// V4L2_CAP_TIMEPERFRAME. Absence of that capability, or either ioctl
// failing, is logged and otherwise ignored; the device still captures
// at whatever rate it defaults to.
func applyFrameRate(fd uintptr, fps int, log logging.Logger) {
	if fps <= 0 {
		return
	}
	param, err := v4l2.GetStreamCaptureParam(fd)
	if err != nil {
		log.Warning("get stream capture param failed", "error", err)
		return
	}
	if param.Capability&v4l2.StreamParamTimePerFrame == 0 {
		log.Debug("driver has no TIMEPERFRAME capability, leaving frame rate at default")
		return
	}
	param.TimePerFrame = v4l2.Fract{Numerator: 1, Denominator: uint32(fps)}
	if err := v4l2.SetStreamCaptureParam(fd, param); err != nil {
		log.Warning("set stream capture param failed", "error", err)
	}
}
