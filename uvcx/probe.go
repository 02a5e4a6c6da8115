package uvcx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ausocean/utils/logging"
)

// ProbeCommit is the UVC H.264 extension unit's probe/commit control
// record (field-for-field from original_source's
// uvcx_video_config_probe_commit_t), wire-packed little-endian with no
// padding between fields — see Marshal/Unmarshal. Note: spec.md's prose
// rounds this to "42 bytes"; the field enumeration it gives (reproduced
// here) actually sums to 46 bytes, and that enumeration is what this
// type follows.
type ProbeCommit struct {
	FrameInterval  uint32 // 100 ns units
	BitRate        uint32
	Hints          uint16
	ConfigIndex    uint16
	Width          uint16
	Height         uint16
	SliceUnits     uint16
	SliceMode      uint16
	Profile        uint16
	IFramePeriod   uint16 // ms
	VideoDelay     uint16 // ms
	MaxConfigDelay uint16 // ms

	UsageType          uint8
	RateControlMode    uint8
	TemporalScaleMode  uint8
	SpatialScaleMode   uint8
	SNRScaleMode       uint8
	StreamMuxOption    uint8
	StreamFormat       uint8
	EntropyCABAC       uint8
	Timestamp          uint8
	NumOfReorderFrames uint8
	PreviewFlipped     uint8
	View               uint8
	Reserved1          uint8
	Reserved2          uint8
	StreamID           uint8
	SpatialLayerRatio  uint8 // fixed-point: high nibble integer, low nibble /16

	LeakyBucketSize uint16 // ms
}

// Size is the wire size of ProbeCommit in bytes.
const Size = 46

// SpatialLayerRatioFloat decodes SpatialLayerRatio's fixed-point
// encoding into a float64.
func (p ProbeCommit) SpatialLayerRatioFloat() float64 {
	return float64(p.SpatialLayerRatio>>4) + float64(p.SpatialLayerRatio&0x0f)/16
}

// Marshal encodes p into its 46-byte wire form.
func (p ProbeCommit) Marshal() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(Size)
	// binary.Write on a plain struct of fixed-width fields serializes
	// field-by-field in declaration order with no padding, i.e. exactly
	// the packed layout the kernel driver expects.
	_ = binary.Write(buf, binary.LittleEndian, p)
	return buf.Bytes()
}

// Unmarshal decodes a 46-byte wire record into p.
func (p *ProbeCommit) Unmarshal(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("uvcx: probe/commit record too short: %d bytes, want %d", len(data), Size)
	}
	return binary.Read(bytes.NewReader(data[:Size]), binary.LittleEndian, p)
}

// Config carries the values Negotiate needs beyond what it reads back
// from the device itself.
type Config struct {
	// UnitID overrides DefaultUnitID when nonzero.
	UnitID uint8
	// IFramePeriodMS is the desired I-frame period in milliseconds,
	// defaulting to 1000 when zero.
	IFramePeriodMS uint16
}

// Negotiate runs the probe -> set -> re-probe -> commit sequence against
// the UVC H.264 extension unit at fd: it reads the camera's current
// probe record, overwrites the I-frame period, sets it back, re-reads
// to absorb any driver rounding, logs the result, then commits it.
//
// Any step's failure is logged and returned; it is never fatal to the
// caller, which should fall back to whatever raw format the format
// negotiator can otherwise obtain.
func Negotiate(fd uintptr, cfg Config, log logging.Logger) (ProbeCommit, error) {
	unitID := cfg.UnitID
	if unitID == 0 {
		unitID = DefaultUnitID
	}
	period := cfg.IFramePeriodMS
	if period == 0 {
		period = 1000
	}

	var probe ProbeCommit
	if err := xuGetCur(fd, unitID, &probe); err != nil {
		log.Error("uvcx: probe GET_CUR failed", "error", err)
		return ProbeCommit{}, err
	}
	logProbeCommit(log, "probe (initial)", probe)

	probe.IFramePeriod = period
	if err := xuSetCur(fd, unitID, probe); err != nil {
		log.Error("uvcx: probe SET_CUR failed", "error", err)
		return ProbeCommit{}, err
	}

	if err := xuGetCur(fd, unitID, &probe); err != nil {
		log.Error("uvcx: probe re-GET_CUR failed", "error", err)
		return ProbeCommit{}, err
	}
	logProbeCommit(log, "probe (after set)", probe)

	if err := xuCommit(fd, unitID, probe); err != nil {
		log.Error("uvcx: commit failed", "error", err)
		return ProbeCommit{}, err
	}

	return probe, nil
}

func xuGetCur(fd uintptr, unitID uint8, probe *ProbeCommit) error {
	data := make([]byte, Size)
	if err := Query(fd, unitID, SelectorVideoConfigProbe, QueryGetCur, data); err != nil {
		return err
	}
	return probe.Unmarshal(data)
}

func xuSetCur(fd uintptr, unitID uint8, probe ProbeCommit) error {
	return Query(fd, unitID, SelectorVideoConfigProbe, QuerySetCur, probe.Marshal())
}

func xuCommit(fd uintptr, unitID uint8, probe ProbeCommit) error {
	return Query(fd, unitID, SelectorVideoConfigCommit, QuerySetCur, probe.Marshal())
}

func logProbeCommit(log logging.Logger, label string, p ProbeCommit) {
	log.Debug("uvcx: "+label,
		"frameIntervalNs100", p.FrameInterval,
		"bitRate", p.BitRate,
		"width", p.Width,
		"height", p.Height,
		"profile", p.Profile,
		"iFramePeriodMS", p.IFramePeriod,
		"spatialLayerRatio", p.SpatialLayerRatioFloat(),
		"leakyBucketSizeMS", p.LeakyBucketSize,
	)
}
