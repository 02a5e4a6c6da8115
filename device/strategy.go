package device

import "runtime"

// FormatDescription enriches a candidate FourCC with what the
// negotiator learned by probing the kernel: the maximum frame rate it
// offers, whether it's native (not emulated by a userspace converter),
// and whether it's a compressed format.
type FormatDescription struct {
	FourCC     uint32
	MaxFPS     int // -1 if unknown
	Native     bool
	Compressed bool
	Supported  bool
}

// ScoringStrategy selects, in order of preference, which enriched
// candidates the negotiator should attempt to TRY_FMT/S_FMT, given a
// target frame rate. This is spec.md §9 REDESIGN flag 1: the strategy
// is an injected value chosen once via DetectStrategy (a runtime
// architecture check), never a compile-time macro.
type ScoringStrategy interface {
	// Passes returns, in order, the candidate subsets to attempt. The
	// negotiator tries each pass's candidates (in their original order)
	// until one is accepted; the first pass to yield an acceptance wins.
	Passes(candidates []FormatDescription, targetFPS int) [][]FormatDescription
}

// X86Strategy implements the three-pass x86 scoring strategy of
// spec.md §4.2: prefer native formats meeting the target fps, then
// prefer compressed formats, then accept anything supported.
type X86Strategy struct{}

func (X86Strategy) Passes(candidates []FormatDescription, targetFPS int) [][]FormatDescription {
	var native, compressed, any []FormatDescription
	for _, c := range candidates {
		if !c.Supported {
			continue
		}
		if c.Native && c.MaxFPS >= targetFPS {
			native = append(native, c)
		}
		if c.Compressed {
			compressed = append(compressed, c)
		}
		any = append(any, c)
	}
	return [][]FormatDescription{native, compressed, any}
}

// GenericStrategy implements the single-pass non-x86 scoring strategy:
// the first supported candidate whose max fps meets the target, or
// whose max fps is unknown, wins.
type GenericStrategy struct{}

func (GenericStrategy) Passes(candidates []FormatDescription, targetFPS int) [][]FormatDescription {
	var pass []FormatDescription
	for _, c := range candidates {
		if !c.Supported {
			continue
		}
		if c.MaxFPS < 0 || c.MaxFPS >= targetFPS {
			pass = append(pass, c)
		}
	}
	return [][]FormatDescription{pass}
}

// DetectStrategy selects a ScoringStrategy from the running binary's
// architecture, replacing the original source's #ifdef __arm__
// compile-time branch with a runtime value (spec.md §9 REDESIGN flag
// 2).
func DetectStrategy() ScoringStrategy {
	switch runtime.GOARCH {
	case "386", "amd64":
		return X86Strategy{}
	default:
		return GenericStrategy{}
	}
}
