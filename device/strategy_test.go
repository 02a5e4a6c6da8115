package device

import "testing"

func descs() []FormatDescription {
	return []FormatDescription{
		{FourCC: 1, MaxFPS: 30, Native: true, Compressed: true, Supported: true},  // H264-like
		{FourCC: 2, MaxFPS: 15, Native: true, Compressed: false, Supported: true}, // YUV420P-like
		{FourCC: 3, MaxFPS: -1, Native: false, Compressed: false, Supported: false},
	}
}

// TestX86StrategyPreferNative is spec scenario S1: a native candidate
// meeting the target fps wins pass 1.
func TestX86StrategyPreferNative(t *testing.T) {
	passes := X86Strategy{}.Passes(descs(), 30)
	if len(passes) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(passes))
	}
	native := passes[0]
	if len(native) != 1 || native[0].FourCC != 1 {
		t.Fatalf("pass 1 (native) = %+v, want only FourCC 1", native)
	}
}

// TestX86StrategyNativeRequiresFPS verifies pass 1 excludes a native
// candidate whose max fps falls short of the target, per spec.md §4.2
// ("require max_fps >= target_fps AND native=true" -- no exception for
// unknown fps in this pass, unlike the generic strategy).
func TestX86StrategyNativeRequiresFPS(t *testing.T) {
	passes := X86Strategy{}.Passes(descs(), 60)
	if len(passes[0]) != 0 {
		t.Fatalf("pass 1 = %+v, want empty (no candidate meets fps 60)", passes[0])
	}
}

// TestX86StrategyCompressedPass verifies pass 2 contains every
// compressed, supported candidate regardless of fps/native.
func TestX86StrategyCompressedPass(t *testing.T) {
	passes := X86Strategy{}.Passes(descs(), 60)
	compressed := passes[1]
	if len(compressed) != 1 || compressed[0].FourCC != 1 {
		t.Fatalf("pass 2 (compressed) = %+v, want only FourCC 1", compressed)
	}
}

// TestX86StrategyAnyPassExcludesUnsupported verifies pass 3 contains
// every supported candidate, in original order, excluding unsupported
// ones.
func TestX86StrategyAnyPassExcludesUnsupported(t *testing.T) {
	passes := X86Strategy{}.Passes(descs(), 60)
	any := passes[2]
	if len(any) != 2 || any[0].FourCC != 1 || any[1].FourCC != 2 {
		t.Fatalf("pass 3 (any) = %+v, want [1, 2]", any)
	}
}

// TestGenericStrategyUnknownFPSAccepted verifies the single-pass generic
// strategy accepts a supported candidate with unknown (-1) max fps.
func TestGenericStrategyUnknownFPSAccepted(t *testing.T) {
	candidates := []FormatDescription{
		{FourCC: 9, MaxFPS: -1, Supported: true},
	}
	passes := GenericStrategy{}.Passes(candidates, 30)
	if len(passes) != 1 || len(passes[0]) != 1 {
		t.Fatalf("got %+v, want one pass with one candidate", passes)
	}
}

// TestGenericStrategyBelowTargetRejected verifies a known max fps below
// target is excluded.
func TestGenericStrategyBelowTargetRejected(t *testing.T) {
	candidates := []FormatDescription{
		{FourCC: 9, MaxFPS: 10, Supported: true},
	}
	passes := GenericStrategy{}.Passes(candidates, 30)
	if len(passes[0]) != 0 {
		t.Fatalf("got %+v, want empty pass", passes[0])
	}
}

// TestStrategyScoringIsPure is spec property P6: identical input yields
// identical output across repeated calls.
func TestStrategyScoringIsPure(t *testing.T) {
	candidates := descs()
	first := X86Strategy{}.Passes(candidates, 30)
	second := X86Strategy{}.Passes(candidates, 30)
	if len(first) != len(second) {
		t.Fatalf("pass count differs across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("pass %d length differs: %d vs %d", i, len(first[i]), len(second[i]))
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("pass %d entry %d differs: %+v vs %+v", i, j, first[i][j], second[i][j])
			}
		}
	}
}

func TestDetectStrategyReturnsNonNil(t *testing.T) {
	if DetectStrategy() == nil {
		t.Fatal("DetectStrategy returned nil")
	}
}
