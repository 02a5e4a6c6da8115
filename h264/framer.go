// Package h264 splits a captured Annex-B byte-stream buffer into its
// constituent NAL units, ready for RTP packetisation.
//
// The scanning technique — a single forward pass tracking a trailing
// zero count, emitting on a start code — is grounded in
// ausocean/av/codec/h264/lex.go's Lex, simplified from its streaming
// io.Reader/pacing-ticker form down to a single buffer-in/NAL-list-out
// form: there is no pacing here, the caller already has one captured
// buffer in hand.
package h264

// Frame splits src, a buffer that may contain one or more NAL units
// separated by Annex-B start codes (a run of two or more zero bytes
// followed by 0x01), into an ordered list of NAL units with their start
// codes stripped.
//
// A buffer with no start code yields an empty list. A buffer whose
// first start code is at position 0 has no preceding NAL to emit.
func Frame(src []byte) [][]byte {
	var nalus [][]byte

	start := -1 // index of the first byte after the most recent start code; -1 until found
	zeros := 0  // count of consecutive 0x00 bytes seen so far

	for i, b := range src {
		switch b {
		case 0x00:
			zeros++
		case 0x01:
			if zeros >= 2 {
				if start >= 0 {
					nalus = append(nalus, src[start:i-zeros])
				}
				start = i + 1
			}
			zeros = 0
		default:
			zeros = 0
		}
	}

	if start >= 0 && start <= len(src) {
		// Trim a trailing start code's zero run from the final NAL, if any.
		end := len(src)
		for end > start && src[end-1] == 0x00 {
			end--
		}
		nalus = append(nalus, src[start:end])
	}

	return nalus
}
