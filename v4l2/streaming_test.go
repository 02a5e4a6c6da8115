package v4l2

import (
	"testing"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// TestBufTypeConstants tests buffer type constants
func TestBufTypeConstants(t *testing.T) {
	tests := []struct {
		name    string
		bufType BufType
	}{
		{"BufTypeVideoCapture", BufTypeVideoCapture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Just verify they're defined (they can be zero for some types)
			_ = tt.bufType
		})
	}
}

// TestStreamTypeConstants tests stream memory type constants
func TestStreamTypeConstants(t *testing.T) {
	tests := []struct {
		name   string
		ioType StreamType
	}{
		{"StreamTypeMMAP", StreamTypeMMAP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ioType > 10 {
				t.Errorf("%s has unexpected value: %d", tt.name, tt.ioType)
			}
		})
	}
}

// TestBufFlagConstants tests buffer flag constants
func TestBufFlagConstants(t *testing.T) {
	flags := []struct {
		name string
		flag BufFlag
	}{
		{"BufFlagMapped", BufFlagMapped},
		{"BufFlagQueued", BufFlagQueued},
		{"BufFlagDone", BufFlagDone},
		{"BufFlagKeyFrame", BufFlagKeyFrame},
		{"BufFlagPFrame", BufFlagPFrame},
		{"BufFlagBFrame", BufFlagBFrame},
		{"BufFlagError", BufFlagError},
		{"BufFlagInRequest", BufFlagInRequest},
		{"BufFlagTimeCode", BufFlagTimeCode},
		{"BufFlagM2MHoldCaptureBuf", BufFlagM2MHoldCaptureBuf},
		{"BufFlagPrepared", BufFlagPrepared},
		{"BufFlagNoCacheInvalidate", BufFlagNoCacheInvalidate},
		{"BufFlagNoCacheClean", BufFlagNoCacheClean},
		{"BufFlagTimestampMask", BufFlagTimestampMask},
		{"BufFlagTimestampUnknown", BufFlagTimestampUnknown},
		{"BufFlagTimestampMonotonic", BufFlagTimestampMonotonic},
		{"BufFlagTimestampCopy", BufFlagTimestampCopy},
		{"BufFlagTimestampSourceMask", BufFlagTimestampSourceMask},
		{"BufFlagTimestampSourceEOF", BufFlagTimestampSourceEOF},
		{"BufFlagTimestampSourceSOE", BufFlagTimestampSourceSOE},
		{"BufFlagLast", BufFlagLast},
		{"BufFlagRequestFD", BufFlagRequestFD},
	}

	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			// Flags can be zero for some mask values, just verify they're defined
			_ = tt.flag
		})
	}
}

// TestBufFlag_Combinations tests buffer flag combinations
func TestBufFlag_Combinations(t *testing.T) {
	tests := []struct {
		name       string
		flags      BufFlag
		checkFlag  BufFlag
		shouldHave bool
	}{
		{
			name:       "Mapped flag set",
			flags:      BufFlagMapped | BufFlagQueued,
			checkFlag:  BufFlagMapped,
			shouldHave: true,
		},
		{
			name:       "Mapped flag not set",
			flags:      BufFlagQueued | BufFlagDone,
			checkFlag:  BufFlagMapped,
			shouldHave: false,
		},
		{
			name:       "Multiple flags set",
			flags:      BufFlagMapped | BufFlagQueued | BufFlagDone,
			checkFlag:  BufFlagQueued,
			shouldHave: true,
		},
		{
			name:       "Error flag set",
			flags:      BufFlagError,
			checkFlag:  BufFlagError,
			shouldHave: true,
		},
		{
			name:       "Keyframe flag set",
			flags:      BufFlagDone | BufFlagKeyFrame,
			checkFlag:  BufFlagKeyFrame,
			shouldHave: true,
		},
		{
			name:       "PFrame flag set",
			flags:      BufFlagDone | BufFlagPFrame,
			checkFlag:  BufFlagPFrame,
			shouldHave: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasFlag := (tt.flags & tt.checkFlag) != 0
			if hasFlag != tt.shouldHave {
				t.Errorf("Flag check failed: flags=0x%08x, checking=0x%08x, expected=%v, got=%v",
					tt.flags, tt.checkFlag, tt.shouldHave, hasFlag)
			}
		})
	}
}

// TestRequestBuffers_StructSize tests RequestBuffers struct size
func TestRequestBuffers_StructSize(t *testing.T) {
	rb := RequestBuffers{
		Count:      4,
		StreamType: BufTypeVideoCapture,
		Memory:     StreamTypeMMAP,
	}

	// Verify fields are accessible
	if rb.Count != 4 {
		t.Errorf("Count = %d, want 4", rb.Count)
	}
	if rb.StreamType != BufTypeVideoCapture {
		t.Errorf("StreamType = %d, want %d", rb.StreamType, BufTypeVideoCapture)
	}
	if rb.Memory != StreamTypeMMAP {
		t.Errorf("Memory = %d, want %d", rb.Memory, StreamTypeMMAP)
	}

	// Verify struct has reasonable size
	size := unsafe.Sizeof(rb)
	if size == 0 {
		t.Error("RequestBuffers struct size should not be zero")
	}
	if size > 100 {
		t.Errorf("RequestBuffers struct size %d seems too large", size)
	}
}

// TestBuffer_StructFields tests Buffer struct field accessibility
func TestBuffer_StructFields(t *testing.T) {
	buf := Buffer{
		Index:      0,
		StreamType: BufTypeVideoCapture,
		BytesUsed:  614400,
		Flags:      BufFlagMapped | BufFlagDone,
		Field:      FieldNone,
		Timestamp:  sys.Timeval{Sec: 1234567890, Usec: 500000},
		Sequence:   42,
		Memory:     StreamTypeMMAP,
		Length:     614400,
	}

	// Verify all fields are accessible
	if buf.Index != 0 {
		t.Errorf("Index = %d, want 0", buf.Index)
	}
	if buf.StreamType != BufTypeVideoCapture {
		t.Errorf("StreamType = %d, want %d", buf.StreamType, BufTypeVideoCapture)
	}
	if buf.BytesUsed != 614400 {
		t.Errorf("BytesUsed = %d, want 614400", buf.BytesUsed)
	}
	if buf.Flags&BufFlagMapped == 0 {
		t.Error("BufFlagMapped should be set")
	}
	if buf.Flags&BufFlagDone == 0 {
		t.Error("BufFlagDone should be set")
	}
	if buf.Field != FieldNone {
		t.Errorf("Field = %d, want %d", buf.Field, FieldNone)
	}
	if buf.Sequence != 42 {
		t.Errorf("Sequence = %d, want 42", buf.Sequence)
	}
	if buf.Memory != StreamTypeMMAP {
		t.Errorf("Memory = %d, want %d", buf.Memory, StreamTypeMMAP)
	}
	if buf.Length != 614400 {
		t.Errorf("Length = %d, want 614400", buf.Length)
	}
}

// TestBuffer_FlagChecks tests buffer flag checking patterns
func TestBuffer_FlagChecks(t *testing.T) {
	tests := []struct {
		name      string
		buffer    Buffer
		checkFunc func(Buffer) bool
		expected  bool
	}{
		{
			name: "Buffer is mapped",
			buffer: Buffer{
				Flags: BufFlagMapped,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagMapped != 0 },
			expected:  true,
		},
		{
			name: "Buffer is queued",
			buffer: Buffer{
				Flags: BufFlagQueued,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagQueued != 0 },
			expected:  true,
		},
		{
			name: "Buffer is done",
			buffer: Buffer{
				Flags: BufFlagDone,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagDone != 0 },
			expected:  true,
		},
		{
			name: "Buffer has error",
			buffer: Buffer{
				Flags: BufFlagError,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagError != 0 },
			expected:  true,
		},
		{
			name: "Buffer is keyframe",
			buffer: Buffer{
				Flags: BufFlagKeyFrame,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagKeyFrame != 0 },
			expected:  true,
		},
		{
			name: "Buffer is not mapped",
			buffer: Buffer{
				Flags: BufFlagQueued,
			},
			checkFunc: func(b Buffer) bool { return b.Flags&BufFlagMapped != 0 },
			expected:  false,
		},
		{
			name: "Buffer has data (mapped, no error, has bytes)",
			buffer: Buffer{
				Flags:     BufFlagMapped,
				BytesUsed: 1000,
			},
			checkFunc: func(b Buffer) bool {
				return b.Flags&BufFlagMapped != 0 && b.Flags&BufFlagError == 0 && b.BytesUsed > 0
			},
			expected: true,
		},
		{
			name: "Buffer is empty (mapped, no error, zero bytes)",
			buffer: Buffer{
				Flags:     BufFlagMapped,
				BytesUsed: 0,
			},
			checkFunc: func(b Buffer) bool {
				return b.Flags&BufFlagMapped != 0 && b.Flags&BufFlagError == 0 && b.BytesUsed == 0
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFunc(tt.buffer)
			if result != tt.expected {
				t.Errorf("Flag check = %v, want %v (flags=0x%08x)", result, tt.expected, tt.buffer.Flags)
			}
		})
	}
}

// TestBuffer_Timestamp tests timestamp field
func TestBuffer_Timestamp(t *testing.T) {
	now := sys.Timeval{Sec: 1234567890, Usec: 123456}
	buf := Buffer{
		Timestamp: now,
	}

	if buf.Timestamp.Sec != now.Sec {
		t.Errorf("Timestamp.Sec = %d, want %d", buf.Timestamp.Sec, now.Sec)
	}
	if buf.Timestamp.Usec != now.Usec {
		t.Errorf("Timestamp.Usec = %d, want %d", buf.Timestamp.Usec, now.Usec)
	}
}

// TestBuffer_SequenceNumbers tests sequence number handling
func TestBuffer_SequenceNumbers(t *testing.T) {
	// Simulate sequential buffers
	sequences := []uint32{0, 1, 2, 3, 100, 1000}

	for _, seq := range sequences {
		buf := Buffer{
			Sequence: seq,
		}
		if buf.Sequence != seq {
			t.Errorf("Sequence = %d, want %d", buf.Sequence, seq)
		}
	}
}

// TestBufferInfo_StructFields tests the mmap-only BufferInfo
func TestBufferInfo_StructFields(t *testing.T) {
	info := BufferInfo{Offset: 4096}
	if info.Offset != 4096 {
		t.Errorf("Offset = %d, want 4096", info.Offset)
	}
}

// TestBuffer_TypicalCaptureScenario tests typical capture buffer lifecycle
func TestBuffer_TypicalCaptureScenario(t *testing.T) {
	// Simulate typical buffer states during capture

	// 1. Initial state after mapping
	buf := Buffer{
		Index:      0,
		StreamType: BufTypeVideoCapture,
		Memory:     StreamTypeMMAP,
		Flags:      BufFlagMapped,
		Length:     614400,
	}

	if buf.Flags&BufFlagMapped == 0 {
		t.Error("Buffer should be mapped initially")
	}

	// 2. After queueing
	buf.Flags |= BufFlagQueued
	if buf.Flags&BufFlagQueued == 0 {
		t.Error("Buffer should be queued")
	}

	// 3. After capture (dequeue)
	buf.Flags &^= BufFlagQueued // Remove queued flag
	buf.Flags |= BufFlagDone    // Add done flag
	buf.BytesUsed = 614400
	buf.Sequence = 10

	if buf.Flags&BufFlagDone == 0 {
		t.Error("Buffer should be done after capture")
	}
	if buf.BytesUsed == 0 {
		t.Error("Buffer should have data after capture")
	}

	// 4. Check for errors
	if buf.Flags&BufFlagError != 0 {
		t.Error("Buffer should not have error flag in successful capture")
	}
}

// TestBuffer_ErrorScenario tests buffer with error flag
func TestBuffer_ErrorScenario(t *testing.T) {
	buf := Buffer{
		Index:     0,
		Flags:     BufFlagMapped | BufFlagDone | BufFlagError,
		BytesUsed: 0,
	}

	// Check error condition
	if buf.Flags&BufFlagError == 0 {
		t.Error("Buffer should have error flag")
	}

	// Typical error handling check
	isMapped := buf.Flags&BufFlagMapped != 0
	hasError := buf.Flags&BufFlagError != 0

	if !isMapped {
		t.Error("Buffer should still be mapped even with error")
	}
	if !hasError {
		t.Error("Buffer should have error flag")
	}
}

// TestBuffer_KeyframeDetection tests keyframe/P-frame/B-frame detection
func TestBuffer_KeyframeDetection(t *testing.T) {
	tests := []struct {
		name       string
		flags      BufFlag
		isKeyframe bool
		isPFrame   bool
		isBFrame   bool
	}{
		{
			name:       "Keyframe",
			flags:      BufFlagDone | BufFlagKeyFrame,
			isKeyframe: true,
			isPFrame:   false,
			isBFrame:   false,
		},
		{
			name:       "P-Frame",
			flags:      BufFlagDone | BufFlagPFrame,
			isKeyframe: false,
			isPFrame:   true,
			isBFrame:   false,
		},
		{
			name:       "B-Frame",
			flags:      BufFlagDone | BufFlagBFrame,
			isKeyframe: false,
			isPFrame:   false,
			isBFrame:   true,
		},
		{
			name:       "Unknown frame type",
			flags:      BufFlagDone,
			isKeyframe: false,
			isPFrame:   false,
			isBFrame:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Buffer{Flags: tt.flags}

			if (buf.Flags&BufFlagKeyFrame != 0) != tt.isKeyframe {
				t.Errorf("Keyframe check = %v, want %v", buf.Flags&BufFlagKeyFrame != 0, tt.isKeyframe)
			}
			if (buf.Flags&BufFlagPFrame != 0) != tt.isPFrame {
				t.Errorf("PFrame check = %v, want %v", buf.Flags&BufFlagPFrame != 0, tt.isPFrame)
			}
			if (buf.Flags&BufFlagBFrame != 0) != tt.isBFrame {
				t.Errorf("BFrame check = %v, want %v", buf.Flags&BufFlagBFrame != 0, tt.isBFrame)
			}
		})
	}
}

// TestBuffer_MultipleBufferIndexes tests handling different buffer indexes
func TestBuffer_MultipleBufferIndexes(t *testing.T) {
	// Test typical buffer count scenarios
	bufferCounts := []uint32{2, 4, 8, 16}

	for _, count := range bufferCounts {
		t.Run("", func(t *testing.T) {
			for i := uint32(0); i < count; i++ {
				buf := Buffer{
					Index:      i,
					StreamType: BufTypeVideoCapture,
					Memory:     StreamTypeMMAP,
				}

				if buf.Index != i {
					t.Errorf("Buffer index = %d, want %d", buf.Index, i)
				}
			}
		})
	}
}
