// Package uvcx drives the UVC (USB Video Class) vendor extension-unit
// control path used by UVC H.264 cameras to probe and commit their
// hardware encoder configuration.
//
// Unlike the rest of this module's V4L2 bindings, the H.264 XU control
// selectors and probe/commit record are not part of the V4L2 UAPI
// headers — they're a vendor convention (first shipped by Logitech,
// later adopted by gst-plugins-bad's uvch264 element) layered on top of
// the kernel's generic UVCIOC_CTRL_QUERY ioctl, which is the one piece
// of this package that is genuine kernel UAPI.
package uvcx

/*
#cgo linux CFLAGS: -I/usr/include
#include <linux/uvcvideo.h>
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// UVC Video Class-Specific Request Codes (USB Video Class spec, Table
// 4-2), used as the `query` argument to Query.
const (
	QuerySetCur  byte = 0x01
	QueryGetCur  byte = 0x81
	QueryGetMin  byte = 0x82
	QueryGetMax  byte = 0x83
	QueryGetRes  byte = 0x84
	QueryGetLen  byte = 0x85
	QueryGetInfo byte = 0x86
	QueryGetDef  byte = 0x87
)

// Control selectors for the UVC H.264 extension unit.
const (
	SelectorVideoConfigProbe  byte = 0x01
	SelectorVideoConfigCommit byte = 0x02
)

// DefaultUnitID is the extension-unit id hardcoded by the source this
// package is grounded on, for a "HD Pro Webcam C920" (a specific
// Logitech model). Real deployments should probe the device's UVC
// descriptor set for the H.264 XU's actual unit id instead of assuming
// 12; Negotiate accepts an override via cfg.UnitID.
const DefaultUnitID uint8 = 12

// Query issues UVCIOC_CTRL_QUERY against fd for the given extension
// unit, selector and request code. Every XU control must first be
// sized with QueryGetLen before any other query against it succeeds;
// Query performs that two-step dance itself, so callers never issue
// QueryGetLen directly.
//
// For QueryGetLen itself, data receives the 2-byte little-endian
// length and the function returns. For any other query, data must
// already be sized to hold (or supply) the control's value; Query
// fills it in place for GET_* queries or sends it verbatim for
// SET_CUR.
func Query(fd uintptr, unitID uint8, selector, query byte, data []byte) error {
	var length uint16
	lenBuf := make([]byte, 2)
	if err := rawQuery(fd, unitID, selector, QueryGetLen, lenBuf); err != nil {
		return fmt.Errorf("uvcx: get length: unit %d selector %#x: %w", unitID, selector, err)
	}
	length = binary.LittleEndian.Uint16(lenBuf)

	if query == QueryGetLen {
		if len(data) < 2 {
			return fmt.Errorf("uvcx: get length: data buffer too small (%d bytes)", len(data))
		}
		binary.LittleEndian.PutUint16(data, length)
		return nil
	}

	if len(data) < int(length) {
		return fmt.Errorf("uvcx: query %#x: data buffer (%d bytes) smaller than control length (%d bytes)", query, len(data), length)
	}

	if err := rawQuery(fd, unitID, selector, query, data[:length]); err != nil {
		return fmt.Errorf("uvcx: query %#x: unit %d selector %#x: %w", query, unitID, selector, err)
	}
	return nil
}

func rawQuery(fd uintptr, unitID uint8, selector, query byte, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("uvcx: empty control buffer")
	}
	xu := C.struct_uvc_xu_control_query{
		unit:     C.__u8(unitID),
		selector: C.__u8(selector),
		query:    C.__u8(query),
		size:     C.__u16(len(data)),
		data:     (*C.__u8)(unsafe.Pointer(&data[0])),
	}

	for {
		_, _, errno := sys.Syscall(sys.SYS_IOCTL, fd, uintptr(C.UVCIOC_CTRL_QUERY), uintptr(unsafe.Pointer(&xu)))
		switch errno {
		case 0:
			return nil
		case sys.EINTR:
			continue
		default:
			return errno
		}
	}
}
