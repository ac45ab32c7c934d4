// Package util provides common utilities and constants shared across
// SweetByte's core and CLI: byte-size constants, progress/speed/time
// formatting, and a reusable buffer pool for the streaming engine.
//
// All utilities are stateless and thread-safe.
package util

// Size constants for byte calculations
const (
	KiB = 1 << 10 // 1024
	MiB = 1 << 20 // 1,048,576
	GiB = 1 << 30 // 1,073,741,824
	TiB = 1 << 40 // 1,099,511,627,776
)
