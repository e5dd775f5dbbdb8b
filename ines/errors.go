package ines

import "errors"

var (
	// ErrInvalidMagic is returned when the first four bytes are not "NES\x1a".
	ErrInvalidMagic = errors.New("ines: invalid magic number")
	// ErrTruncated is returned when the buffer is shorter than the header
	// declares its sections to be.
	ErrTruncated = errors.New("ines: truncated rom")
)
