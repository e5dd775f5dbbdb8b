package mapper

import "errors"

// ErrUnsupportedMapper is returned by New when the ROM declares a mapper
// number this core has no board implementation for (spec.md's
// UnsupportedMapper error case).
var ErrUnsupportedMapper = errors.New("unsupported mapper")
