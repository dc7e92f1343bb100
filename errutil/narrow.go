package errutil

import "fmt"

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// NarrowCast converts between integer types, failing with a NarrowCastError
// when the round trip would change the value or flip its sign.
func NarrowCast[To, From integer](v From) (To, error) {
	out := To(v)
	if From(out) != v || (v < 0) != (out < 0) {
		return 0, &NarrowCastError{
			From:  fmt.Sprintf("%T", v),
			To:    fmt.Sprintf("%T", out),
			Value: v,
		}
	}
	return out, nil
}
