package services

import (
	"math"
	"route-generation-service/internal/domain"
	"unicode/utf16"
)

// MakeHash derives the external identity of a generated route.
//
// The seed is ceil(distance * start.lng * start.lat * end.lng * end.lat * 1000).
// With an empty title the seed is the identity. Otherwise the seed is
// truncated to int32 and every UTF-16 code unit of the title is folded in with
// h = (h<<5) - h + c, wrapping at 32 bits.
func MakeHash(distance float64, start, end domain.Coordinates, title string) int64 {
	seed := math.Ceil(distance * start.Lon * start.Lat * end.Lon * end.Lat * 1000)
	if title == "" {
		if math.IsNaN(seed) || math.IsInf(seed, 0) {
			return 0
		}
		return int64(seed)
	}

	h := toInt32(seed)
	for _, c := range utf16.Encode([]rune(title)) {
		h = (h << 5) - h + int32(c)
	}
	return int64(h)
}

// toInt32 truncates toward zero and wraps modulo 2^32.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	m := math.Mod(f, 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}
