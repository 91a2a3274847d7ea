// Package encoding renders numeric ids as short printable strings.
package encoding

import (
	"errors"
	"math"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	base     = int64(62)
	maxLen   = 11 // ceil(log62(2^63))
)

var (
	ErrInvalidChar = errors.New("encoding: invalid character in base62 string")
	ErrNegative    = errors.New("encoding: base62 ids must be non-negative")
	ErrOverflow    = errors.New("encoding: base62 string overflows int64")
)

// Base62Encode converts a non-negative id to a Base62 string.
// Negative ids have no representation and encode as "".
func Base62Encode(id int64) string {
	if id < 0 {
		return ""
	}
	if id == 0 {
		return string(alphabet[0])
	}

	var chars [maxLen]byte
	k := maxLen
	for n := id; n > 0; n /= base {
		k--
		chars[k] = alphabet[n%base]
	}
	return string(chars[k:])
}

// Base62Decode converts a Base62 string back to an id.
func Base62Decode(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidChar
	}

	var id int64
	for _, char := range s {
		index := strings.IndexRune(alphabet, char)
		if index == -1 {
			return 0, ErrInvalidChar
		}
		if id > (math.MaxInt64-int64(index))/base {
			return 0, ErrOverflow
		}
		id = id*base + int64(index)
	}
	return id, nil
}
