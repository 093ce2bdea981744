// Package composite encodes sequences of keys into a
// single flat key. The encoding is order preserving
// and self-delimiting: the encoding of a sequence is
// never a prefix of the encoding of a different
// sequence of the same length, so each leading element
// defines its own disjoint namespace in the flat key
// space.
//
// Every element is written with 0x00 escaped as
// 0x00 0xff and is followed by the terminator 0x00 0x01.
package composite

import (
	"errors"

	"github.com/jrife/kaeru/storage/kv/keys"
)

const (
	escape     byte = 0x00
	escaped    byte = 0xff
	terminator byte = 0x01
)

// ErrMalformed is returned by Decode when the flat
// key was not produced by Encode
var ErrMalformed = errors.New("malformed composite key")

// Key is a sequence of keys
type Key []keys.Key

// Encode flattens the composite key
func Encode(key Key) keys.Key {
	size := 0

	for _, k := range key {
		size += len(k) + 2
	}

	flat := make(keys.Key, 0, size)

	for _, k := range key {
		flat = appendElement(flat, k)
	}

	return flat
}

// Decode reverses Encode
func Decode(flat keys.Key) (Key, error) {
	key := Key{}
	current := keys.Key{}

	for i := 0; i < len(flat); i++ {
		if flat[i] != escape {
			current = append(current, flat[i])

			continue
		}

		if i+1 >= len(flat) {
			return nil, ErrMalformed
		}

		i++

		switch flat[i] {
		case escaped:
			current = append(current, escape)
		case terminator:
			key = append(key, current)
			current = keys.Key{}
		default:
			return nil, ErrMalformed
		}
	}

	if len(current) != 0 {
		return nil, ErrMalformed
	}

	return key, nil
}

func appendElement(flat keys.Key, k keys.Key) keys.Key {
	for _, b := range k {
		if b == escape {
			flat = append(flat, escape, escaped)
		} else {
			flat = append(flat, b)
		}
	}

	return append(flat, escape, terminator)
}
