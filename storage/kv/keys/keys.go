package keys

import (
	"bytes"
	"encoding/binary"
)

// Uint64ToKey constructs a key from a
// uint64. Keys built this way sort in
// numeric order.
func Uint64ToKey(i uint64) Key {
	k := make(Key, 8)

	binary.BigEndian.PutUint64(k, i)

	return k
}

// KeyToUint64 constructs a uint64 from a
// key built with Uint64ToKey
func KeyToUint64(k Key) uint64 {
	if len(k) != 8 {
		return 0
	}

	return binary.BigEndian.Uint64(k)
}

// Key is a single key
type Key []byte

// Compare compares two keys
// -1 means a < b
// 1 means a > b
// 0 means a = b
func Compare(a, b Key) int {
	return bytes.Compare(a, b)
}

// Inc increments the key
func Inc(key Key) Key {
	carry := true
	after := make(Key, len(key))

	copy(after, key)

	for i := len(after) - 1; i >= 0 && carry; i-- {
		if key[i] < 0xff {
			carry = false
		}

		after[i] = key[i] + 1
	}

	// carry will only be true if all elements of k
	// were equal to 0xff. The range should just go
	// all the way to the end of the real key range.
	if carry {
		return nil
	}

	return after
}

// Next returns the smallest key that sorts
// after key
func Next(key Key) Key {
	next := make(Key, len(key)+1)

	copy(next, key)

	return next
}
