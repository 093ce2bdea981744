package keys

// All returns a new key range matching all keys
func All() Range {
	return Range{}
}

// Range represents all keys such that
//   k >= Min and k < Max
// If Min = nil that indicates the start of all keys
// If Max = nil that indicates the end of all keys
// If multiple modifiers are called on a range the end
// result is effectively the same as ANDing all the
// restrictions.
type Range struct {
	Min Key
	Max Key
}

// Gte confines the range to keys that are
// greater than or equal to k
func (r Range) Gte(k Key) Range {
	if compare(k, r.Min) <= 0 {
		return r
	}

	r.Min = k

	return r
}

// Lt confines the range to keys that are
// less than k
func (r Range) Lt(k Key) Range {
	if r.Max != nil && compare(k, r.Max) >= 0 {
		return r
	}

	r.Max = k

	return r
}

// Prefix confines the range to keys that
// have the prefix k, including k itself
func (r Range) Prefix(k Key) Range {
	r = r.Gte(k)

	if max := Inc(k); max != nil {
		r = r.Lt(max)
	}

	return r
}

// Contains returns true if k is inside the range
func (r Range) Contains(k Key) bool {
	if r.Min != nil && Compare(k, r.Min) < 0 {
		return false
	}

	if r.Max != nil && Compare(k, r.Max) >= 0 {
		return false
	}

	return true
}

func compare(a Key, b Key) int {
	if a == nil {
		if b == nil {
			return 0
		}

		return -1
	}

	if b == nil {
		return 1
	}

	return Compare(a, b)
}
