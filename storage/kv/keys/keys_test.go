package keys_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kaeru/storage/kv/keys"
)

func TestInc(t *testing.T) {
	testCases := map[string]struct {
		key      keys.Key
		expected keys.Key
	}{
		"simple": {
			key:      keys.Key{0x04, 0x05},
			expected: keys.Key{0x04, 0x06},
		},
		"carry": {
			key:      keys.Key{0x04, 0xff},
			expected: keys.Key{0x05, 0x00},
		},
		"overflow": {
			key:      keys.Key{0xff, 0xff},
			expected: nil,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(testCase.expected, keys.Inc(testCase.key)); diff != "" {
				t.Fatalf(diff)
			}
		})
	}
}

func TestIncDoesNotMutate(t *testing.T) {
	key := keys.Key{0x01, 0xff}
	keys.Inc(key)

	if diff := cmp.Diff(keys.Key{0x01, 0xff}, key); diff != "" {
		t.Fatalf(diff)
	}
}

func TestRangePrefix(t *testing.T) {
	r := keys.All().Prefix(keys.Key("bb"))

	testCases := map[string]struct {
		key      keys.Key
		expected bool
	}{
		"prefix itself": {key: keys.Key("bb"), expected: true},
		"extension":     {key: keys.Key("bbz"), expected: true},
		"before":        {key: keys.Key("ba"), expected: false},
		"after":         {key: keys.Key("bc"), expected: false},
		"shorter":       {key: keys.Key("b"), expected: false},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			if r.Contains(testCase.key) != testCase.expected {
				t.Fatalf("expected Contains(%q) to be %v", testCase.key, testCase.expected)
			}
		})
	}
}

func TestUint64KeysSortNumerically(t *testing.T) {
	if keys.Compare(keys.Uint64ToKey(255), keys.Uint64ToKey(256)) >= 0 {
		t.Fatalf("expected 255 < 256")
	}

	if keys.KeyToUint64(keys.Uint64ToKey(1234)) != 1234 {
		t.Fatalf("expected round trip of 1234")
	}
}
