package composite_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kaeru/storage/kv/keys"
	"github.com/jrife/kaeru/storage/kv/keys/composite"
)

func TestEncodeDecode(t *testing.T) {
	testCases := map[string]composite.Key{
		"simple":       {keys.Key("servers"), keys.Key("demo")},
		"empty-record": {keys.Key("servers"), keys.Key{}},
		"zero-bytes":   {keys.Key{0x00, 0x01}, keys.Key{0x00, 0x00, 0xff}},
		"single":       {keys.Key("users")},
	}

	for name, key := range testCases {
		t.Run(name, func(t *testing.T) {
			decoded, err := composite.Decode(composite.Encode(key))

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if diff := cmp.Diff(key, decoded); diff != "" {
				t.Fatalf(diff)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	testCases := map[string]keys.Key{
		"dangling-escape": {'a', 0x00},
		"bad-escape":      {'a', 0x00, 0x07},
		"unterminated":    {'a', 0x00, 0x01, 'b'},
	}

	for name, flat := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := composite.Decode(flat); err != composite.ErrMalformed {
				t.Fatalf("expected ErrMalformed, got %#v", err)
			}
		})
	}
}

func TestComposeIsInjective(t *testing.T) {
	pairs := [][2]string{
		{"a", "bc"},
		{"ab", "c"},
		{"a\x00", "c"},
		{"a", "\x00c"},
		{"", "abc"},
		{"abc", ""},
	}

	seen := map[string][2]string{}

	for _, pair := range pairs {
		flat := string(composite.Compose(pair[0], pair[1]))

		if other, ok := seen[flat]; ok {
			t.Fatalf("%q and %q map to the same flat key", pair, other)
		}

		seen[flat] = pair
	}
}

func TestTablePrefixesDoNotCollide(t *testing.T) {
	tables := []string{"user", "users", "users\x00", "u", ""}

	for _, a := range tables {
		for _, b := range tables {
			if a == b {
				continue
			}

			flat := composite.Compose(b, "key")

			if keys.All().Prefix(composite.TablePrefix(a)).Contains(flat) {
				t.Fatalf("record of table %q falls into the range of table %q", b, a)
			}
		}

		if !keys.All().Prefix(composite.TablePrefix(a)).Contains(composite.Compose(a, "key")) {
			t.Fatalf("record of table %q is outside its own range", a)
		}
	}
}

func TestEncodingPreservesOrder(t *testing.T) {
	ordered := []string{"a", "a\x00", "a\x00\x00", "a\x01", "ab", "b"}

	for i := 1; i < len(ordered); i++ {
		prev := composite.Compose("t", ordered[i-1])
		next := composite.Compose("t", ordered[i])

		if keys.Compare(prev, next) >= 0 {
			t.Fatalf("expected %q < %q after encoding", ordered[i-1], ordered[i])
		}
	}
}

func TestRecordKey(t *testing.T) {
	key, err := composite.RecordKey(composite.Compose("servers", "demo"))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if key != "demo" {
		t.Fatalf("expected demo, got %q", key)
	}

	if _, err := composite.RecordKey(composite.TablePrefix("servers")); err != composite.ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %#v", err)
	}
}
