package composite

import (
	"github.com/jrife/kaeru/storage/kv/keys"
)

// Compose maps a record key inside a table to the
// flat key used in the underlying store. Records of
// different tables can never share a flat key.
func Compose(table string, key string) keys.Key {
	return Encode(Key{keys.Key(table), keys.Key(key)})
}

// TablePrefix returns the prefix shared by the flat keys
// of every record in table and by no record of any
// other table.
func TablePrefix(table string) keys.Key {
	return Encode(Key{keys.Key(table)})
}

// RecordKey extracts the record key from a flat key
// produced by Compose
func RecordKey(flat keys.Key) (string, error) {
	key, err := Decode(flat)

	if err != nil {
		return "", err
	}

	if len(key) != 2 {
		return "", ErrMalformed
	}

	return string(key[1]), nil
}
