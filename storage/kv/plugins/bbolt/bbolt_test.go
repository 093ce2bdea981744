package bbolt_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys"
	"github.com/jrife/kaeru/storage/kv/plugins/bbolt"
	"github.com/jrife/kaeru/utils/uuid"
)

func TestReopen(t *testing.T) {
	path := fmt.Sprintf("%s/bbolt-%s", os.TempDir(), uuid.MustUUID())
	defer os.RemoveAll(path)

	store, err := bbolt.New(bbolt.BBoltStoreConfig{Path: path})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if err := store.Set(keys.Key("a"), []byte("1")); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	before, _ := store.Get(keys.Key("a"))

	if err := store.Close(); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	store, err = bbolt.New(bbolt.BBoltStoreConfig{Path: path})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	defer store.Close()

	after, err := store.Get(keys.Key("a"))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if string(after.Value) != "1" || !after.Version.Equal(before.Version) {
		t.Fatalf("expected a=1 with its version to survive a reopen, got %#v", after)
	}

	if err := store.Set(keys.Key("a"), []byte("2")); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	rewritten, _ := store.Get(keys.Key("a"))

	if keys.KeyToUint64(keys.Key(rewritten.Version)) <= keys.KeyToUint64(keys.Key(before.Version)) {
		t.Fatalf("expected versions to keep increasing after a reopen")
	}

	if err := store.Atomic().Check(keys.Key("a"), before.Version).Commit(); err != kv.ErrConflict {
		t.Fatalf("expected ErrConflict, got %#v", err)
	}
}

func TestOpenBadPath(t *testing.T) {
	path := fmt.Sprintf("%s/bbolt-%s/missing/dir/db", os.TempDir(), uuid.MustUUID())

	if _, err := bbolt.New(bbolt.BBoltStoreConfig{Path: path}); err == nil {
		t.Fatalf("expected an error when the parent directory does not exist")
	}
}
