package plugins_test

import (
	"testing"

	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/plugins"
)

func TestPluginLookup(t *testing.T) {
	for _, name := range []string{"memory", "bbolt"} {
		if plugin := plugins.Plugin(name); plugin == nil || plugin.Name() != name {
			t.Fatalf("expected plugin %s to be registered", name)
		}
	}

	if plugins.Plugin("nope") != nil {
		t.Fatalf("expected unknown plugin lookup to return nil")
	}
}

func TestNewStore(t *testing.T) {
	store, err := plugins.NewStore("memory", nil)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	defer store.Close()

	if _, err := plugins.NewStore("nope", nil); err == nil {
		t.Fatalf("expected an error for an unknown plugin")
	}

	if _, err := plugins.NewStore("bbolt", kv.PluginOptions{}); err == nil {
		t.Fatalf("expected an error when path is missing")
	}

	if _, err := plugins.NewStore("bbolt", kv.PluginOptions{"path": 5}); err == nil {
		t.Fatalf("expected an error when path is not a string")
	}
}
