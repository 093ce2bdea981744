package plugins

import (
	"fmt"

	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/plugins/bbolt"
	"github.com/jrife/kaeru/storage/kv/plugins/memory"
)

var plugins []kv.Plugin

func init() {
	plugins = append(plugins, memory.Plugins()...)
	plugins = append(plugins, bbolt.Plugins()...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) kv.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
func Plugins() []kv.Plugin {
	return plugins
}

// NewStore builds a store with the named plugin
func NewStore(name string, options kv.PluginOptions) (kv.Store, error) {
	plugin := Plugin(name)

	if plugin == nil {
		return nil, fmt.Errorf("no kv plugin named %q", name)
	}

	store, err := plugin.NewStore(options)

	if err != nil {
		return nil, fmt.Errorf("could not create %s store: %w", name, err)
	}

	return store, nil
}
