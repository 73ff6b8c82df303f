package web

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/critterman/skyrim_plugin_browser/esp"
	"github.com/critterman/skyrim_plugin_browser/status"
)

// PluginExtensions lists the file extensions served from a plugin
// directory.
var PluginExtensions = []string{".esp", ".esm", ".esl"}

func IsPluginFileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range PluginExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// PluginDir serves parsed plugins out of one filesystem directory,
// caching each parse result. Safe for concurrent handlers.
type PluginDir struct {
	root string

	mu    sync.Mutex
	cache map[string]*esp.Plugin
}

func NewPluginDir(root string) *PluginDir {
	return &PluginDir{
		root:  root,
		cache: make(map[string]*esp.Plugin),
	}
}

// List returns the plugin file names in the directory, sorted.
func (d *PluginDir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot list plugin directory %q", d.root)
	}

	files := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && IsPluginFileName(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (d *PluginDir) resolve(name string) (string, error) {
	if name != filepath.Base(name) || !IsPluginFileName(name) {
		return "", errors.Errorf("Invalid plugin name %q", name)
	}
	return filepath.Join(d.root, name), nil
}

// Raw returns the unparsed bytes of a plugin file.
func (d *PluginDir) Raw(name string) ([]byte, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read plugin %q", name)
	}
	return data, nil
}

// Plugin parses a plugin file, or returns the cached result of an
// earlier parse.
func (d *PluginDir) Plugin(name string) (*esp.Plugin, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if plugin, ok := d.cache[name]; ok {
		return plugin, nil
	}

	data, err := d.Raw(name)
	if err != nil {
		return nil, err
	}

	status.Info("Parsing %s (%d bytes)", name, len(data))
	start := time.Now()
	plugin, err := esp.ParsePlugin(data)
	if err != nil {
		status.Error("Failed to parse %s: %v", name, err)
		return nil, errors.Wrapf(err, "Cannot parse plugin %q", name)
	}
	status.Info("Parsed %s in %v: %d worlds, %d cells",
		name, time.Since(start), plugin.Worlds.Len(), len(plugin.Cells))

	d.cache[name] = plugin
	return plugin, nil
}
