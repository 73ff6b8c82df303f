package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings holds tool-level defaults loadable from a YAML file. The
// core parser does not read these; they only seed CLI flag defaults.
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`
	Encoding   string `yaml:"encoding"`
	Format     string `yaml:"format"`
	Pretty     bool   `yaml:"pretty"`
}

func DefaultSettings() *Settings {
	return &Settings{
		ListenAddr: ":8000",
		DataDir:    ".",
		Format:     "text",
	}
}

// LoadSettings reads settings from path. A missing file is not an
// error and yields the defaults; a present but unreadable or invalid
// file is.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "Failed to read settings %q", path)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	return s, nil
}
