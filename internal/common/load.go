package common

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads a TOML file at path and overlays it onto Default(). A
// missing file is not an error — the defaults are used as-is, matching
// the teacher's "later files override earlier ones, none are
// mandatory" posture for -config flags.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}
