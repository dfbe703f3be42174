// Package config loads dotsync configuration: embedded defaults layered
// under an optional .dotsync.toml at the repository root.
package config

import (
	_ "embed"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

//go:embed defaults.toml
var defaultConfig []byte

// Config is the resolved dotsync configuration
type Config struct {
	Sync   SyncConfig   `koanf:"sync" toml:"sync"`
	Backup BackupConfig `koanf:"backup" toml:"backup"`
}

// SyncConfig controls classification and merging
type SyncConfig struct {
	// BinaryExtensions are classified binary in addition to the
	// built-in table
	BinaryExtensions []string `koanf:"binary_extensions" toml:"binary_extensions" comment:"Extensions classified as binary in addition to the built-in table"`

	// MergeTools is the lookup preference order for the external
	// three-way merge tool
	MergeTools []string `koanf:"merge_tools" toml:"merge_tools" comment:"Merge tools in preference order"`
}

// BackupConfig controls backup placement
type BackupConfig struct {
	// Dir overrides the backup root; empty means the XDG state default
	Dir string `koanf:"dir" toml:"dir" comment:"Override the backup root; empty means $XDG_STATE_HOME/dotsync/backups"`
}

// Load returns the configuration with defaults applied and, when
// repoConfigPath exists, the repository overrides layered on top.
func Load(repoConfigPath string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load default config")
	}

	if repoConfigPath != "" {
		if _, err := os.Stat(repoConfigPath); err == nil {
			if err := k.Load(file.Provider(repoConfigPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to parse %s", repoConfigPath)
			}
			logger.Debug().Str("path", repoConfigPath).Msg("Loaded repository config")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal config")
	}
	return &cfg, nil
}
