package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Generate renders the default configuration as commented TOML, suitable
// for seeding a repository's .dotsync.toml.
func Generate() ([]byte, error) {
	cfg, err := Load("")
	if err != nil {
		return nil, err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal default config")
	}

	header := []byte("# dotsync repository configuration\n\n")
	return append(header, out...), nil
}
