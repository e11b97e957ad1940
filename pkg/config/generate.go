package config

import (
	"github.com/arthur-debert/instl/pkg/errors"
	gotoml "github.com/pelletier/go-toml/v2"
)

// TOML renders the configuration in the format of instl.toml
func (c *Config) TOML() ([]byte, error) {
	data, err := gotoml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return data, nil
}
