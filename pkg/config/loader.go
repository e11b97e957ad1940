package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/arthur-debert/instl/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "INSTL_"

// LoadConfiguration loads the effective configuration. overrides, keyed by
// dotted path ("log.verbosity"), win over every other layer.
func LoadConfiguration(overrides map[string]interface{}) (*Config, error) {
	return load(true, overrides)
}

func load(withUser bool, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Load system defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	if withUser {
		// 2. Load user config if it exists
		p, err := paths.New()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to resolve config directory")
		}
		userConfigPath := p.ConfigFilePath()
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := k.Load(file.Provider(userConfigPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load user config from %s", userConfigPath).
					WithDetail("path", userConfigPath)
			}
		}

		// 3. Load env vars
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Explicit overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	// 6. Post-process
	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps INSTL_REPORT_HISTORY_FILE to report.history_file: the first
// underscore separates the section, the rest belong to the key.
// Variables without a section (INSTL_STATE_DIR is read by pkg/paths) map
// to keys no struct field uses.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func postProcessConfig(cfg *Config) error {
	for i, s := range cfg.Report.Sinks {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != SinkLog && s != SinkFile {
			return errors.Newf(errors.ErrConfigValid, "unknown report sink %q", s).
				WithDetail("key", "report.sinks")
		}
		cfg.Report.Sinks[i] = s
	}

	if cfg.Report.HistoryFile == "" {
		p, err := paths.New()
		if err != nil {
			return errors.Wrap(err, errors.ErrConfigLoad, "failed to resolve state directory")
		}
		cfg.Report.HistoryFile = p.HistoryFilePath()
	} else {
		cfg.Report.HistoryFile = paths.ExpandHome(cfg.Report.HistoryFile)
	}

	if err := validateStatus("exit.generic", cfg.Exit.Generic); err != nil {
		return err
	}
	for code, status := range cfg.Exit.Codes {
		if err := validateStatus(fmt.Sprintf("exit.codes.%s", code), status); err != nil {
			return err
		}
	}

	return nil
}

// validateStatus rejects statuses that would read as success or fall
// outside what a process can report.
func validateStatus(key string, status int) error {
	if status < 1 || status > 255 {
		return errors.Newf(errors.ErrConfigValid, "%s must be between 1 and 255, got %d", key, status).
			WithDetail("key", key)
	}
	return nil
}
