package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileEnv names the variable pointing at an optional YAML file.
const ConfigFileEnv = "APP_CONFIG"

// Load layers configuration, lowest precedence first:
//  1. defaults from New
//  2. the YAML file named by APP_CONFIG, if set
//  3. environment variables (DATABASE_URL -> database_url)
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
