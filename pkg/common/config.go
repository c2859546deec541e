package common

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const (
	configPathEnv = "CONFIG_PATH"
	envPrefix     = "SEARCHD_"
	configTag     = "key"
)

//go:embed config.default.yaml
var defaultConfig []byte

// ConfigManager layers configuration from embedded defaults, an optional
// config file (CONFIG_PATH) and SEARCHD_* environment variables, then
// unmarshals the result into T.
type ConfigManager[T any] struct {
	k *koanf.Koanf
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	k := koanf.New(".")

	// Embedded defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Optional config file overlay
	if path := os.Getenv(configPathEnv); path != "" {
		parser, err := parserForPath(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("loaded config file")
	}

	// Environment overrides: SEARCHD_GATEWAY_HTTP_PORT -> gateway.http.port
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	return &ConfigManager[T]{k: k}, nil
}

// NewConfigManagerFromBytes builds a manager from raw YAML, skipping file and
// env layering. Used in tests.
func NewConfigManagerFromBytes[T any](raw []byte) (*ConfigManager[T], error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultConfig), kyaml.Parser()); err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(raw), kyaml.Parser()); err != nil {
		return nil, err
	}
	return &ConfigManager[T]{k: k}, nil
}

// GetConfig unmarshals the layered configuration into T
func (cm *ConfigManager[T]) GetConfig() T {
	var config T

	err := cm.k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: configTag,
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &config,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config")
	}

	return config
}

func parserForPath(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", path)
	}
}
