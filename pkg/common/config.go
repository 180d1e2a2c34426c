package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const configPathEnv = "CONFIG_PATH"

// defaultConfig holds baseline settings applied before any config file.
var defaultConfig = []byte(`
mode: local
prettyLogs: false
server:
  http:
    host: 0.0.0.0
    port: 4096
  shutdownTimeout: 10s
storage:
  mountBase: /var/lib/zerobyte/mounts
monitor:
  enabled: true
  interval: 60s
`)

// ConfigManager loads configuration from defaults plus an optional config
// file pointed at by CONFIG_PATH. The file may be JSON or YAML.
type ConfigManager[T any] struct {
	config T
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		parser := pickParser(path)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	var config T
	err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "key",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "key",
			Result:           &config,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &ConfigManager[T]{config: config}, nil
}

// GetConfig returns the loaded configuration.
func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

func pickParser(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}
