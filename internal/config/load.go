package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "PARTICLEFIELD"
	configName     = "particlefield"
	configFileType = "yaml"
)

// Loader resolves a Config from defaults, file, environment and bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader primed with DefaultConfig.
func NewLoader() (*Loader, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := flatten(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("preparing defaults: %w", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return &Loader{v: v}, nil
}

// Viper exposes the underlying instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the config file at path, or ./particlefield.yaml when path is
// empty. A missing default file is not an error.
func (l *Loader) Load(path string) (Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.AddConfigPath(".")
		l.v.SetConfigName(configName)
		l.v.SetConfigType(configFileType)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return DefaultConfig(), fmt.Errorf("reading config: %w", err)
		}
	}
	return l.decode()
}

// File returns the config file in use, empty when running on defaults.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the re-decoded config each time the config file
// is written. It is a no-op when no file was loaded.
func (l *Loader) Watch(onChange func(Config, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Dump renders cfg as YAML, in the same shape Load accepts.
func Dump(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// flatten turns cfg into dotted viper keys ("field.particles") by way of
// its YAML form, so defaults and file keys always agree.
func flatten(cfg Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(key, sub)
				continue
			}
			out[key] = v
		}
	}
	walk("", tree)
	return out, nil
}
