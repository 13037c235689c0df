package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "particlefield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Field.Particles)
	assert.Equal(t, 50, cfg.Field.NarrowParticles)
	assert.Equal(t, 768.0, cfg.Field.NarrowBreakpoint)
	assert.Equal(t, 250*time.Millisecond, cfg.Field.ResizeDebounce)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	l, err := NewLoader()
	require.NoError(t, err)
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, l.File())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend: terminal
field:
  particles: 80
  resize_debounce: 100ms
  color:
    hue: 120
`)
	l, err := NewLoader()
	require.NoError(t, err)
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendTerminal, cfg.Backend)
	assert.Equal(t, 80, cfg.Field.Particles)
	assert.Equal(t, 100*time.Millisecond, cfg.Field.ResizeDebounce)
	assert.Equal(t, 120.0, cfg.Field.Color.Hue)
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.Field.NarrowParticles)
	assert.Equal(t, 0.2, cfg.Field.Color.Saturation)
	assert.Equal(t, path, l.File())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARTICLEFIELD_FIELD_PARTICLES", "42")

	l, err := NewLoader()
	require.NoError(t, err)
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Field.Particles)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "field:\n  min_opacity: 0.9\n  max_opacity: 0.5\n")

	l, err := NewLoader()
	require.NoError(t, err)
	_, err = l.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opacity")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "field: [unterminated")

	l, err := NewLoader()
	require.NoError(t, err)
	_, err = l.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestFieldValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FieldConfig)
	}{
		{"zero particles", func(f *FieldConfig) { f.Particles = 0 }},
		{"negative speed", func(f *FieldConfig) { f.MaxSpeed = -1 }},
		{"inverted radius", func(f *FieldConfig) { f.MinRadius, f.MaxRadius = 3, 1 }},
		{"opacity above one", func(f *FieldConfig) { f.MaxOpacity = 1.5 }},
		{"zero link distance", func(f *FieldConfig) { f.LinkDistance = 0 }},
		{"negative debounce", func(f *FieldConfig) { f.ResizeDebounce = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultField()
			tt.mutate(&f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "opengl"
	assert.ErrorContains(t, cfg.Validate(), "unknown backend")
}

func TestDumpLoadsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Field.Particles = 64
	cfg.Field.Seed = 7

	data, err := Dump(cfg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "field")

	l, err := NewLoader()
	require.NoError(t, err)
	got, err := l.Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestWatchReportsChanges(t *testing.T) {
	path := writeConfig(t, "field:\n  particles: 10\n")

	l, err := NewLoader()
	require.NoError(t, err)
	_, err = l.Load(path)
	require.NoError(t, err)

	changes := make(chan Config, 16)
	l.Watch(func(cfg Config, err error) {
		if err != nil {
			return
		}
		select {
		case changes <- cfg:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("field:\n  particles: 20\n"), 0o644))

	// a truncating write may surface an intermediate event first
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Field.Particles == 20 {
				return
			}
		case <-deadline:
			t.Fatal("no config change observed")
		}
	}
}
