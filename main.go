package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
	"github.com/iburimskiy/particle-field/internal/game"
	"github.com/iburimskiy/particle-field/internal/observability"
	"github.com/iburimskiy/particle-field/internal/term"
)

// host is a backend that owns a field for the lifetime of Run.
type host interface {
	Field() *field.Renderer
	Run(ctx context.Context) error
}

type options struct {
	configFile string
	pickConfig bool
	loader     *config.Loader
}

func newRootCmd() (*cobra.Command, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, err
	}
	opts := &options{loader: loader}

	root := &cobra.Command{
		Use:           "particlefield",
		Short:         "Animated particle field with proximity links",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.loader)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default ./particlefield.yaml)")
	flags.BoolVar(&opts.pickConfig, "pick-config", false, "choose the config file in a dialog")
	flags.String("backend", config.BackendWindow, "window or terminal")
	flags.Int("particles", config.DefaultParticles, "particle count on wide viewports")
	flags.Uint64("seed", 0, "random seed, 0 seeds from the clock")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-file", "", "also write JSON logs to this file")
	flags.Bool("debug", false, "show the debug overlay (window backend)")

	v := loader.Viper()
	for key, flag := range map[string]string{
		"backend":         "backend",
		"field.particles": "particles",
		"field.seed":      "seed",
		"logger.level":    "log-level",
		"logger.log_file": "log-file",
		"window.debug":    "debug",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			data, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return root, nil
}

// load resolves the config file (asking for one with --pick-config) and decodes it.
func (o *options) load() (config.Config, error) {
	if o.pickConfig {
		path, err := zenity.SelectFile(
			zenity.Title("Open Particle Field Config"),
			zenity.FileFilters{{
				Name:     "YAML",
				Patterns: []string{"*.yaml", "*.yml"},
			}},
		)
		switch {
		case errors.Is(err, zenity.ErrCanceled):
		case err != nil:
			return config.Config{}, fmt.Errorf("picking config: %w", err)
		default:
			o.configFile = path
		}
	}
	return o.loader.Load(o.configFile)
}

func run(ctx context.Context, cfg config.Config, loader *config.Loader) error {
	log := observability.Initialize(cfg)
	defer observability.Sync()
	log.Info("starting", zap.String("backend", cfg.Backend), zap.String("config", loader.File()))

	var h host
	switch cfg.Backend {
	case config.BackendTerminal:
		th, err := term.New(cfg, log, nil)
		if err != nil {
			return err
		}
		h = th
	default:
		h = game.New(cfg, log)
	}

	loader.Watch(func(next config.Config, err error) {
		if err != nil {
			log.Warn("config reload rejected", zap.Error(err))
			return
		}
		h.Field().Reconfigure(next.Field)
	})

	return h.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := newRootCmd()
	if err == nil {
		err = root.ExecuteContext(ctx)
	}
	if err != nil {
		if logger := observability.GetLogger(); logger.Core().Enabled(zap.ErrorLevel) {
			logger.Error("particlefield failed", zap.Error(err))
			observability.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
