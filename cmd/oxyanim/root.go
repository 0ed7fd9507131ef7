package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "oxyanim",
		Short:         "Inspect and sample skeletal animation assets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML settings file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level from the settings file")

	root.AddCommand(newClipsCommand(a), newSampleCommand(a), newPlayCommand(a))
	return root
}

// setup loads the settings and builds the logger. Logs go to the command's error stream.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	level, err := common.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: log level: %w", config.ErrInvalidConfig, err)
	}

	a.cfg = cfg
	a.logger = common.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log.Prefix, common.WithLogLevel(level))
	return nil
}

// newLoader builds a loader logging through the app logger.
func (a *app) newLoader() loader.Loader {
	return loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(a.logger))
}

// loadModel imports a single asset.
func (a *app) loadModel(path string) (loader.Loader, model.Model, error) {
	l := a.newLoader()
	m, err := l.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return l, m, nil
}
