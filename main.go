// Command reboot runs reactor reboot procedures: it lights and darkens
// integer cuboids, keeps the lit region as disjoint cuboids and reports
// how many cells are on.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/chazu/reboot/pkg/config"
	"github.com/chazu/reboot/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// appFactory returns the App built from the resolved configuration. It is
// only valid inside a command's Run.
type appFactory func() *App

func newRootCommand() *cobra.Command {
	v := config.New()
	var (
		cfgFile string
		app     *App
	)

	root := &cobra.Command{
		Use:           "reboot",
		Short:         "Reactor reboot: exact cuboid union volumes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			if err := logger.Init(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
				return fmt.Errorf("config: %s: %w", config.KeyLogLevel, err)
			}
			app = NewApp(cfg)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")
	flags.Int("region-min", 0, "lower bound of the cubic initialization region")
	flags.Int("region-max", 0, "upper bound of the cubic initialization region")
	flags.IntP("workers", "w", 1, "overlap scan workers (0 = GOMAXPROCS)")
	flags.Bool("strict", false, "normalize after off instructions too")
	flags.Duration("eval-timeout", 0, "script evaluation time limit")
	flags.String("kernel", "", "mesh kernel: exact or sdfx")
	flags.Int("cells", 0, "sdfx marching cubes resolution")
	flags.Bool("clip", false, "clip meshes to the initialization region")
	flags.StringP("log-level", "l", "", "log level: critical, error, warning, notice, info, debug")
	bindFlags(v, flags, map[string]string{
		config.KeyRegionMin:   "region-min",
		config.KeyRegionMax:   "region-max",
		config.KeyWorkers:     "workers",
		config.KeyStrict:      "strict",
		config.KeyEvalTimeout: "eval-timeout",
		config.KeyMeshKernel:  "kernel",
		config.KeyMeshCells:   "cells",
		config.KeyMeshClip:    "clip",
		config.KeyLogLevel:    "log-level",
	})

	factory := func() *App { return app }
	root.AddCommand(
		RegisterRunCommand(factory),
		RegisterEvalCommand(factory),
		RegisterMeshCommand(factory),
		RegisterSnapshotCommand(factory),
	)
	return root
}

// bindFlags binds each config key to its flag. Only flags the user set
// override the configuration; unset flags fall through to the file,
// environment and defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := flags.Lookup(name)
		if err := v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}
