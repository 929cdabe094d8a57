package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hubastard/handmade/engine/assets"
	"github.com/hubastard/handmade/engine/config"
	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/logging"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/platform"
	"github.com/hubastard/handmade/engine/profiler"
)

var opts struct {
	cfgFile  string
	backend  string
	frames   uint64
	logLevel string
	dump     string
	profile  string
}

var rootCmd = &cobra.Command{
	Use:           "handmade",
	Short:         "Open a window and present a software back buffer",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWindow,
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the window backends compiled into this binary",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, n := range platform.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.cfgFile, "config", "", "config file (default ./handmade.yaml)")
	f.StringVar(&opts.backend, "backend", "", "window backend, see 'handmade backends'")
	f.Uint64Var(&opts.frames, "frames", 0, "stop after this many frames (0 = until closed)")
	f.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")
	f.StringVar(&opts.dump, "dump", "", "write the last headless frame to this PNG")
	f.StringVar(&opts.profile, "profile", "", "speedscope output path (profile builds only)")

	rootCmd.AddCommand(backendsCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if f.Changed("frames") {
		cfg.Loop.MaxFrames = opts.frames
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWindow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts.backend = cfg.Backend
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console && cfg.Backend != "tty"); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.Component("main")
	profiler.Init(1 << 16)

	wc := cfg.Core()
	b, err := platform.Open(cfg.Backend, wc)
	if err != nil {
		return err
	}
	log.WithField("backend", b.Name).Info("backend open")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := core.NewLoop(wc, b.Host, pixbuf.New(pixbuf.OSAllocator{}), input.NewPoller(b.Pads), &Gradient{})
	if err := loop.Run(ctx); err != nil {
		return err
	}

	if opts.dump != "" {
		if err := dumpFrame(b, opts.dump); err != nil {
			log.WithError(err).Warn("frame dump failed")
		}
	}
	if path, err := profiler.Dump(opts.profile); err != nil {
		log.WithError(err).Warn("profile dump failed")
	} else if path != "" {
		log.WithField("path", path).Info("profile written")
	}
	return nil
}

func dumpFrame(b *platform.Backend, path string) error {
	h, ok := b.Host.(*platform.Headless)
	if !ok {
		return fmt.Errorf("--dump needs the headless backend, have %s", b.Name)
	}
	if err := assets.SavePNG(path, h.Memory().Image()); err != nil {
		return err
	}
	logging.Component("main").WithField("path", path).Info("frame written")
	return nil
}
