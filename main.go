// Command replica shows a handheld console model with a live framebuffer
// on its screen.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"replica/app"
	"replica/hal"
	"replica/internal/buildinfo"
	"replica/internal/config"
	"replica/internal/logx"
	"replica/internal/prefs"
	"replica/internal/theme"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "replica",
		Short: "Handheld console replica viewer",
		Long: `replica - handheld console replica viewer

Controls:
  Drag / arrows  - Orbit
  Space / Home   - Return to the home view
  E              - Attach or detach the live framebuffer
  T              - Toggle light/dark theme
  H              - Toggle HD rendering
  R              - Reload the model
  Esc            - Quit`,
		Version:      buildinfo.Long(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "Config file (default $REPLICA_CONFIG or the user config dir)")
	f.String("asset", "", "Model path or URL (.glb)")
	f.Bool("watch", true, "Reload the model when the file changes")
	f.Bool("headless", false, "Run without a window")
	f.Int("hz", 60, "Tick rate in headless mode")
	f.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run forever)")
	f.String("snapshot", "", "Write the last headless frame to this PNG")
	f.Int("width", 1280, "Window width")
	f.Int("height", 800, "Window height")
	f.Bool("hd", true, "Render at full resolution (--hd=false for the dithered look)")
	f.String("log", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(infoCmd())
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &logx.Options{Level: level}
	if cfg.Log.Color {
		opts.Color = os.Stderr
	}
	log := logx.SetDefault(hal.NewLogger(os.Stderr), opts)
	log.Info("starting", "version", buildinfo.Short(), "asset", cfg.Asset.Path)

	store, err := prefs.Open(cfg.Prefs.Path)
	if err != nil {
		log.Warn("preferences reset", "err", err)
	}

	var viewer *app.Viewer
	newApp := func(h hal.HAL) (hal.App, error) {
		v, err := app.New(h, app.Options{
			Config:   cfg,
			Prefs:    store,
			Platform: theme.PlatformDark,
		})
		if err != nil {
			return nil, err
		}
		viewer = v
		return v, nil
	}
	defer func() {
		if viewer != nil {
			viewer.Close()
		}
	}()

	if cfg.Headless.Enabled {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:       cfg.Headless.Hz,
			Ticks:    cfg.Headless.Ticks,
			Width:    cfg.Headless.Width,
			Height:   cfg.Headless.Height,
			Snapshot: cfg.Headless.Snapshot,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return hal.RunWindow(hal.WindowConfig{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		TPS:    cfg.Window.TPS,
	}, newApp)
}
