package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/config"
	"github.com/mklzl/rollsync/internal/engine"
	"github.com/mklzl/rollsync/internal/load"
	"github.com/mklzl/rollsync/internal/server"
)

// ServeOptions holds flags for the serve command. Flags override the
// config file.
type ServeOptions struct {
	ConfigPath      string
	Addr            string
	DataDir         string
	RefreshInterval time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rollsync server",
		Long: `Start the HTTP server and the background refresh loop.

Example:
  rollsync serve --config rollsync.yaml
  rollsync serve --addr :9000 --data-dir /var/lib/rollsync`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "metadata directory")
	cmd.Flags().DurationVar(&opts.RefreshInterval, "refresh-interval", 0, "background sync cadence")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.RefreshInterval > 0 {
		cfg.RefreshInterval = opts.RefreshInterval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := catalog.NewDatabase(cfg.DataDir)
	if err != nil {
		return err
	}
	exec := engine.NewExecutor(db, load.NewRegistry())

	log.Printf("[serve] data directory: %s", cfg.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[serve] shutting down")
		cancel()
	}()

	srv := server.NewServer(db, exec, cfg.Addr, cfg.RefreshInterval)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
