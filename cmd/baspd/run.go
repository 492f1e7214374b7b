package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshwire/basp/config"
	"github.com/meshwire/basp/node"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var devLog bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a baspd instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg.SetDefault()
			}

			log, err := newLogger(devLog)
			if err != nil {
				return fmt.Errorf("baspd: logger: %w", err)
			}
			defer log.Sync()

			self, err := resolveSelf(cfg)
			if err != nil {
				return fmt.Errorf("baspd: node id: %w", err)
			}

			d := newDaemon(cfg, self, log)

			errCh := make(chan error, 1)
			go func() { errCh <- d.run() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info("shutting down", zap.Stringer("signal", sig))
				return d.stop()
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a baspd.yaml config file")
	cmd.Flags().BoolVar(&devLog, "dev", false, "use human-readable development logging")

	return cmd
}

func resolveSelf(cfg *config.Config) (node.Id, error) {
	if cfg.NodeID != 0 {
		return node.Id(cfg.NodeID), nil
	}

	return node.New()
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
