package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"diffusion-sim/internal/admin"
	"diffusion-sim/internal/sim"
)

var (
	serveAddr     string
	serveCapacity int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP admin server",
	Long:  "serve exposes the simulator over HTTP: a run form, JSON run endpoints, CSV export and Prometheus metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}
		srv := admin.NewServer(s, cfg, nil)
		srv.Store = admin.NewRunStore(serveCapacity)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.Start(ctx, serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().IntVar(&serveCapacity, "max-runs", admin.DefaultStoreCapacity, "Number of finished runs kept in memory")
}
