package main

import (
	"net"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scraswell/calculator/internal/config"
	// Registers the Calculator handler.
	_ "github.com/scraswell/calculator/internal/service"
	"github.com/scraswell/calculator/pkg/remote"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calculators and announce them to the dispatcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := startServer(a.cfg, a.logger)
			if err != nil {
				return err
			}
			waitForSignalAndShutdown(a.logger, s)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String(config.KeyServer, config.Defaults[config.KeyServer], "endpoint to listen on")
	flags.String(config.KeyAdvertise, config.Defaults[config.KeyAdvertise], "endpoint announced to the dispatcher (default: the listening address)")
	flags.String(config.KeyAnnounce, config.Defaults[config.KeyAnnounce], "dispatcher announce endpoint")
	return cmd
}

func startServer(cfg config.Config, logger zerolog.Logger) (*remote.Server, net.Addr, error) {
	s := remote.NewServer(cfg.Name)
	s.SetLogger(logger)
	addr, err := s.Serve(cfg.ServerEndPoint)
	if err != nil {
		return nil, nil, err
	}
	advertise := cfg.AdvertiseEndPoint
	if advertise == "" {
		advertise = addr.String()
	}
	err = s.AnnounceServices(advertise, cfg.AnnounceEndPoint)
	if err != nil {
		s.Shutdown()
		return nil, nil, err
	}
	return &s, addr, nil
}
