package main

import (
	"net"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scraswell/calculator/internal/config"
	"github.com/scraswell/calculator/pkg/remote"
)

func newDispatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Track announced services and answer client lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, _, err := startDispatcher(a.cfg, a.logger)
			if err != nil {
				return err
			}
			waitForSignalAndShutdown(a.logger, d)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String(config.KeyAnnounce, config.Defaults[config.KeyAnnounce], "endpoint taking server announces")
	flags.String(config.KeyDispatcher, config.Defaults[config.KeyDispatcher], "endpoint answering client lookups")
	return cmd
}

func startDispatcher(cfg config.Config, logger zerolog.Logger) (d *remote.Dispatcher, announce, lookup net.Addr, err error) {
	dispatcher := remote.NewDispatcher(cfg.Name)
	d = &dispatcher
	d.SetLogger(logger)
	announce, err = d.ListenAnnounces(cfg.AnnounceEndPoint)
	if err != nil {
		return
	}
	lookup, err = d.Serve(cfg.DispatcherEndPoint)
	if err != nil {
		d.Shutdown()
	}
	return
}
