// Command calc adds integers, locally or through a remote calculator, and
// runs the server and dispatcher that serve remote calculators.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scraswell/calculator/internal/config"
)

type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:           "calc",
		Short:         "Integer calculator",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String(config.KeyName, config.Defaults[config.KeyName], "name used in logs")
	flags.String(config.KeyLogLevel, config.Defaults[config.KeyLogLevel], "log level (debug, info, warn, error, disabled)")
	root.AddCommand(newAddCommand(a), newServeCommand(a), newDispatchCommand(a))
	return root
}

func (a *app) load(cmd *cobra.Command) (err error) {
	err = a.v.BindPFlags(cmd.Flags())
	if err != nil {
		return
	}
	a.cfg, err = config.Load(a.v)
	if err != nil {
		return
	}
	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger()
	return
}

type shutdowner interface {
	Shutdown()
}

func waitForSignalAndShutdown(logger zerolog.Logger, s shutdowner) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	logger.Info().Stringer("signal", sig).Msg("got signal")
	s.Shutdown()
}
