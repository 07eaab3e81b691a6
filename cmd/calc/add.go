package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scraswell/calculator/internal/config"
	"github.com/scraswell/calculator/internal/service"
	"github.com/scraswell/calculator/pkg/calcproxy"
	"github.com/scraswell/calculator/pkg/calculator"
	"github.com/scraswell/calculator/pkg/remote"
)

func newAddCommand(a *app) *cobra.Command {
	var (
		useRemote bool
		instance  string
	)
	cmd := &cobra.Command{
		Use:   "add X Y",
		Short: "Print X + Y, wrapping around on int32 overflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseOperand(args[0])
			if err != nil {
				return err
			}
			y, err := parseOperand(args[1])
			if err != nil {
				return err
			}
			var sum int32
			if useRemote {
				sum, err = remoteAdd(a.cfg, a.logger, instance, x, y)
				if err != nil {
					return err
				}
			} else {
				sum = calculator.New().Add(x, y)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sum)
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&useRemote, "remote", false, "add through a remote calculator")
	flags.StringVar(&instance, "instance", service.DefaultInstance, "remote calculator instance")
	flags.String(config.KeyDispatcher, config.Defaults[config.KeyDispatcher], "dispatcher endpoint for lookups")
	flags.String(config.KeyClient, config.Defaults[config.KeyClient], "local endpoint for client connections")
	return cmd
}

func parseOperand(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("operand %q: %w", s, err)
	}
	return int32(n), nil
}

func remoteAdd(cfg config.Config, logger zerolog.Logger, instance string, x, y int32) (sum int32, err error) {
	client, err := remote.NewClient(cfg.Name, cfg.ClientEndPoint, cfg.DispatcherEndPoint)
	if err != nil {
		return
	}
	client.SetLogger(logger)
	defer client.Close()
	calc, err := calcproxy.Dial(&client, instance)
	if err != nil {
		return
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			panic(r)
		}
		err = fmt.Errorf("remote add: %w", e)
	}()
	return calc.Add(x, y), nil
}
