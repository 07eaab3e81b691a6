// Command rpcgen writes remote proxies and handlers for declarations marked
// //rpc:service. For every input file.go it renders file.g.go next to it.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "rpcgen file.go...",
		Short:        "Generate remote proxies and handlers for //rpc:service declarations",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}
}

func outputName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".g" + ext
}

func load(set *token.FileSet, names []string, read func(name string) (any, error)) ([]File, ServiceMap, error) {
	var files []File
	var skipped []map[string]error
	for _, name := range names {
		src, err := read(name)
		if err != nil {
			return nil, nil, err
		}
		f, err := parser.ParseFile(set, name, src, parser.ParseComments)
		if err != nil {
			return nil, nil, err
		}
		file, s, err := parseFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%v: %w", name, err)
		}
		files = append(files, file.filter())
		skipped = append(skipped, s)
	}
	sm, err := createServiceMap(files)
	if err != nil {
		return nil, nil, err
	}
	for i, file := range files {
		for _, t := range file.Types {
			if err, ok := skipped[i][t.Name]; ok {
				return nil, nil, fmt.Errorf("%v: service %v: %w", names[i], t.Name, err)
			}
		}
		if err := file.validate(sm); err != nil {
			return nil, nil, fmt.Errorf("%v: %w", names[i], err)
		}
	}
	return files, sm, nil
}

func run(names []string) error {
	set := token.NewFileSet()
	files, sm, err := load(set, names, func(string) (any, error) {
		return nil, nil
	})
	if err != nil {
		return err
	}
	for i, file := range files {
		out := outputName(names[i])
		if len(file.Types) == 0 && len(file.Interfaces) == 0 {
			log.Info().Str("file", names[i]).Msg("no services, skipping")
			continue
		}
		g := generateFile(file, sm)
		if err := g.Save(out); err != nil {
			return err
		}
		log.Info().Str("file", out).Msg("generated")
	}
	return nil
}
