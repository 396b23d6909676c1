package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"libedges/config"
)

func RootCommand(stdout io.Writer, getenv func(string) string) *cli.Command {
	cmd := &cli.Command{
		Name:  "libedges",
		Usage: "print the edges from application source into external libraries as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to the JSON config file",
			},
			&cli.StringFlag{
				Name:  "lang",
				Value: "js",
				Usage: "source language of the analyzed tree: js or go",
			},
			&cli.StringFlag{
				Name:  "scope",
				Value: scopeSubstring,
				Usage: "how modules are recognized as application source: substring or glob",
			},
		},

		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"), getenv)
			if err != nil {
				return err
			}
			slog.Debug("config loaded", "source", cfg.Source, "base", cfg.Base)

			ex, err := newExtractor(cfg, options{
				Lang:  cmd.String("lang"),
				Scope: cmd.String("scope"),
			}, stdout)
			if err != nil {
				return err
			}
			ex.Run(ctx, cfg.Source)
			return nil
		},
	}
	return cmd
}

// configArgs drops a trailing -c/--config that has no path after it, so the
// default config file is used instead.
func configArgs(args []string) []string {
	n := len(args)
	if n < 2 || !isConfigFlag(args[n-1]) {
		return args
	}
	// "-c -c" passes "-c" as the path.
	if n > 2 && isConfigFlag(args[n-2]) {
		return args
	}
	return args[:n-1]
}

func isConfigFlag(arg string) bool {
	return arg == "-c" || arg == "--config"
}

func main() {
	_ = godotenv.Load()
	cmd := RootCommand(os.Stdout, os.Getenv)
	if err := cmd.Run(context.Background(), configArgs(os.Args)); err != nil {
		slog.Error("exited", "error", err)
		os.Exit(1)
	}
}
