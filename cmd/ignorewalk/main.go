package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bethropolis/ignorewalk/internal/app"
	"github.com/bethropolis/ignorewalk/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignorewalk [flags] [root...]",
		Short: "List the files of a directory tree that survive gitignore rules",
		Long: `ignorewalk walks one or more directory trees depth first, honouring
.gitignore, .ignore, .git/info/exclude and the global git excludes file,
and prints every entry that is not ignored. With --dump it prints file
contents instead, as plain text, JSON or Markdown.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), args)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Run(cmd.Context())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
