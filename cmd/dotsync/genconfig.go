package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
)

func newGenConfigCmd() *cobra.Command {
	var repoRoot string

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New(repoRoot)
			if err != nil {
				return err
			}

			target := p.RepoConfigPath()
			if _, err := os.Stat(target); err == nil {
				return errors.Newf(errors.ErrInvalidInput, "%s already exists", target)
			}

			content, err := config.Generate()
			if err != nil {
				return err
			}
			if err := os.WriteFile(target, content, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoRoot, "repo", "", "Dotfiles repository root")
	return cmd
}
