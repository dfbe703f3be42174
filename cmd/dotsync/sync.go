package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/discover"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/merge"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/sync"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func newSyncCmd() *cobra.Command {
	var (
		dryRun         bool
		overwrite      bool
		showDiffs      bool
		nonInteractive bool
		assumeYes      bool
		repoRoot       string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: MsgSyncShort,
		Long:  MsgSyncLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, syncFlags{
				dryRun:         dryRun,
				overwrite:      overwrite,
				showDiffs:      showDiffs,
				nonInteractive: nonInteractive,
				assumeYes:      assumeYes,
				repoRoot:       repoRoot,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without mutating anything")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace repository files without merging")
	cmd.Flags().BoolVar(&showDiffs, "diff", false, "Show per-file classification, comparison and diffs")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail fast with instructions instead")
	cmd.Flags().BoolVar(&assumeYes, "yes", false, "Assume yes at prompts (accepts the overwrite downgrade)")
	cmd.Flags().StringVar(&repoRoot, "repo", "", "Dotfiles repository root (default: $DOTSYNC_REPO, then the enclosing git repo)")

	return cmd
}

type syncFlags struct {
	dryRun         bool
	overwrite      bool
	showDiffs      bool
	nonInteractive bool
	assumeYes      bool
	repoRoot       string
}

func runSync(cmd *cobra.Command, flags syncFlags) error {
	p, err := paths.New(flags.repoRoot)
	if err != nil {
		return err
	}

	cfg, err := config.Load(p.RepoConfigPath())
	if err != nil {
		return err
	}

	fs := filesystem.NewOS()
	opts := sync.Options{
		DryRun:    flags.dryRun,
		Overwrite: flags.overwrite,
		Verbose:   flags.showDiffs,
		Out:       cmd.OutOrStdout(),
	}

	session, err := sync.New(fs, p, cfg, merge.NewRunner(), opts)
	if errors.IsErrorCode(err, errors.ErrToolUnavailable) {
		// The one interactive boundary: downgrading to overwrite mode
		// discards merge semantics and needs explicit consent
		if !flags.assumeYes {
			if flags.nonInteractive || !isTerminal() {
				return err
			}
			if !confirmOverwriteDowngrade(cmd) {
				return err
			}
		}
		opts.Overwrite = true
		session, err = sync.New(fs, p, cfg, merge.NewRunner(), opts)
	}
	if err != nil {
		return err
	}
	defer session.Close()

	// An interrupt stops before the next candidate; journal entries
	// written so far survive and the partial rollback script stays valid
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot determine home directory")
	}

	walker := discover.NewWalker(fs, p, session.Repo(), home)
	summary, err := session.Run(ctx, walker)
	if summary != nil {
		renderSummary(cmd, summary, session.RollbackScriptPath(), flags.dryRun)
	}
	if err != nil {
		return err
	}

	if !summary.Success() {
		return fmt.Errorf("sync finished with %d conflict(s) and %d failure(s)",
			summary.Conflicts, summary.Failures)
	}
	return nil
}

func confirmOverwriteDowngrade(cmd *cobra.Command) bool {
	fmt.Fprint(cmd.OutOrStdout(), formatBold(MsgOverwritePrompt))

	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func renderSummary(cmd *cobra.Command, summary *types.Summary, rollbackScript string, dryRun bool) {
	out := cmd.OutOrStdout()

	for _, result := range summary.Results {
		switch result.Status {
		case types.StatusConflicted:
			fmt.Fprintf(out, render(conflictStyle, "conflict")+": %s - review %s\n",
				render(pathStyle, result.Candidate.RepoPath), result.SideFile)
		case types.StatusFailed:
			fmt.Fprintf(out, render(errorStyle, "failed")+": %s (%v)\n",
				render(pathStyle, result.Candidate.LocalPath), result.Err)
		case types.StatusSkippedMissing:
			fmt.Fprintf(out, "skipped: %s no longer exists\n", result.Candidate.LocalPath)
		}
	}

	if summary.Touched == 0 && summary.Conflicts == 0 && summary.Failures == 0 {
		fmt.Fprintln(out, MsgNothingToSync)
	} else {
		line := fmt.Sprintf(MsgSummaryFormat,
			summary.Touched, summary.Conflicts, summary.Failures, summary.Skipped)
		if summary.Success() {
			fmt.Fprint(out, render(successStyle, line))
		} else {
			fmt.Fprint(out, line)
		}
	}

	if rollbackScript != "" && summary.Touched > 0 {
		fmt.Fprintf(out, MsgRollbackHint, rollbackScript)
	}
	if dryRun {
		fmt.Fprintln(out, MsgDryRunNotice)
	}
}
