package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Keep deployed dotfiles and their repository in sync"
	MsgSyncShort      = "Sync local edits back into the dotfiles repository"
	MsgGenConfigShort = "Write a default .dotsync.toml to the repository root"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgDryRunNotice  = "\nDRY RUN MODE - No changes were made"
	MsgNothingToSync = "Everything in sync, nothing to do."
	MsgSummaryFormat = "Synced %d file(s), %d conflict(s), %d failure(s), %d skipped.\n"
	MsgRollbackHint  = "Rollback script: %s\n"

	// Prompts
	MsgOverwritePrompt = "No merge tool found. Continue in overwrite mode (repository files will be replaced without merging)? [y/N] "
)

// Long messages
const (
	MsgRootLong = `dotsync reconciles the configuration files deployed in your home
directory with their sources in a version-controlled dotfiles repository.
Local edits are merged back three-way, with the last committed version as
the common ancestor; every overwrite is backed up first and journaled into
a rollback script.`

	MsgSyncLong = `Sync discovers deployed files that diverged from their repository
sources and folds the local edits back in.

In merge mode (the default) each diverged file is merged three-way against
its last committed version; conflicts leave the repository untouched and
write a marked-up side file for review. With --overwrite the repository
copy is replaced outright. Either way the previous repository content is
backed up first and a rollback script is generated.`
)
