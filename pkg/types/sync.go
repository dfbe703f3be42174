package types

import "time"

// SyncCandidate pairs a deployed file with its repository source.
// Immutable for the duration of one sync pass.
type SyncCandidate struct {
	// LocalPath is the deployed file in the user's home tree
	LocalPath string

	// RepoPath is the corresponding file inside the dotfiles repository
	RepoPath string

	// IsTracked reports whether RepoPath has history at HEAD
	IsTracked bool
}

// Classification says whether a candidate's content is mergeable text
type Classification int

const (
	// ClassText content can be diffed and merged line-wise
	ClassText Classification = iota

	// ClassBinary content is never merged or diffed
	ClassBinary
)

func (c Classification) String() string {
	if c == ClassBinary {
		return "binary"
	}
	return "text"
}

// ComparisonResult is the relationship between local and repository content
type ComparisonResult int

const (
	// Identical means local and repository bytes match exactly
	Identical ComparisonResult = iota

	// Diverged means the contents differ in at least one byte
	Diverged
)

func (c ComparisonResult) String() string {
	if c == Diverged {
		return "diverged"
	}
	return "identical"
}

// MergeStatus is the outcome class of a three-way merge
type MergeStatus int

const (
	// MergeClean means the merged content carries no conflict markers
	MergeClean MergeStatus = iota

	// MergeConflict means the content contains unresolved conflict regions
	// and must not overwrite the repository file without human review
	MergeConflict
)

func (s MergeStatus) String() string {
	if s == MergeConflict {
		return "conflict"
	}
	return "clean"
}

// MergeOutcome is the result of one three-way merge attempt
type MergeOutcome struct {
	Status  MergeStatus
	Content []byte
}

// BackupRecord describes one timestamped copy made before an overwrite.
// Never mutated; retained until the user prunes backups manually.
type BackupRecord struct {
	OriginalPath string
	BackupPath   string
	Timestamp    time.Time
}

// SyncStatus is the terminal state of one candidate in a pass
type SyncStatus int

const (
	// StatusIdentical - contents already match, nothing done
	StatusIdentical SyncStatus = iota

	// StatusMerged - three-way merge resolved clean and the repo copy was updated
	StatusMerged

	// StatusOverwritten - repo copy replaced with the local file (overwrite mode)
	StatusOverwritten

	// StatusConflicted - merge produced conflict markers; repo untouched
	StatusConflicted

	// StatusSkippedBinary - binary candidates are never content-synced
	StatusSkippedBinary

	// StatusSkippedMissing - the local path vanished between discovery
	// and processing
	StatusSkippedMissing

	// StatusFailed - candidate-scoped error; repo untouched, pass continued
	StatusFailed
)

func (s SyncStatus) String() string {
	switch s {
	case StatusMerged:
		return "merged"
	case StatusOverwritten:
		return "overwritten"
	case StatusConflicted:
		return "conflict"
	case StatusSkippedBinary:
		return "skipped (binary)"
	case StatusSkippedMissing:
		return "skipped (missing)"
	case StatusFailed:
		return "failed"
	default:
		return "identical"
	}
}

// CandidateResult is the per-candidate outcome reported in the summary
type CandidateResult struct {
	Candidate SyncCandidate
	Status    SyncStatus

	// SideFile is set for conflicts: the merge-with-markers inspection copy
	SideFile string

	// Err is set for StatusFailed
	Err error
}

// Summary aggregates one sync pass for reporting
type Summary struct {
	Results   []CandidateResult
	Touched   int
	Conflicts int
	Failures  int
	Skipped   int
}

// Success reports whether the pass completed with zero conflicts and errors
func (s *Summary) Success() bool {
	return s.Conflicts == 0 && s.Failures == 0
}
