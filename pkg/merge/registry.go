package merge

import (
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// ToolRemedy is the manual-installation instruction shown when no
// three-way merge tool is available.
const ToolRemedy = `no three-way merge tool found; install one of:
  - git (provides git merge-file): apt install git / brew install git
  - GNU diffutils (provides diff3): apt install diffutils / brew install diffutils
or re-run with --overwrite to replace repository files without merging.`

// knownTools maps a tool name to the argument list that merges
// local, ancestor and repo (in that order) onto stdout.
var knownTools = map[string][]string{
	"diff3": {"-m"},
	"git":   {"merge-file", "-p"},
}

// defaultPreference is the lookup order when the config names none.
// git merge-file comes first: it resolves regions changed identically on
// both sides, which diff3 flags as overlaps, and a re-run after a clean
// merge produces exactly such regions.
var defaultPreference = []string{"git", "diff3"}

// ToolRegistry holds the external capabilities resolved once at session
// start. Components consult it through typed checks instead of probing
// the environment at each call site.
type ToolRegistry struct {
	mergeTool string
	mergePath string
}

// ResolveTools probes for a merge tool once, honoring the preference
// order. An empty preference falls back to git then diff3.
func ResolveTools(runner CommandRunner, preference []string) *ToolRegistry {
	logger := logging.GetLogger("merge.registry")

	if len(preference) == 0 {
		preference = defaultPreference
	}

	reg := &ToolRegistry{}
	for _, name := range preference {
		if _, ok := knownTools[name]; !ok {
			logger.Warn().Str("tool", name).Msg("Unknown merge tool in preference list")
			continue
		}
		path, err := runner.LookPath(name)
		if err != nil {
			continue
		}
		reg.mergeTool = name
		reg.mergePath = path
		logger.Debug().Str("tool", name).Str("path", path).Msg("Resolved merge tool")
		return reg
	}

	logger.Debug().Msg("No merge tool available")
	return reg
}

// HasMergeTool reports whether a three-way merge tool was resolved
func (r *ToolRegistry) HasMergeTool() bool {
	return r.mergeTool != ""
}

// MergeToolName returns the resolved tool's name, or "" when absent
func (r *ToolRegistry) MergeToolName() string {
	return r.mergeTool
}

// MergeCommand builds the invocation that merges local, ancestor, and
// repo onto stdout. Only valid when HasMergeTool() is true.
func (r *ToolRegistry) MergeCommand(local, ancestor, repo string) (string, []string) {
	args := append([]string{}, knownTools[r.mergeTool]...)
	args = append(args, local, ancestor, repo)
	return r.mergeTool, args
}
