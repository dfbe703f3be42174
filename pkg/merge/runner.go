package merge

import (
	"os/exec"

	"github.com/arthur-debert/dotsync/pkg/logging"
)

// CommandRunner executes external commands. The indirection exists so
// tests can stand in for the merge tool without one being installed.
type CommandRunner interface {
	// LookPath reports where a tool lives, or an error if it is absent
	LookPath(name string) (string, error)

	// Output runs a command and returns its stdout and exit code.
	// err is non-nil only when the command could not be run at all.
	Output(name string, args ...string) (stdout []byte, exitCode int, err error)
}

// execRunner implements CommandRunner with os/exec
type execRunner struct{}

// NewRunner creates the real CommandRunner
func NewRunner() CommandRunner {
	return &execRunner{}
}

func (r *execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *execRunner) Output(name string, args ...string) ([]byte, int, error) {
	logging.LogCommand(name, args)

	cmd := exec.Command(name, args...)
	stdout, err := cmd.Output()
	if err != nil {
		// Non-zero exit still produces usable stdout (diff3 exits 1
		// on conflicts); only a failure to run is an error here
		if exitErr, ok := err.(*exec.ExitError); ok {
			return stdout, exitErr.ExitCode(), nil
		}
		return nil, -1, err
	}
	return stdout, 0, nil
}
