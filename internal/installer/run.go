package installer

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"setup-station/internal/logger"
)

// Runner executes external commands. Steps never call os/exec directly;
// routing everything through this interface keeps the shell-outs loggable
// and lets tests substitute a recorder.
type Runner interface {
	// Run executes a command, with extra environment entries appended to
	// the process environment. Output is captured and included in the
	// returned error on failure.
	Run(env []string, name string, args ...string) error

	// Output executes a command and returns its combined output.
	Output(name string, args ...string) (string, error)

	// LookPath reports whether an executable is available on PATH.
	LookPath(name string) bool
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(env []string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\noutput: %s", strings.Join(cmd.Args, " "), err, output)
	}
	logger.Debug("[DEBUG] Command output: %s\n", output)
	return nil
}

func (ExecRunner) Output(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%s failed: %w", strings.Join(cmd.Args, " "), err)
	}
	return string(output), nil
}

func (ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
