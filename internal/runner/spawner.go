package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"

	"github.com/Parkside-Labs/evalgate/internal/registry"
)

// Result is everything a finished process leaves behind. Stdout and stderr
// are captured in full rather than streamed; callers only see them after
// the run ends.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error // non-exit failures (wait errors, I/O)
}

// Process is a spawned evaluation engine. It satisfies registry.Process so
// the registry can kill it, and adds Wait for the awaiting goroutine.
type Process interface {
	registry.Process
	// Wait blocks until the process exits and returns its captured output.
	// Safe to call exactly once.
	Wait() Result
}

// Spawner starts engine processes. The interface exists so tests can
// substitute a fake without touching the orchestration logic.
type Spawner interface {
	Spawn(ctx context.Context, name string, args ...string) (Process, error)
}

// execSpawner is the real implementation over os/exec.
type execSpawner struct{}

// NewSpawner returns the default Spawner backed by os/exec.
func NewSpawner() Spawner {
	return execSpawner{}
}

func (execSpawner) Spawn(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	registry.ConfigureCommand(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdout: &stdout, stderr: &stderr}, nil
}

type execProcess struct {
	cmd      *exec.Cmd
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	killOnce sync.Once
	killErr  error
}

func (p *execProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	p.killOnce.Do(func() {
		p.killErr = registry.TerminateCommand(p.cmd)
	})
	return p.killErr
}

func (p *execProcess) Wait() Result {
	err := p.cmd.Wait()
	res := Result{
		ExitCode: 0,
		Stdout:   p.stdout.String(),
		Stderr:   p.stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Err = err
		}
	}
	return res
}
