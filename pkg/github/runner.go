package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sgaunet/bullets"

	"github.com/sgaunet/ci-driver/internal/security"
	"github.com/sgaunet/ci-driver/pkg/provision"
)

const (
	configScript = "./config.sh"
	runScript    = "./run.sh"
	workSubdir   = "_work"
)

// RunnerManager provisions, starts, enumerates and tears down self-hosted
// execution agents. Provisioning is separated from starting so that
// restarts after a crash reuse an already-downloaded binary; the marker-file
// check is a deliberately cheap, non-networked fast path.
type RunnerManager struct {
	api     RunnerAPI
	fetcher provision.Fetcher
	exec    CommandRunner
	log     *bullets.Logger

	// targetURL is the repository or organization URL the runner registers
	// against.
	targetURL string
}

// NewRunnerManager creates a runner lifecycle manager. fetcher and runner
// may be nil, in which case the HTTP fetcher and real process execution are
// used.
func NewRunnerManager(api RunnerAPI, targetURL string, log *bullets.Logger) *RunnerManager {
	return &RunnerManager{
		api:       api,
		fetcher:   &provision.HTTPFetcher{},
		exec:      osCommandRunner{},
		log:       log,
		targetURL: targetURL,
	}
}

// SetFetcher injects the archive fetch-and-unpack capability.
func (m *RunnerManager) SetFetcher(fetcher provision.Fetcher) {
	m.fetcher = fetcher
}

// SetCommandRunner injects the local process execution capability.
func (m *RunnerManager) SetCommandRunner(runner CommandRunner) {
	m.exec = runner
}

// Provision makes sure the runner binary is unpacked and permissioned in
// workdir. Skipped entirely when the configuration marker exists, regardless
// of version drift.
func (m *RunnerManager) Provision(ctx context.Context, workdir string) error {
	if provision.Configured(workdir) {
		m.log.Debug("Runner already configured, skipping provisioning")
		return nil
	}
	m.log.Info("Provisioning runner binary into " + workdir)
	return provision.Ensure(ctx, workdir, m.api, m.fetcher)
}

// Start provisions the runner binary, registers the agent with a fresh
// registration token unless the workdir already holds a configured runner,
// and launches the agent as a detached long-lived process. The caller owns
// the process lifetime; the manager does not supervise or restart it.
func (m *RunnerManager) Start(ctx context.Context, opts RunnerOptions) (*RunnerProcess, error) {
	if err := m.Provision(ctx, opts.Workdir); err != nil {
		return nil, err
	}

	configured := provision.Configured(opts.Workdir)
	if !configured {
		if err := m.configure(ctx, opts); err != nil {
			return nil, err
		}
	}

	m.log.Info("Launching runner agent")
	pid, err := m.exec.StartDetached(opts.Workdir, runScript)
	if err != nil {
		return nil, fmt.Errorf("failed to launch runner agent: %w", err)
	}

	return &RunnerProcess{
		Reused:  configured,
		PID:     pid,
		Workdir: opts.Workdir,
	}, nil
}

// configure registers the agent non-interactively with a fresh registration
// token. The runner's own tooling writes the configuration marker on
// success, which is what makes later provisioning idempotent.
func (m *RunnerManager) configure(ctx context.Context, opts RunnerOptions) error {
	token, err := m.api.CreateRegistrationToken(ctx)
	if err != nil {
		return err
	}

	args := []string{
		"--unattended",
		"--url", m.targetURL,
		"--token", token,
		"--name", opts.Name,
		"--labels", strings.Join(opts.Labels, ","),
		"--work", workSubdir,
	}
	if opts.Single {
		args = append(args, "--ephemeral")
	}

	m.log.Info("Registering runner " + opts.Name)
	if err := m.exec.Run(ctx, opts.Workdir, configScript, args...); err != nil {
		return fmt.Errorf("failed to configure runner: %w", err)
	}
	return nil
}

// List enumerates all self-hosted runners at the resolved scope.
func (m *RunnerManager) List(ctx context.Context) ([]Runner, error) {
	return m.api.ListRunners(ctx)
}

// Get fetches one runner by identifier.
func (m *RunnerManager) Get(ctx context.Context, id int64) (*Runner, error) {
	return m.api.GetRunner(ctx, id)
}

// Unregister deletes the runner registration. Not idempotent at the
// provider level: removing an absent runner surfaces the provider error.
func (m *RunnerManager) Unregister(ctx context.Context, id int64) error {
	return m.api.RemoveRunner(ctx, id)
}

// RegistrationToken requests a short-lived registration token at the
// resolved scope.
func (m *RunnerManager) RegistrationToken(ctx context.Context) (string, error) {
	return m.api.CreateRegistrationToken(ctx)
}

// osCommandRunner executes real processes.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		// The configure invocation carries the registration token in its
		// arguments; the script may echo them back on failure.
		return fmt.Errorf("%s: %w: %s", filepath.Base(name), err,
			security.SanitizeString(strings.TrimSpace(string(output))))
	}
	return nil
}

func (osCommandRunner) StartDetached(dir, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// New session so the agent outlives this process.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}

var _ CommandRunner = osCommandRunner{}
