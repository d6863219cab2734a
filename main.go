// Package main provides the entry point for the ci-driver CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sgaunet/bullets"
	"github.com/spf13/cobra"

	"github.com/sgaunet/ci-driver/internal/cicontext"
	"github.com/sgaunet/ci-driver/internal/logger"
	"github.com/sgaunet/ci-driver/internal/security"
	"github.com/sgaunet/ci-driver/pkg/config"
	"github.com/sgaunet/ci-driver/pkg/platform"
)

var (
	logLevel string
	repoURL  string
	log      *bullets.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ci-driver",
	Short: "Forge driver for CI/CD automation",
	Long: `ci-driver exposes a uniform set of operations against one forge's API:
self-hosted runner lifecycle, pull request auto-merge with graceful
degradation, workflow re-runs and job/runner correlation.`,
	SilenceUsage: true,
}

var runnerCmd = &cobra.Command{
	Use:   "runner",
	Short: "Manage self-hosted runners",
}

var runnerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Provision, register and launch a self-hosted runner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, cfg, err := setup()
		if err != nil {
			return err
		}

		opts := platform.RunnerOptions{
			Workdir: cfg.Runner.Workdir,
			Name:    cfg.Runner.Name,
			Labels:  cfg.Runner.Labels,
			Single:  cfg.Runner.Single,
		}
		applyRunnerFlags(cmd, &opts)

		proc, err := provider.StartRunner(cmd.Context(), opts)
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("Runner launched (pid %d, workdir %s)", proc.PID, proc.Workdir))
		return nil
	},
}

var runnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List self-hosted runners",
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, _, err := setup()
		if err != nil {
			return err
		}

		runners, err := provider.ListRunners(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range runners {
			state := "offline"
			if r.Online {
				state = "online"
			}
			fmt.Printf("%d\t%s\t%s\tbusy=%v\t%s\n", r.ID, r.Name, state, r.Busy, strings.Join(r.Labels, ","))
		}
		return nil
	},
}

var runnerRemoveCmd = &cobra.Command{
	Use:   "remove <runner-id>",
	Short: "Unregister a self-hosted runner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid runner id: %w", err)
		}

		provider, _, err := setup()
		if err != nil {
			return err
		}
		return provider.UnregisterRunner(cmd.Context(), id)
	},
}

var prMergeCmd = &cobra.Command{
	Use:   "merge <pr-number>",
	Short: "Enable auto-merge on a pull request, falling back to immediate merge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid pull request number: %w", err)
		}

		provider, _, err := setup()
		if err != nil {
			return err
		}

		mode, _ := cmd.Flags().GetString("mode")
		message, _ := cmd.Flags().GetString("message")
		base, _ := cmd.Flags().GetString("base")

		return provider.MergePullRequest(cmd.Context(), platform.MergeParams{
			Number:  number,
			Mode:    mode,
			Message: message,
			Base:    base,
		})
	},
}

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Manage pull requests",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Control workflow runs",
}

var runRerunCmd = &cobra.Command{
	Use:   "rerun <run-id>",
	Short: "Re-trigger a workflow run unless it is already running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id: %w", err)
		}

		provider, _, err := setup()
		if err != nil {
			return err
		}
		return provider.RerunRun(cmd.Context(), runID)
	},
}

var runRestartJobCmd = &cobra.Command{
	Use:   "restart-job <job-id>",
	Short: "Best-effort re-trigger of the run owning a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}

		provider, _, err := setup()
		if err != nil {
			return err
		}

		result, err := provider.RestartJob(cmd.Context(), jobID)
		if err != nil {
			return err
		}
		if result.Err != nil {
			log.Warn(fmt.Sprintf("Restart attempted but failed: %s", security.SanitizeString(result.Err.Error())))
		}
		return nil
	},
}

var gitConfigCmd = &cobra.Command{
	Use:   "git-config",
	Short: "Print the git remote reconfiguration commands for this forge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, _, err := setup()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("user-name")
		email, _ := cmd.Flags().GetString("user-email")

		commands, err := provider.RemoteSetupCommands(name, email)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(commands, "\n"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "",
		"Set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&repoURL, "repo", "",
		"Repository or organization URL (defaults to config, then ambient CI context)")

	runnerStartCmd.Flags().String("workdir", "", "Runner working directory")
	runnerStartCmd.Flags().String("name", "", "Runner display name")
	runnerStartCmd.Flags().StringSlice("labels", nil, "Runner labels")
	runnerStartCmd.Flags().Bool("single", false, "Ephemeral mode: run one job, then exit")

	prMergeCmd.Flags().String("mode", "merge", "Merge mode (merge, squash, rebase)")
	prMergeCmd.Flags().String("message", "", "Merge commit message (headline, blank line, body)")
	prMergeCmd.Flags().String("base", "", "Target base branch, used for capability diagnosis")

	gitConfigCmd.Flags().String("user-name", "ci-driver", "Commit author name")
	gitConfigCmd.Flags().String("user-email", "ci-driver@users.noreply.github.com", "Commit author email")

	runnerCmd.AddCommand(runnerStartCmd, runnerListCmd, runnerRemoveCmd)
	prCmd.AddCommand(prMergeCmd)
	runCmd.AddCommand(runRerunCmd, runRestartJobCmd)
	rootCmd.AddCommand(runnerCmd, prCmd, runCmd, gitConfigCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", security.SanitizeString(err.Error()))
		os.Exit(1)
	}
}

// setup loads configuration, builds the ambient CI context once, and
// constructs the provider for the target forge.
func setup() (platform.Provider, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if repoURL != "" {
		cfg.Repository = repoURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log = logger.NewLogger(cfg.LogLevel)

	ci := cicontext.FromEnv()
	provider, err := platform.NewProvider(platform.KindGitHub, cfg, ci, log)
	if err != nil {
		return nil, nil, err
	}
	return provider, cfg, nil
}

func applyRunnerFlags(cmd *cobra.Command, opts *platform.RunnerOptions) {
	if v, _ := cmd.Flags().GetString("workdir"); v != "" {
		opts.Workdir = v
	}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		opts.Name = v
	}
	if v, _ := cmd.Flags().GetStringSlice("labels"); len(v) > 0 {
		opts.Labels = v
	}
	if v, _ := cmd.Flags().GetBool("single"); v {
		opts.Single = true
	}
}
