package main

import (
	"fmt"
	"io"

	"github.com/justatest/cmdcheck/pkg/exec"
	"github.com/justatest/cmdcheck/pkg/fixture"
	"github.com/justatest/cmdcheck/pkg/suite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exitCodeError carries a process exit code out of a command
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cmdcheck",
		Short:         "Run commands and check their exit codes",
		Long:          "cmdcheck runs external commands, captures their output and compares the exit code against an expectation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(runCmd(logger))
	rootCmd.AddCommand(checkCmd(logger))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func runCmd(logger *zap.Logger) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "run [--dir DIR] -- PROGRAM [ARGS...]",
		Short: "Run a single command and exit with its exit code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := exec.NewRealCommandRunner(logger)
			result, err := runner.Run(cmd.Context(), exec.NewInvocation(dir, args...))
			if err != nil {
				logger.Error("Command could not be launched", zap.Error(err))
				return err
			}

			_, _ = io.WriteString(cmd.OutOrStdout(), result.Stdout)
			_, _ = io.WriteString(cmd.ErrOrStderr(), result.Stderr)

			if !result.Success() {
				return &exitCodeError{code: result.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", "", "working directory for the command")
	return cmd
}

func checkCmd(logger *zap.Logger) *cobra.Command {
	config := suite.LoadConfigFromEnv()

	cmd := &cobra.Command{
		Use:   "check SUITE.yaml",
		Short: "Run a suite of checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite.LoadSuite(args[0])
			if err != nil {
				logger.Error("Failed to load suite", zap.Error(err))
				return err
			}

			runner := suite.NewRunner(logger, config, exec.NewRealCommandRunner(logger), fixture.NewRegistry(logger))
			report, err := runner.Execute(cmd.Context(), s)
			if err != nil {
				logger.Error("Suite execution failed", zap.Error(err))
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&config.ResultsPath, "results", config.ResultsPath, "directory to write per-check results to")
	cmd.Flags().StringVar(&config.DefaultFixture, "fixture", config.DefaultFixture, "fixture for checks without dir or fixture")
	cmd.Flags().BoolVar(&config.FailFast, "fail-fast", config.FailFast, "stop at the first failing check")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func printReport(w io.Writer, report *suite.Report) {
	for _, o := range report.Outcomes {
		fmt.Fprintf(w, "%-6s %s\n", o.Status, o.Check)
		for _, m := range o.Mismatches {
			fmt.Fprintf(w, "       %s\n", m)
		}
		if o.Error != "" {
			fmt.Fprintf(w, "       %s\n", o.Error)
		}
	}
	fmt.Fprintf(w, "%d passed, %d failed, %d xfailed, %d xpassed, %d errored\n",
		report.Passed, report.Failed, report.XFailed, report.XPassed, report.Errored)
}
