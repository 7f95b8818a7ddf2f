package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var ephemeral bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "resume-studio",
	Short: "Write resumes, cover letters and interview prep with AI help",
	Long: `resume-studio keeps one resume session on disk and lets you edit it with
help from Claude: draft summaries and job descriptions, rewrite your own notes,
stream cover letters, and check the resume against ATS rules or a job posting.

When you rewrite AI text, resume-studio learns what you changed and feeds that
preference into later suggestions. Every edit can be undone.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(getVerbose())
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.resume-studio/config.json)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory and discard it on exit")
}

// setupLogging sends diagnostics to stderr. Debug detail is shown only with --verbose.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// getEphemeral returns the ephemeral flag value.
func getEphemeral() (result bool) {
	result = ephemeral
	return result
}
