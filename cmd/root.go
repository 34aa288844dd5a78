package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/testing-tools/adapter/internal/config"
	"github.com/testing-tools/adapter/internal/logger"
)

var (
	rootDir    string
	configPath string
	logLevel   string

	// cfg is loaded once per invocation by the persistent pre-run hook.
	cfg *config.Config
)

// rootCmd is the base command executed when no subcommand is provided.
var rootCmd = &cobra.Command{
	Use:   "adapter",
	Short: "Discover and run test cases for an external tool",
	Long: `adapter enumerates the test cases of a workspace and executes them on
request, reporting results as JSON on stdout for the invoking tool (or as a
table or markdown for humans). The workspace root defaults to the parent of
the directory containing this executable, so the adapter behaves the same no
matter which working directory it is launched from.`,
	// no Run function here; 'discover' and 'run' handle execution
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(logLevel); err != nil {
			return err
		}
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.LoadFromRoot(rootDir)
		}
		return err
	},
}

// Execute runs the CLI. Called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", defaultRoot(), "Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path; defaults to <root>/"+config.FileName+" when present")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log verbosity: one of error, warn, info, debug (logs go to stderr)")
}

// defaultRoot computes the workspace root used when --root is not given: the
// parent of the directory containing the running executable. Falls back to
// the working directory when the executable path cannot be determined.
func defaultRoot() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return parentRoot(exe)
}

// parentRoot resolves exe to an absolute path and returns the parent of its
// containing directory. The result does not depend on the working directory
// the process was launched from.
func parentRoot(exe string) string {
	abs, err := filepath.Abs(exe)
	if err != nil {
		abs = exe
	}
	return filepath.Dir(filepath.Dir(abs))
}
