package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/testing-tools/adapter/internal/adapter"
)

var (
	runFormat     string
	runOut        string
	runOutDir     string
	runPattern    string
	runPretty     bool
	runShowOutput bool
	runTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runFormat, "format", "", "Report format: one of json, table, md (default from config, json otherwise)")
	runCmd.Flags().StringVar(&runOut, "out", "", "Report filename; when omitted the report goes to stdout. Use with --out-dir to control directory")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "Directory where the report is written; a relative --out is placed inside it")
	runCmd.Flags().StringVar(&runPattern, "run", "", "Regexp selecting the tests to execute")
	runCmd.Flags().BoolVar(&runPretty, "pretty", false, "Indent JSON output")
	runCmd.Flags().BoolVar(&runShowOutput, "show-output", false, "Attach captured test output to every result, not just failed ones")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Bound the whole run (e.g. 90s, 5m); 0 means no bound")
}

var runCmd = &cobra.Command{
	Use:   "run [tool] [flags] [-- toolargs...]",
	Short: "Execute the workspace's tests and report results",
	Long: `Executes the workspace's tests with the named tool (gotest when omitted)
and reports per-test results. Failing tests appear in the report; they do not
fail the adapter itself. Everything after -- is handed to the tool untouched.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer resetFlags(cmd, map[string]string{
			"format": "", "out": "", "out-dir": "", "run": "",
			"pretty": "false", "show-output": "false", "timeout": "0s",
		})

		tool, toolargs, err := splitToolArgs(cmd, args)
		if err != nil {
			return err
		}
		if tool == "" {
			tool = cfg.DefaultTool
		}

		rawFormat, _ := cmd.Flags().GetString("format")
		format, err := normalizeFormat(rawFormat, cfg.DefaultFormat)
		if err != nil {
			return err
		}

		outName, _ := cmd.Flags().GetString("out")
		od, _ := cmd.Flags().GetString("out-dir")
		outPath, err := resolveReportPath(outName, od, format, "results")
		if err != nil {
			return err
		}

		pattern, _ := cmd.Flags().GetString("run")
		pretty, _ := cmd.Flags().GetBool("pretty")
		show, _ := cmd.Flags().GetBool("show-output")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		r, _ := cmd.Flags().GetString("root")

		if !show {
			show = cfg.ShowOutput
		}
		if timeout == 0 && cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}

		subargs := adapter.Options{
			"root":        r,
			"format":      format,
			"out":         outPath,
			"pretty":      strconv.FormatBool(pretty),
			"run":         pattern,
			"show_output": strconv.FormatBool(show),
			"timeout":     timeout.String(),
		}
		toolargs = append(append([]string{}, cfg.ToolArgs[tool]...), toolargs...)

		if err := adapter.Main(cmd.Context(), tool, "run", subargs, toolargs); err != nil {
			return err
		}
		if outPath != "" {
			fmt.Printf("Run report written to %s\n", outPath)
		}
		return nil
	},
}
