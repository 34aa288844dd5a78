package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/testing-tools/adapter/internal/adapter"
)

var (
	discoverFormat string
	discoverOut    string
	discoverOutDir string
	discoverIgnore string
	discoverPretty bool
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "", "Report format: one of json, table, md (default from config, json otherwise)")
	discoverCmd.Flags().StringVar(&discoverOut, "out", "", "Report filename; when omitted the report goes to stdout. Use with --out-dir to control directory")
	discoverCmd.Flags().StringVar(&discoverOutDir, "out-dir", "", "Directory where the report is written; a relative --out is placed inside it")
	discoverCmd.Flags().StringVar(&discoverIgnore, "ignore", "", "Comma-separated list of directory names to skip")
	discoverCmd.Flags().BoolVar(&discoverPretty, "pretty", false, "Indent JSON output")
}

var discoverCmd = &cobra.Command{
	Use:   "discover [tool] [flags] [-- toolargs...]",
	Short: "Discover the workspace's test cases",
	Long: `Enumerates the test cases of the workspace with the named tool (gotest when
omitted) and reports them. Everything after -- is handed to the tool untouched.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure flags don't leak between test runs/executions by resetting at exit.
		defer resetFlags(cmd, map[string]string{
			"format": "", "out": "", "out-dir": "", "ignore": "", "pretty": "false",
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
		outPath, err := resolveReportPath(outName, od, format, "tests")
		if err != nil {
			return err
		}

		ignoreFlag, _ := cmd.Flags().GetString("ignore")
		ignore := joinIgnores(cfg.Ignore, ignoreFlag)

		pretty, _ := cmd.Flags().GetBool("pretty")
		r, _ := cmd.Flags().GetString("root")

		subargs := adapter.Options{
			"root":   r,
			"format": format,
			"out":    outPath,
			"pretty": strconv.FormatBool(pretty),
			"ignore": ignore,
		}
		toolargs = append(append([]string{}, cfg.ToolArgs[tool]...), toolargs...)

		if err := adapter.Main(cmd.Context(), tool, "discover", subargs, toolargs); err != nil {
			return err
		}
		if outPath != "" {
			fmt.Printf("Discovery report written to %s\n", outPath)
		}
		return nil
	},
}

// splitToolArgs separates the optional tool name from pass-through arguments.
// Everything after -- belongs to the tool and is not interpreted here.
func splitToolArgs(cmd *cobra.Command, args []string) (string, []string, error) {
	pos := args
	var rest []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		pos = args[:dash]
		rest = args[dash:]
	}
	if len(pos) > 1 {
		return "", nil, fmt.Errorf("at most one tool may be named, got %d: %s", len(pos), strings.Join(pos, " "))
	}
	tool := ""
	if len(pos) == 1 {
		tool = pos[0]
	}
	return tool, rest, nil
}

// normalizeFormat validates a --format value, substituting the configured
// default for an empty one.
func normalizeFormat(raw, def string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(raw))
	if f == "" {
		f = def
	}
	switch f {
	case "json", "table", "md":
		return f, nil
	default:
		return "", errors.New("invalid --format value; must be one of: json, table, md")
	}
}

// resolveReportPath determines where a report file goes. An empty result means
// stdout. When only --out-dir is given, a default filename derived from the
// format and base name is used. Table output is terminal-only.
func resolveReportPath(outName, outDir, format, base string) (string, error) {
	outName = strings.TrimSpace(outName)
	if outName == "" && outDir == "" {
		return "", nil
	}
	if format == "table" {
		return "", errors.New("table format writes to the terminal; use json or md with --out")
	}
	if outName == "" {
		outName = base + "." + format
	}
	path := outName
	if !filepath.IsAbs(outName) && outDir != "" {
		path = filepath.Join(outDir, outName)
	}
	if err := ensureParentDir(path); err != nil {
		return "", err
	}
	return path, nil
}

// ensureParentDir makes sure the directory for the given file path exists.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// joinIgnores merges configured ignores with the comma-separated flag value
// into one comma-separated list.
func joinIgnores(configured []string, flag string) string {
	parts := append([]string{}, configured...)
	for _, p := range strings.Split(flag, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

// resetFlags clears Changed and restores defaults so package-level cobra
// commands behave the same across repeated executions.
func resetFlags(cmd *cobra.Command, defaults map[string]string) {
	for name, def := range defaults {
		if f := cmd.Flags().Lookup(name); f != nil {
			f.Changed = false
			_ = f.Value.Set(def)
		}
	}
}
