// Package adapter dispatches parsed invocations to a registered test tool
// and writes the resulting report. The contract mirrors how the adapter is
// driven: a tool identifier, a command identifier, a mapping of sub-arguments
// and an ordered list of pass-through tool arguments, consumed exactly as
// given.
package adapter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/testing-tools/adapter/internal/discovery"
	"github.com/testing-tools/adapter/internal/report"
	"github.com/testing-tools/adapter/internal/runner"
)

// Options is the sub-argument mapping handed to Main.
type Options map[string]string

// String returns the value for key, or def when unset or empty.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok && v != "" {
		return v
	}
	return def
}

// Bool returns the value for key interpreted as a boolean; unset or
// unparsable values yield false.
func (o Options) Bool(key string) bool {
	v, err := strconv.ParseBool(o[key])
	return err == nil && v
}

// Duration returns the value for key interpreted as a duration; unset or
// unparsable values yield zero.
func (o Options) Duration(key string) time.Duration {
	d, err := time.ParseDuration(o[key])
	if err != nil {
		return 0
	}
	return d
}

// DiscoverRequest carries everything a tool needs to enumerate test cases.
type DiscoverRequest struct {
	Root     string
	Ignore   []string
	ToolArgs []string
}

// RunRequest carries everything a tool needs to execute test cases.
type RunRequest struct {
	Root       string
	Pattern    string
	ShowOutput bool
	Timeout    time.Duration
	ToolArgs   []string
}

// Tool is one test framework the adapter can drive.
type Tool interface {
	Name() string
	Discover(ctx context.Context, req DiscoverRequest) ([]discovery.Item, error)
	Run(ctx context.Context, req RunRequest) (*runner.Summary, error)
}

var (
	regMu sync.RWMutex
	tools = make(map[string]Tool)
)

// Register makes a tool available for dispatch. Later registrations under
// the same name replace earlier ones.
func Register(t Tool) {
	regMu.Lock()
	defer regMu.Unlock()
	tools[t.Name()] = t
}

// Lookup resolves a tool by name.
func Lookup(name string) (Tool, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	t, ok := tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q (known: %s)", name, strings.Join(sortedNames(), ", "))
	}
	return t, nil
}

// Names lists registered tool names in stable order.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	return sortedNames()
}

// sortedNames expects the registry lock to be held.
func sortedNames() []string {
	names := make([]string, 0, len(tools))
	for n := range tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// stdout is swappable in tests; reports without an --out path go here.
var stdout io.Writer = os.Stdout

// Main dispatches one parsed invocation: resolve the tool, execute the
// command, write the report. The four values arrive from the command-line
// parser and pass through unmodified.
func Main(ctx context.Context, tool, command string, subargs Options, toolargs []string) error {
	t, err := Lookup(tool)
	if err != nil {
		return err
	}

	root := subargs.String("root", ".")
	format := subargs.String("format", "json")
	out := subargs["out"]
	pretty := subargs.Bool("pretty")

	switch command {
	case "discover":
		items, err := t.Discover(ctx, DiscoverRequest{
			Root:     root,
			Ignore:   splitCSV(subargs["ignore"]),
			ToolArgs: toolargs,
		})
		if err != nil {
			return fmt.Errorf("discovering with %s: %w", tool, err)
		}
		return writeDiscovery(items, format, out, pretty)
	case "run":
		sum, err := t.Run(ctx, RunRequest{
			Root:       root,
			Pattern:    subargs["run"],
			ShowOutput: subargs.Bool("show_output"),
			Timeout:    subargs.Duration("timeout"),
			ToolArgs:   toolargs,
		})
		if err != nil {
			return fmt.Errorf("running with %s: %w", tool, err)
		}
		return writeRun(sum, format, out, pretty)
	default:
		return fmt.Errorf("unknown command %q; must be one of: discover, run", command)
	}
}

func writeDiscovery(items []discovery.Item, format, out string, pretty bool) error {
	if out == "" {
		switch format {
		case "table":
			report.RenderTable(stdout, items)
			return nil
		case "md":
			return report.WriteMarkdown(stdout, items)
		default:
			return report.WriteJSON(stdout, items, pretty)
		}
	}
	switch format {
	case "md":
		return report.SaveMarkdown(items, out)
	default:
		return report.SaveJSON(items, out, pretty)
	}
}

func writeRun(sum *runner.Summary, format, out string, pretty bool) error {
	if out == "" {
		switch format {
		case "table":
			report.RenderRunTable(stdout, sum)
			return nil
		case "md":
			return report.WriteRunMarkdown(stdout, sum)
		default:
			return report.WriteRunJSON(stdout, sum, pretty)
		}
	}
	switch format {
	case "md":
		return report.SaveRunMarkdown(sum, out)
	default:
		return report.SaveRunJSON(sum, out, pretty)
	}
}

// splitCSV parses a comma-separated list into a slice, trimming spaces.
func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
