// Package report renders discovery indexes and run summaries in the formats
// the adapter supports: JSON for the invoking tool, table and markdown for
// humans.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/testing-tools/adapter/internal/discovery"
	"github.com/testing-tools/adapter/internal/fsio"
	"github.com/testing-tools/adapter/internal/runner"
)

// Summary holds aggregate statistics over discovered items.
type Summary struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"byKind"`
}

// KindStat provides a stable, presentation-friendly view of per-kind counts.
type KindStat struct {
	Kind    string  `json:"kind"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Data feeds the discovery report writers.
type Data struct {
	Tests     []discovery.Item `json:"tests"`
	Summary   Summary          `json:"summary"`
	KindStats []KindStat       `json:"kindStats"`
}

// Build constructs Summary and KindStats over a sorted copy of items.
func Build(items []discovery.Item) Data {
	counts := make(map[string]int)
	cp := make([]discovery.Item, len(items))
	copy(cp, items)
	for i := range cp {
		counts[string(cp[i].Kind)]++
	}
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].File == cp[j].File {
			return cp[i].Line < cp[j].Line
		}
		return cp[i].File < cp[j].File
	})
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	total := len(cp)
	stats := make([]KindStat, 0, len(kinds))
	for _, k := range kinds {
		c := counts[k]
		var pct float64
		if total > 0 {
			// one decimal precision
			pct = math.Round((float64(c)*100.0/float64(total))*10) / 10
		}
		stats = append(stats, KindStat{Kind: k, Count: c, Percent: pct})
	}
	return Data{
		Tests:     cp,
		Summary:   Summary{Total: total, ByKind: counts},
		KindStats: stats,
	}
}

// WriteJSON writes the discovery report as JSON to w.
func WriteJSON(w io.Writer, items []discovery.Item, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(Build(items))
}

// SaveJSON writes the JSON discovery report to a file using the OS writer.
func SaveJSON(items []discovery.Item, output string, pretty bool) error {
	return SaveJSONWithWriter(items, output, pretty, fsio.OSFileWriter{})
}

// SaveJSONWithWriter allows dependency injection of writers for testing.
func SaveJSONWithWriter(items []discovery.Item, output string, pretty bool, w fsio.FileWriter) error {
	f, err := w.Create(output)
	if err != nil {
		return err
	}
	defer fsio.SafeClose(f, output)
	return WriteJSON(f, items, pretty)
}

// WriteMarkdown writes the discovery report as markdown to w.
func WriteMarkdown(w io.Writer, items []discovery.Item) error {
	data := Build(items)

	var b strings.Builder
	b.WriteString("# test discovery report\n\n")
	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- Total: %d\n", data.Summary.Total))
	for _, ks := range data.KindStats {
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", ks.Kind, ks.Count, ks.Percent))
	}
	b.WriteString("\n")
	b.WriteString("## Tests\n\n")
	b.WriteString("| Package | Name | Kind | File | Line |\n")
	b.WriteString("|---------|------|------|------|-----:|\n")
	for _, it := range data.Tests {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n", it.Package, it.Name, it.Kind, it.File, it.Line))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveMarkdown writes the markdown discovery report to a file.
func SaveMarkdown(items []discovery.Item, output string) error {
	return SaveMarkdownWithWriter(items, output, fsio.OSFileWriter{})
}

// SaveMarkdownWithWriter allows dependency injection of writers for testing.
func SaveMarkdownWithWriter(items []discovery.Item, output string, w fsio.FileWriter) error {
	f, err := w.Create(output)
	if err != nil {
		return err
	}
	defer fsio.SafeClose(f, output)
	return WriteMarkdown(f, items)
}

// RenderTable writes discovered items as a terminal table to w.
func RenderTable(w io.Writer, items []discovery.Item) {
	data := Build(items)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Package", "Name", "Kind", "File", "Line"})
	for _, it := range data.Tests {
		table.Append([]string{
			it.Package,
			it.Name,
			kindColor(it.Kind).Sprint(string(it.Kind)),
			it.File,
			fmt.Sprintf("%d", it.Line),
		})
	}
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.New(color.FgGreen, color.Bold).Sprint("Summary:"))
	fmt.Fprintf(w, "  Total: %d\n", data.Summary.Total)
	for _, ks := range data.KindStats {
		fmt.Fprintf(w, "  %s: %d\n", ks.Kind, ks.Count)
	}
}

func kindColor(k discovery.Kind) *color.Color {
	switch k {
	case discovery.KindTest:
		return color.New(color.FgCyan)
	case discovery.KindSubtest:
		return color.New(color.FgHiCyan)
	case discovery.KindBenchmark:
		return color.New(color.FgYellow)
	case discovery.KindFuzz:
		return color.New(color.FgMagenta)
	case discovery.KindExample:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Reset)
	}
}

// WriteRunJSON writes a run summary as JSON to w.
func WriteRunJSON(w io.Writer, sum *runner.Summary, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(sum)
}

// SaveRunJSON writes the JSON run report to a file.
func SaveRunJSON(sum *runner.Summary, output string, pretty bool) error {
	return SaveRunJSONWithWriter(sum, output, pretty, fsio.OSFileWriter{})
}

// SaveRunJSONWithWriter allows dependency injection of writers for testing.
func SaveRunJSONWithWriter(sum *runner.Summary, output string, pretty bool, w fsio.FileWriter) error {
	f, err := w.Create(output)
	if err != nil {
		return err
	}
	defer fsio.SafeClose(f, output)
	return WriteRunJSON(f, sum, pretty)
}

// WriteRunMarkdown writes a run summary as markdown to w.
func WriteRunMarkdown(w io.Writer, sum *runner.Summary) error {
	var b strings.Builder
	b.WriteString("# test run report\n\n")
	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- Passed: %d\n", sum.Passed))
	b.WriteString(fmt.Sprintf("- Failed: %d\n", sum.Failed))
	b.WriteString(fmt.Sprintf("- Skipped: %d\n", sum.Skipped))
	b.WriteString(fmt.Sprintf("- Elapsed: %.3fs\n", sum.Elapsed))
	b.WriteString("\n")
	b.WriteString("## Results\n\n")
	b.WriteString("| Package | Test | Status | Elapsed |\n")
	b.WriteString("|---------|------|--------|--------:|\n")
	for _, r := range sum.Results {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %.3fs |\n", r.Package, r.Name, r.Status, r.Elapsed))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveRunMarkdown writes the markdown run report to a file.
func SaveRunMarkdown(sum *runner.Summary, output string) error {
	return SaveRunMarkdownWithWriter(sum, output, fsio.OSFileWriter{})
}

// SaveRunMarkdownWithWriter allows dependency injection of writers for testing.
func SaveRunMarkdownWithWriter(sum *runner.Summary, output string, w fsio.FileWriter) error {
	f, err := w.Create(output)
	if err != nil {
		return err
	}
	defer fsio.SafeClose(f, output)
	return WriteRunMarkdown(f, sum)
}

// RenderRunTable writes run results as a terminal table to w, followed by a
// short summary.
func RenderRunTable(w io.Writer, sum *runner.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Package", "Test", "Status", "Elapsed"})
	for _, r := range sum.Results {
		table.Append([]string{
			r.Package,
			r.Name,
			statusColor(r.Status).Sprint(r.Status),
			fmt.Sprintf("%.3fs", r.Elapsed),
		})
	}
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.New(color.FgGreen, color.Bold).Sprint("Summary:"))
	fmt.Fprintf(w, "  Passed: %d\n", sum.Passed)
	fmt.Fprintf(w, "  Failed: %d\n", sum.Failed)
	fmt.Fprintf(w, "  Skipped: %d\n", sum.Skipped)
	fmt.Fprintf(w, "  Elapsed: %.3fs\n", sum.Elapsed)
}

func statusColor(status string) *color.Color {
	switch status {
	case "pass":
		return color.New(color.FgGreen)
	case "fail":
		return color.New(color.FgRed)
	case "skip":
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}
