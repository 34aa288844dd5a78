package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/testing-tools/adapter/internal/runner"
)

func TestWriteMarkdown_StructureAndContent(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleItems()); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# test discovery report",
		"## Summary",
		"- Total: 3",
		"- benchmark: 1 (33.3%)",
		"- test: 2 (66.7%)",
		"## Tests",
		"| Package | Name | Kind | File | Line |",
		"| . | TestA | test | a_test.go | 5 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}

func TestRenderTable_IncludesSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sampleItems())
	out := buf.String()
	for _, want := range []string{"TestA", "BenchmarkA", "Summary:", "Total: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q\n%s", want, out)
		}
	}
}

func TestWriteRunMarkdown(t *testing.T) {
	sum := &runner.Summary{
		Results: []runner.Result{
			{Name: "TestX", Package: "p", Status: "pass", Elapsed: 0.5},
			{Name: "TestY", Package: "p", Status: "fail", Elapsed: 0.25},
		},
		Passed:  1,
		Failed:  1,
		Elapsed: 0.75,
	}
	var buf bytes.Buffer
	if err := WriteRunMarkdown(&buf, sum); err != nil {
		t.Fatalf("write run markdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# test run report",
		"- Passed: 1",
		"- Failed: 1",
		"| p | TestY | fail | 0.250s |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("run markdown missing %q\n%s", want, out)
		}
	}
}

func TestRenderRunTable(t *testing.T) {
	sum := &runner.Summary{
		Results: []runner.Result{{Name: "TestX", Package: "p", Status: "skip"}},
		Skipped: 1,
	}
	var buf bytes.Buffer
	RenderRunTable(&buf, sum)
	out := buf.String()
	for _, want := range []string{"TestX", "skip", "Skipped: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("run table missing %q\n%s", want, out)
		}
	}
}
