package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testing-tools/adapter/internal/adapter"
	"github.com/testing-tools/adapter/internal/runner"
)

func TestRun_Command_JSONOutput(t *testing.T) {
	stub := &cliStubTool{
		name: "stub-cli-run",
		sum: &runner.Summary{
			Results: []runner.Result{{ID: "p::TestX", Name: "TestX", Package: "p", Status: "pass", Elapsed: 0.01}},
			Passed:  1,
		},
	}
	adapter.Register(stub)

	tmp := t.TempDir()
	out := filepath.Join(tmp, "results.json")
	rootCmd.SetArgs([]string{"run", "stub-cli-run", "--root", tmp, "--out", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var parsed runner.Summary
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid json: %v\ncontent: %s", err, string(data))
	}
	if parsed.Passed != 1 || len(parsed.Results) != 1 {
		t.Fatalf("unexpected summary: %+v", parsed)
	}
}

func TestRun_Command_FlagsReachTheTool(t *testing.T) {
	stub := &cliStubTool{name: "stub-cli-runflags"}
	adapter.Register(stub)

	tmp := t.TempDir()
	out := filepath.Join(tmp, "results.json")
	rootCmd.SetArgs([]string{
		"run", "stub-cli-runflags",
		"--root", tmp,
		"--run", "^TestX$",
		"--show-output",
		"--timeout", "45s",
		"--out", out,
		"--", "-count=1",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	req := stub.runReq
	if req == nil {
		t.Fatal("stub tool was never invoked")
	}
	if req.Root != tmp || req.Pattern != "^TestX$" || !req.ShowOutput {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", req.Timeout)
	}
	if len(req.ToolArgs) != 1 || req.ToolArgs[0] != "-count=1" {
		t.Errorf("toolargs = %v", req.ToolArgs)
	}
}

func TestRun_Command_ConfigDefaultsApply(t *testing.T) {
	stub := &cliStubTool{name: "stub-cli-runcfg"}
	adapter.Register(stub)

	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".adapter.yaml"), []byte("show_output: true\ntimeout_seconds: 30\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out := filepath.Join(tmp, "results.json")
	rootCmd.SetArgs([]string{"run", "stub-cli-runcfg", "--root", tmp, "--out", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	req := stub.runReq
	if req == nil {
		t.Fatal("stub tool was never invoked")
	}
	if !req.ShowOutput {
		t.Error("expected show_output from config")
	}
	if req.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want config value", req.Timeout)
	}
}

func TestRun_Command_InvalidFormatValue(t *testing.T) {
	tmp := t.TempDir()
	rootCmd.SetArgs([]string{"run", "--root", tmp, "--format", "xml"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error on invalid --format value")
	}
}
