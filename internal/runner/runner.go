// Package runner executes Go tests through the go tool and turns the
// -json event stream into per-test results. Failing tests are data in the
// summary, not errors: only a run that produced no usable results (build
// breakage, missing tool) is reported as an error.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Request describes one test run.
type Request struct {
	// Root is the directory the go tool runs in.
	Root string
	// Packages limits the run; empty means all packages under Root.
	Packages []string
	// Pattern is passed as -run when non-empty.
	Pattern string
	// ShowOutput attaches captured output to every result instead of only
	// failed ones.
	ShowOutput bool
	// Timeout bounds the whole run; zero means no bound.
	Timeout time.Duration
	// ExtraArgs are appended to the go test invocation verbatim, before the
	// package list.
	ExtraArgs []string
}

// Result is the outcome of a single test.
type Result struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Package string   `json:"package"`
	Status  string   `json:"status"`
	Elapsed float64  `json:"elapsed"`
	Output  []string `json:"output,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Elapsed float64  `json:"elapsed"`
}

// event mirrors one line of the go test -json stream.
type event struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
	Output  string  `json:"Output"`
}

// execCommand is a package-level function variable to allow tests to stub
// process creation.
var execCommand = exec.CommandContext

// Run executes the requested tests and returns the aggregated summary.
func Run(ctx context.Context, req Request) (*Summary, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := execCommand(ctx, "go", buildArgs(req)...)
	cmd.Dir = req.Root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching to go test output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting go test: %w", err)
	}

	sum, perr := parseStream(stdout, req.ShowOutput)
	werr := cmd.Wait()
	if perr != nil {
		return nil, fmt.Errorf("decoding go test event stream: %w", perr)
	}
	if werr != nil {
		var ee *exec.ExitError
		if errors.As(werr, &ee) && sum.Failed > 0 {
			// go test exits non-zero when tests fail; that is data, not a
			// runner failure.
			return sum, nil
		}
		return nil, fmt.Errorf("go test: %w (stderr: %s)", werr, strings.TrimSpace(stderr.String()))
	}
	return sum, nil
}

// buildArgs assembles the go test argument list for a request.
func buildArgs(req Request) []string {
	args := []string{"test", "-json"}
	if req.Pattern != "" {
		args = append(args, "-run", req.Pattern)
	}
	args = append(args, req.ExtraArgs...)
	if len(req.Packages) > 0 {
		args = append(args, req.Packages...)
	} else {
		args = append(args, "./...")
	}
	return args
}

// parseStream decodes a go test -json event stream into a summary. Lines that
// are not JSON events (tool chatter) are skipped.
func parseStream(r io.Reader, showOutput bool) (*Summary, error) {
	type state struct {
		result Result
		output []string
	}
	pending := make(map[string]*state)
	var order []string

	sum := &Summary{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Test == "" {
			// Package-level events carry the per-package wall time.
			if ev.Action == "pass" || ev.Action == "fail" {
				sum.Elapsed += ev.Elapsed
			}
			continue
		}
		key := ev.Package + "::" + ev.Test
		st, ok := pending[key]
		if !ok {
			st = &state{result: Result{
				ID:      key,
				Name:    ev.Test,
				Package: ev.Package,
			}}
			pending[key] = st
			order = append(order, key)
		}
		switch ev.Action {
		case "output":
			st.output = append(st.output, strings.TrimRight(ev.Output, "\n"))
		case "pass", "fail", "skip":
			st.result.Status = ev.Action
			st.result.Elapsed = ev.Elapsed
			if showOutput || ev.Action == "fail" {
				st.result.Output = st.output
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, key := range order {
		st := pending[key]
		if st.result.Status == "" {
			// The stream ended without a verdict (crash, timeout kill).
			st.result.Status = "fail"
			st.result.Output = st.output
		}
		switch st.result.Status {
		case "pass":
			sum.Passed++
		case "fail":
			sum.Failed++
		case "skip":
			sum.Skipped++
		}
		sum.Results = append(sum.Results, st.result)
	}
	return sum, nil
}
