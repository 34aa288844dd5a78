package adapter

import (
	"context"

	"github.com/testing-tools/adapter/internal/discovery"
	"github.com/testing-tools/adapter/internal/runner"
)

// goTest drives standard go test suites. It is the built-in tool.
type goTest struct{}

func (goTest) Name() string { return "gotest" }

// Discover enumerates test functions by parsing the workspace's test files.
// Pass-through arguments have no meaning for static discovery and are ignored.
func (goTest) Discover(_ context.Context, req DiscoverRequest) ([]discovery.Item, error) {
	return discovery.Scan(req.Root, req.Ignore)
}

// Run executes the workspace's tests through the go tool.
func (goTest) Run(ctx context.Context, req RunRequest) (*runner.Summary, error) {
	return runner.Run(ctx, runner.Request{
		Root:       req.Root,
		Pattern:    req.Pattern,
		ShowOutput: req.ShowOutput,
		Timeout:    req.Timeout,
		ExtraArgs:  req.ToolArgs,
	})
}

func init() {
	Register(goTest{})
}
