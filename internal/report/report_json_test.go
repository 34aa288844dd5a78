package report

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/testing-tools/adapter/internal/discovery"
	"github.com/testing-tools/adapter/internal/runner"
)

// --- helper mocks ---

type mockWriteCloser struct {
	bytes.Buffer
}

func (m *mockWriteCloser) Close() error { return nil }

type mockFileWriter struct {
	files map[string]*mockWriteCloser
}

func (m *mockFileWriter) Create(name string) (io.WriteCloser, error) {
	wc := &mockWriteCloser{}
	m.files[name] = wc
	return wc, nil
}

func sampleItems() []discovery.Item {
	return []discovery.Item{
		{ID: ".::TestB", Name: "TestB", Kind: discovery.KindTest, Package: ".", File: "b_test.go", Line: 10},
		{ID: ".::TestA", Name: "TestA", Kind: discovery.KindTest, Package: ".", File: "a_test.go", Line: 5},
		{ID: ".::BenchmarkA", Name: "BenchmarkA", Kind: discovery.KindBenchmark, Package: ".", File: "a_test.go", Line: 12},
	}
}

// --- tests ---

func TestBuild_SortsAndCounts(t *testing.T) {
	data := Build(sampleItems())
	if data.Summary.Total != 3 {
		t.Fatalf("expected total 3, got %d", data.Summary.Total)
	}
	if data.Tests[0].Name != "TestA" || data.Tests[1].Name != "BenchmarkA" || data.Tests[2].Name != "TestB" {
		t.Fatalf("unexpected ordering: %v", data.Tests)
	}
	if data.Summary.ByKind["test"] != 2 || data.Summary.ByKind["benchmark"] != 1 {
		t.Fatalf("unexpected counts: %v", data.Summary.ByKind)
	}
}

func TestBuild_KindStatsRounding(t *testing.T) {
	data := Build(sampleItems())
	// alphabetical: benchmark before test
	if len(data.KindStats) != 2 || data.KindStats[0].Kind != "benchmark" || data.KindStats[1].Kind != "test" {
		t.Fatalf("unexpected kind stats: %v", data.KindStats)
	}
	if data.KindStats[0].Percent != 33.3 {
		t.Errorf("expected 33.3, got %v", data.KindStats[0].Percent)
	}
	if data.KindStats[1].Percent != 66.7 {
		t.Errorf("expected 66.7, got %v", data.KindStats[1].Percent)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	data := Build(nil)
	if data.Summary.Total != 0 || len(data.KindStats) != 0 {
		t.Fatalf("unexpected data for empty input: %+v", data)
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleItems(), true); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var parsed struct {
		Tests   []discovery.Item `json:"tests"`
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid json: %v\ncontent: %s", err, buf.String())
	}
	if parsed.Summary.Total != 3 || len(parsed.Tests) != 3 {
		t.Fatalf("unexpected parsed report: %+v", parsed)
	}
}

func TestSaveJSONWithWriter(t *testing.T) {
	w := &mockFileWriter{files: map[string]*mockWriteCloser{}}
	if err := SaveJSONWithWriter(sampleItems(), "tests.json", false, w); err != nil {
		t.Fatalf("save json: %v", err)
	}
	wc, ok := w.files["tests.json"]
	if !ok {
		t.Fatal("expected tests.json to be created")
	}
	if !json.Valid(wc.Bytes()) {
		t.Fatalf("invalid json written: %s", wc.String())
	}
}

func TestWriteRunJSON(t *testing.T) {
	sum := &runner.Summary{
		Results: []runner.Result{{ID: "p::TestX", Name: "TestX", Package: "p", Status: "pass", Elapsed: 0.01}},
		Passed:  1,
	}
	var buf bytes.Buffer
	if err := WriteRunJSON(&buf, sum, false); err != nil {
		t.Fatalf("write run json: %v", err)
	}
	var parsed runner.Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if parsed.Passed != 1 || len(parsed.Results) != 1 || parsed.Results[0].Status != "pass" {
		t.Fatalf("unexpected parsed summary: %+v", parsed)
	}
}
