// Package discovery walks a workspace and extracts the test cases defined in
// its Go test files. Functions are matched by name prefix and signature, so a
// helper that merely starts with "Test" is not reported. Subtests registered
// through string-literal t.Run calls are reported as children of their parent
// using the same slash-joined naming go test itself uses.
package discovery

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/testing-tools/adapter/internal/fsio"
	"github.com/testing-tools/adapter/internal/logger"
)

// Kind labels the flavor of a discovered item.
type Kind string

const (
	KindTest      Kind = "test"
	KindBenchmark Kind = "benchmark"
	KindFuzz      Kind = "fuzz"
	KindExample   Kind = "example"
	KindSubtest   Kind = "subtest"
)

// Item is a single discovered test case.
type Item struct {
	// ID is "<package>::<name>", where package is the directory relative to
	// the scanned root ("." at the root itself).
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Package string `json:"package"`
	File    string `json:"file"`
	Line    int    `json:"line"`
}

// dirs skipped unconditionally, on top of caller-provided ignores.
var skipAlways = map[string]bool{".git": true, "vendor": true, "testdata": true}

// Scan walks a directory tree using the real OS reader and collects test items.
func Scan(root string, ignoreDirs []string) ([]Item, error) {
	return ScanWithReader(root, ignoreDirs, fsio.OSFileReader{})
}

// ScanWithReader is like Scan but allows injection of a custom FileReader for
// testing or alternate backends. Behavior and output are identical.
func ScanWithReader(root string, ignoreDirs []string, reader fsio.FileReader) ([]Item, error) {
	skip := make(map[string]bool)
	for _, d := range ignoreDirs {
		skip[strings.TrimSpace(d)] = true
	}

	// Honor repository .gitignore rules when the root sits inside a git repo.
	repoRoot := nearestRepoRoot(root)
	rules, _ := loadIgnoreFile(repoRoot)

	type fileJob struct {
		rel  string
		open string
	}

	jobs := make(chan fileJob, 64)
	var items []Item
	var mu sync.Mutex

	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				found, err := scanFileWithReader(job.rel, job.open, reader)
				if err != nil {
					// A file that does not parse is skipped, not fatal.
					logger.Debug("skipping unparsable test file", "file", job.rel, "err", err)
					continue
				}
				if len(found) > 0 {
					mu.Lock()
					items = append(items, found...)
					mu.Unlock()
				}
			}
		}()
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Ignore traversal errors for individual entries; continue walking.
			return nil
		}
		if d.IsDir() {
			if skipAlways[d.Name()] || skip[d.Name()] {
				return filepath.SkipDir
			}
			if rules != nil {
				relRepo, _ := filepath.Rel(repoRoot, path)
				if rules.match(relRepo, true) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if rules != nil {
			relRepo, _ := filepath.Rel(repoRoot, path)
			if rules.match(relRepo, false) {
				return nil
			}
		}

		// Use full path when reading real files; relative for mocks.
		openPath := relPath
		if _, ok := reader.(fsio.OSFileReader); ok {
			openPath = path
		}

		jobs <- fileJob{rel: relPath, open: openPath}
		return nil
	})

	close(jobs)
	wg.Wait()

	// Stable ordering: by file, then line.
	sort.Slice(items, func(i, j int) bool {
		if items[i].File == items[j].File {
			return items[i].Line < items[j].Line
		}
		return items[i].File < items[j].File
	})

	return items, err
}

// scanFileWithReader parses a single test file and extracts its items.
// relPath is used for reporting; openPath for reading.
func scanFileWithReader(relPath, openPath string, reader fsio.FileReader) ([]Item, error) {
	f, err := reader.Open(openPath)
	if err != nil {
		return nil, err
	}
	defer fsio.SafeClose(f, openPath)

	src, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, relPath, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	pkg := filepath.ToSlash(filepath.Dir(relPath))
	file := filepath.ToSlash(relPath)

	var items []Item
	for _, decl := range parsed.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		kind, ok := classify(fn)
		if !ok {
			continue
		}
		items = append(items, Item{
			ID:      pkg + "::" + fn.Name.Name,
			Name:    fn.Name.Name,
			Kind:    kind,
			Package: pkg,
			File:    file,
			Line:    fset.Position(fn.Pos()).Line,
		})
		if kind == KindTest || kind == KindBenchmark {
			items = append(items, collectSubtests(fset, fn, pkg, file)...)
		}
	}
	return items, nil
}

// classify decides whether a top-level function is a test case and of which
// kind. Both the name prefix and the signature must match what go test runs.
func classify(fn *ast.FuncDecl) (Kind, bool) {
	name := fn.Name.Name
	switch {
	case hasTestPrefix(name, "Test") && takesSinglePtr(fn, "T"):
		return KindTest, true
	case hasTestPrefix(name, "Benchmark") && takesSinglePtr(fn, "B"):
		return KindBenchmark, true
	case hasTestPrefix(name, "Fuzz") && takesSinglePtr(fn, "F"):
		return KindFuzz, true
	case hasTestPrefix(name, "Example") && isNiladic(fn):
		return KindExample, true
	}
	return "", false
}

// hasTestPrefix reports whether name starts with prefix followed by a
// non-lowercase rune, the same boundary rule go test applies. A bare prefix
// ("Test") also qualifies.
func hasTestPrefix(name, prefix string) bool {
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	rest := name[len(prefix):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLower(r)
}

// takesSinglePtr reports whether fn takes exactly one *testing.<sel> parameter
// and returns nothing.
func takesSinglePtr(fn *ast.FuncDecl, sel string) bool {
	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		return false
	}
	params := fn.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) > 1 {
		return false
	}
	star, ok := params.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	s, ok := star.X.(*ast.SelectorExpr)
	if !ok || s.Sel.Name != sel {
		return false
	}
	ident, ok := s.X.(*ast.Ident)
	return ok && ident.Name == "testing"
}

// isNiladic reports whether fn takes no parameters and returns nothing.
func isNiladic(fn *ast.FuncDecl) bool {
	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		return false
	}
	return fn.Type.Params == nil || len(fn.Type.Params.List) == 0
}

// collectSubtests records string-literal t.Run registrations inside fn,
// including nested ones, named the way go test names them (parent/child,
// spaces rewritten to underscores).
func collectSubtests(fset *token.FileSet, fn *ast.FuncDecl, pkg, file string) []Item {
	param := singleParamName(fn)
	if param == "" || fn.Body == nil {
		return nil
	}
	var items []Item
	var walk func(body *ast.BlockStmt, recv, parent string)
	walk = func(body *ast.BlockStmt, recv, parent string) {
		ast.Inspect(body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || sel.Sel.Name != "Run" {
				return true
			}
			ident, ok := sel.X.(*ast.Ident)
			if !ok || ident.Name != recv || len(call.Args) != 2 {
				return true
			}
			lit, ok := call.Args[0].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				return true
			}
			raw, err := strconv.Unquote(lit.Value)
			if err != nil {
				return true
			}
			name := parent + "/" + rewriteSubtestName(raw)
			items = append(items, Item{
				ID:      pkg + "::" + name,
				Name:    name,
				Kind:    KindSubtest,
				Package: pkg,
				File:    file,
				Line:    fset.Position(call.Pos()).Line,
			})
			// Descend into the subtest body under its own parameter name so
			// nested registrations get the full slash-joined path.
			if fl, ok := call.Args[1].(*ast.FuncLit); ok && fl.Body != nil {
				if inner := funcLitParamName(fl); inner != "" {
					walk(fl.Body, inner, name)
				}
			}
			return false
		})
	}
	walk(fn.Body, param, fn.Name.Name)
	return items
}

// singleParamName returns the name of fn's sole parameter, or "".
func singleParamName(fn *ast.FuncDecl) string {
	params := fn.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) != 1 {
		return ""
	}
	return params.List[0].Names[0].Name
}

// funcLitParamName returns the name of a func literal's sole parameter, or "".
func funcLitParamName(fl *ast.FuncLit) string {
	params := fl.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) != 1 {
		return ""
	}
	return params.List[0].Names[0].Name
}

// rewriteSubtestName applies go test's name rewriting for subtest names.
func rewriteSubtestName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
