package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowprof/pkg/archive"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/report"
)

const scenarioLog = `addr        activations  total_active_ms  name
[0, 1]      1            1.5              a
[0, 2]      2            2.5              b
[0, 3]      3            3.5              c
[0, 4]      4            4                d0
[0, 4, 1]   5            5                d1
`

const scenarioSpec = `{"input": [
  {"id": 1, "label": "A", "children": [2, 3], "operators": [{"addr": [0, 1]}]},
  {"id": 2, "label": "B", "children": [4], "operators": [{"addr": [0, 2]}]},
  {"id": 3, "label": "C", "children": [4], "operators": [{"addr": [0, 3]}]},
  {"id": 4, "label": "D", "operators": [{"addr": [0, 4, 1]}, {"addr": [0, 4]}]}
]}`

// testEnv isolates config and cache directories and captures status output.
type testEnv struct {
	dir    string
	status *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("FLOWPROF_CACHE_DIR", filepath.Join(dir, "cache", "flowprof"))
	t.Setenv("FLOWPROF_MONGO_URI", "")

	status := &bytes.Buffer{}
	prev := stdout
	stdout = status
	t.Cleanup(func() { stdout = prev })
	return &testEnv{dir: dir, status: status}
}

func (e *testEnv) writeInputs(t *testing.T) (logPath, specPath string) {
	t.Helper()
	logPath = filepath.Join(e.dir, "profile.log")
	specPath = filepath.Join(e.dir, "ops.json")
	if err := os.WriteFile(logPath, []byte(scenarioLog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(specPath, []byte(scenarioSpec), 0o644); err != nil {
		t.Fatal(err)
	}
	return logPath, specPath
}

// run executes the CLI with args and returns what commands wrote to their
// output stream.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"archive", "browse", "cache", "completion", "layout", "report", "serve"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered (have %v)", want, names)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	newTestEnv(t)
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "flowprof version ") {
		t.Errorf("--version printed %q", out)
	}
}

func TestMissingConfigFile(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)
	_, err := run(t, "--config", filepath.Join(e.dir, "nope.toml"), "report", logPath, specPath)
	if !flowerrors.Is(err, flowerrors.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want INVALID_PATH", err)
	}
}

func TestConfigFileSetsTitle(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)
	cfgPath := filepath.Join(e.dir, "flowprof.toml")
	if err := os.WriteFile(cfgPath, []byte("[report]\ntitle = \"Nightly run\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", cfgPath, "report", logPath, specPath, "--no-cache", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<title>Nightly run</title>") {
		t.Error("html report does not carry the configured title")
	}
}

func TestReportCommand(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)

	if _, err := run(t, "report", logPath, specPath, "-f", "html,json", "--no-cache"); err != nil {
		t.Fatal(err)
	}

	page, err := os.ReadFile(filepath.Join(e.dir, "profile.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(page, []byte("const DATA = ")) {
		t.Error("html output lacks the embedded report data")
	}

	data, err := os.ReadFile(filepath.Join(e.dir, "profile.json"))
	if err != nil {
		t.Fatal(err)
	}
	r, err := report.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Roots, []string{"1"}) || r.Totals.OperatorsMapped != 5 {
		t.Errorf("report roots %v, mapped %d", r.Roots, r.Totals.OperatorsMapped)
	}

	status := e.status.String()
	for _, want := range []string{"Built report for profile.log", "4 nodes", "fresh", "profile.json"} {
		if !strings.Contains(status, want) {
			t.Errorf("status output lacks %q:\n%s", want, status)
		}
	}
}

func TestReportToStdout(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)

	out, err := run(t, "report", logPath, specPath, "-f", "json", "-o", "-", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "{\n  \"roots\": [") {
		t.Errorf("stdout = %.40q..., want the indented report", out)
	}

	_, err = run(t, "report", logPath, specPath, "-f", "json,svg", "-o", "-", "--no-cache")
	if err == nil {
		t.Error("-o - with two formats should fail")
	}
}

func TestReportUsesCache(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)

	if _, err := run(t, "report", logPath, specPath, "-f", "json"); err != nil {
		t.Fatal(err)
	}
	e.status.Reset()
	if _, err := run(t, "report", logPath, specPath, "-f", "json"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.status.String(), "cached") {
		t.Errorf("second run not served from cache:\n%s", e.status.String())
	}

	e.status.Reset()
	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.status.String(), "Cleared 2 cached entries") {
		t.Errorf("cache clear output:\n%s", e.status.String())
	}
}

func TestReportBadInputs(t *testing.T) {
	e := newTestEnv(t)
	logPath, _ := e.writeInputs(t)
	dup := filepath.Join(e.dir, "dup.json")
	spec := `{"input": [{"id": 1, "label": "A"}, {"id": 1, "label": "B"}]}`
	if err := os.WriteFile(dup, []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "report", logPath, dup, "--no-cache")
	if !flowerrors.Is(err, flowerrors.ErrCodeDuplicateNodeID) {
		t.Errorf("error = %v, want DUPLICATE_NODE_ID", err)
	}

	_, err = run(t, "report", logPath, dup, "-f", "pdf")
	if !flowerrors.Is(err, flowerrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT for an unknown format", err)
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []render.Format
		want    map[render.Format]string
	}{
		{
			name:    "next to log",
			formats: []render.Format{render.FormatHTML, render.FormatLayout},
			want: map[render.Format]string{
				render.FormatHTML:   "runs/profile.html",
				render.FormatLayout: "runs/profile.layout.json",
			},
		},
		{
			name:    "explicit file",
			output:  "out/report.htm",
			formats: []render.Format{render.FormatHTML},
			want:    map[render.Format]string{render.FormatHTML: "out/report.htm"},
		},
		{
			name:    "base path",
			output:  "out/run1",
			formats: []render.Format{render.FormatSVG, render.FormatDOT},
			want: map[render.Format]string{
				render.FormatSVG: "out/run1.svg",
				render.FormatDOT: "out/run1.dot",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "runs/profile.log", tt.formats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArchiveRequiresConfig(t *testing.T) {
	newTestEnv(t)
	_, err := run(t, "archive", "list")
	if !flowerrors.Is(err, flowerrors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestArchiveTable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := archiveTable([]archive.Summary{{
		ID:        "run-1",
		CreatedAt: now.Add(-90 * time.Minute),
		Title:     "nightly",
		LogPath:   "profile.log",
		Totals:    report.Totals{Names: 4, TotalMappedMs: 16.5},
	}}, now)
	for _, want := range []string{"run-1", "1h ago", "nightly", "16.500"} {
		if !strings.Contains(out, want) {
			t.Errorf("table lacks %q:\n%s", want, out)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{72 * time.Hour, "3d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	newTestEnv(t)
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "flowprof") {
		t.Error("bash completion does not mention the program")
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should be rejected")
	}
}
