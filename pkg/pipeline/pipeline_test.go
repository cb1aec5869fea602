package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/flowprof/pkg/cache"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/topology"
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

func writeInputs(t *testing.T) (logPath, specPath string) {
	t.Helper()
	dir := t.TempDir()
	logPath = filepath.Join(dir, "profile.log")
	specPath = filepath.Join(dir, "ops.json")
	if err := os.WriteFile(logPath, []byte(scenarioLog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(specPath, []byte(scenarioSpec), 0o644); err != nil {
		t.Fatal(err)
	}
	return logPath, specPath
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code flowerrors.Code
	}{
		{"missing log", Options{SpecPath: "ops.json"}, flowerrors.ErrCodeInvalidInput},
		{"missing spec", Options{LogPath: "p.log"}, flowerrors.ErrCodeInvalidInput},
		{"bad spec format", Options{LogPath: "p.log", SpecPath: "ops.json", SpecFormat: "toml"}, flowerrors.ErrCodeUnsupported},
		{"bad output format", Options{LogPath: "p.log", SpecPath: "ops.json", Formats: []render.Format{"pdf"}}, flowerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !flowerrors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{LogPath: "p.log", SpecPath: "ops.yaml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.SpecFormat != topology.FormatYAML {
		t.Errorf("SpecFormat = %q, want yaml", opts.SpecFormat)
	}
	if !reflect.DeepEqual(opts.Formats, []render.Format{render.FormatHTML}) {
		t.Errorf("Formats = %v, want [html]", opts.Formats)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Error("Layout should default to layout.DefaultConfig()")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestExecuteScenario(t *testing.T) {
	logPath, specPath := writeInputs(t)
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(context.Background(), Options{
		LogPath:  logPath,
		SpecPath: specPath,
		Formats:  []render.Format{render.FormatJSON, render.FormatSVG, render.FormatDOT},
		Measurer: layout.FixedMeasurer(7),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := report.Totals{Names: 4, OperatorsInLog: 5, OperatorsMapped: 5, TotalMappedMs: 16.5, TotalMappedActivations: 15}
	if res.Report.Totals != want {
		t.Errorf("Totals = %+v, want %+v", res.Report.Totals, want)
	}
	if got := res.Report.Nodes["4"].ExtraParents; !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("extra_parents(4) = %v, want [3]", got)
	}
	if res.Stats.Nodes != 4 || res.Stats.Crossings != 0 || len(res.Layout.Layers) != 3 {
		t.Errorf("Stats = %+v, layers = %d", res.Stats, len(res.Layout.Layers))
	}
	if len(res.ReportHash) != 64 {
		t.Errorf("ReportHash = %q", res.ReportHash)
	}

	for _, f := range []render.Format{render.FormatJSON, render.FormatSVG, render.FormatDOT} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s missing", f)
		}
	}
	if !strings.Contains(string(res.Artifacts[render.FormatSVG]), `data-name="4"`) {
		t.Error("svg should contain node 4")
	}
	if res.CacheInfo.BuildHit || res.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v, want all misses with the null cache", res.CacheInfo)
	}
}

func TestExecuteInMemoryInputs(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	rep, err := runner.Build(context.Background(), Options{
		LogData:    []byte(scenarioLog),
		SpecData:   []byte(scenarioSpec),
		SpecFormat: topology.FormatJSON,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rep.Roots, []string{"1"}) {
		t.Errorf("Roots = %v", rep.Roots)
	}
}

func TestExecuteCachedIsByteIdentical(t *testing.T) {
	logPath, specPath := writeInputs(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := Options{
		LogPath:  logPath,
		SpecPath: specPath,
		Formats:  []render.Format{render.FormatJSON, render.FormatSVG, render.FormatHTML},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheInfo.BuildHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if first.ReportHash != second.ReportHash {
		t.Error("report hash changed between runs")
	}
	for f, data := range first.Artifacts {
		if !bytes.Equal(data, second.Artifacts[f]) {
			t.Errorf("%s artefact differs between runs", f)
		}
	}

	third, err := runner.Execute(context.Background(), Options{
		LogPath: logPath, SpecPath: specPath, Formats: opts.Formats, Refresh: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.BuildHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run CacheInfo = %+v, want misses", third.CacheInfo)
	}
	if !bytes.Equal(third.Artifacts[render.FormatJSON], first.Artifacts[render.FormatJSON]) {
		t.Error("refresh changed the report JSON")
	}
}

func TestExecuteErrors(t *testing.T) {
	logPath, specPath := writeInputs(t)
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := runner.Execute(ctx, Options{LogPath: filepath.Join(t.TempDir(), "missing.log"), SpecPath: specPath})
	if !flowerrors.Is(err, flowerrors.ErrCodeInvalidPath) {
		t.Errorf("missing log error = %v", err)
	}

	_, err = runner.Execute(ctx, Options{LogData: []byte("[0, 1] 1 1.0 a\n[0, 1] 2 2.0 b\n"), SpecPath: specPath})
	if !flowerrors.Is(err, flowerrors.ErrCodeDuplicateAddress) {
		t.Errorf("duplicate addr error = %v", err)
	}

	conflict := `{"input": [
	  {"id": 1, "label": "A", "operators": [{"addr": [0, 1]}]},
	  {"id": 2, "label": "B", "operators": [{"addr": [0, 1]}]}
	]}`
	_, err = runner.Execute(ctx, Options{LogPath: logPath, SpecData: []byte(conflict), SpecFormat: topology.FormatJSON})
	if !flowerrors.Is(err, flowerrors.ErrCodeOwnershipConflict) {
		t.Errorf("ownership conflict error = %v", err)
	}
}
