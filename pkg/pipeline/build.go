package pipeline

import (
	"bytes"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/logfile"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/topology"
)

// BuildReport parses both inputs and assembles the report. It does no
// caching; see [Runner.BuildWithCacheInfo].
func BuildReport(logData, specData []byte, opts Options) (*report.Report, error) {
	ix, err := logfile.Parse(bytes.NewReader(logData), opts.logSource())
	if err != nil {
		return nil, err
	}
	spec, err := topology.Parse(specData, opts.SpecFormat)
	if err != nil {
		return nil, err
	}
	g, err := topology.Build(spec)
	if err != nil {
		return nil, err
	}
	r, err := report.Build(g, ix, report.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	logDiagnostics(opts.Logger, r)
	return r, nil
}

func logDiagnostics(logger *log.Logger, r *report.Report) {
	if len(r.Diagnostics) == 0 {
		return
	}
	counts := make(map[string]int)
	for _, d := range r.Diagnostics {
		counts[d.Kind]++
	}
	for _, kind := range slices.Sorted(maps.Keys(counts)) {
		logger.Debug("report diagnostics", "kind", kind, "count", counts[kind])
	}
}
