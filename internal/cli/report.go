package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/archive"
	"github.com/matzehuels/flowprof/pkg/pipeline"
	"github.com/matzehuels/flowprof/pkg/render"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// reportOpts holds the command-line flags for the report command.
type reportOpts struct {
	output   string // output file (single format), base path, or "-" for stdout
	formats  string // comma-separated formats
	title    string
	detailed bool
	noCache  bool
	refresh  bool
	watch    bool
	archive  bool
}

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report <profile.log> <ops.json|ops.yaml>",
		Short: "Build a report from a profile log and a topology spec",
		Long: `Build a report from a profile log and a topology spec.

Outputs are written next to the profile log unless -o is given. With several
formats, -o names the base path and each format adds its own extension.`,
		Example: `  flowprof report profile.log ops.json
  flowprof report profile.log ops.yaml -f html,json -o out/run1
  flowprof report profile.log ops.json -f json -o - | jq .totals
  flowprof report profile.log ops.json --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(formatNames(), ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "page title of the html report")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include operator details in dot/png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when cached")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild whenever an input changes")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store the report in the configured archive")

	return cmd
}

func formatNames() []string {
	fs := render.Formats()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return names
}

// runReport builds once and, with --watch, again on every input change.
func (c *CLI) runReport(ctx context.Context, w io.Writer, logPath, specPath string, opts reportOpts) error {
	popts, err := c.reportOptions(logPath, specPath, opts)
	if err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) != 1 {
		return fmt.Errorf("-o - needs exactly one format, got %d", len(popts.Formats))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var store archive.Store
	if opts.archive {
		if store, err = c.openArchive(ctx); err != nil {
			return err
		}
		defer store.Close(context.Background())
	}

	build := func(ctx context.Context) error {
		return c.buildReport(ctx, w, runner, store, popts, opts.output)
	}
	if err := build(ctx); err != nil {
		if !opts.watch {
			return err
		}
		c.Logger.Error("build failed", "err", err)
	}
	if !opts.watch {
		return nil
	}

	printInfo("Watching %s and %s (ctrl+c to stop)", logPath, specPath)
	return watchFiles(ctx, []string{logPath, specPath}, watchDebounce, c.Logger, func(ctx context.Context) error {
		prog := newProgress(c.Logger)
		if err := build(ctx); err != nil {
			return err
		}
		prog.done("Rebuilt report")
		return nil
	})
}

func (c *CLI) reportOptions(logPath, specPath string, opts reportOpts) (pipeline.Options, error) {
	popts, err := c.baseOptions()
	if err != nil {
		return popts, err
	}
	popts.LogPath = logPath
	popts.SpecPath = specPath
	popts.Detailed = opts.detailed
	popts.Refresh = opts.refresh
	if opts.title != "" {
		popts.Title = opts.title
	}
	if opts.formats != "" {
		if popts.Formats, err = render.ParseFormats(opts.formats); err != nil {
			return popts, err
		}
	}
	return popts, popts.ValidateAndSetDefaults()
}

// buildReport runs the pipeline, writes the artefacts and archives the
// report when a store is given.
func (c *CLI) buildReport(ctx context.Context, w io.Writer, runner *pipeline.Runner, store archive.Store, opts pipeline.Options, output string) error {
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := w.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	paths := outputPaths(output, opts.LogPath, opts.Formats)
	printSuccess("Built report for %s", filepath.Base(opts.LogPath))
	printStats(res.Stats, res.CacheInfo.BuildHit && res.CacheInfo.RenderHit)
	if n := len(res.Report.Diagnostics); n > 0 {
		printWarning("%d diagnostics, first: %s", n, res.Report.Diagnostics[0])
	}
	for _, f := range opts.Formats {
		if err := writeOutput(paths[f], res.Artifacts[f]); err != nil {
			return err
		}
		printFile(paths[f])
	}

	if store != nil {
		id, err := store.Put(ctx, archive.Entry{
			Title:    opts.Title,
			LogPath:  opts.LogPath,
			SpecPath: opts.SpecPath,
			LogHash:  hashFile(opts.LogPath),
			SpecHash: hashFile(opts.SpecPath),
			Report:   res.Report,
		})
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		printKeyValue("archived", id)
		printNextStep("Re-render later with", "flowprof archive show "+id)
	}
	return nil
}

// outputPaths decides where each format goes. A single format with an
// explicit output uses that path as is; otherwise the output (or the log
// path) minus its extension is the base.
func outputPaths(output, logPath string, formats []render.Format) map[render.Format]string {
	paths := make(map[render.Format]string, len(formats))
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = logPath
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f.Ext()
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
