package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/pipeline"
)

// renderOpts holds the flags shared by render and generate.
type renderOpts struct {
	output   string // output file (one format) or base path (several)
	formats  string // comma-separated formats; empty uses the config
	theme    string // palette name; empty uses the config
	detailed bool   // account emails and purposes in the SVG preview
	noCache  bool
	refresh  bool
}

func (o *renderOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s), comma-separated: "+formatsUsage())
	cmd.Flags().StringVar(&o.theme, "theme", "", "color theme: lzdw (default), aws")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "show emails and purposes in the SVG preview")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results (still writes them)")
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <architecture.{json,yaml}>",
		Short: "Render an architecture description to draw.io, SVG, JSON or Terraform",
		Long: `Render an architecture description to one or more output formats.

The architecture is validated against the schema first; legacy shapes
(master_payer, organizational_units) are accepted.`,
		Example: `  lzdraw render acme.json
  lzdraw render acme.yaml -f drawio,svg,tf -o out/acme
  lzdraw render acme.json --theme aws -o acme.drawio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	a, err := arch.Load(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded architecture", "client", a.Client(), "path", input)
	if s := a.AccountStructure; s != nil && s.MaxAccounts() == 0 {
		printWarning("%s has no member accounts; the OU lanes will be empty", input)
	}

	runner := c.newRunner(ctx, opts.noCache, nil)
	defer runner.Close()

	popts := c.pipelineOptions(opts.theme, opts.formats)
	popts.Detailed = opts.detailed
	popts.Refresh = opts.refresh
	res, err := runner.Render(ctx, a, popts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(res.Artifacts, outputPaths(popts.Formats, opts.output, input))
	if err != nil {
		return err
	}
	prog.done("rendered", "client", a.Client(), "formats", len(paths))

	printSuccess("Rendered %s", StyleTitle.Render(a.Client()))
	printStats(res.Stats.Accounts, res.Stats.Nodes, res.Stats.Edges, res.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// basePath derives the shared output path. An empty output strips the
// input's extension; an output ending in a format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if ext == ".drawio" || ext == ".svg" || ext == ".json" || ext == ".tf" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit output uses it verbatim. A derived path never
// overwrites the input.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		p := base + pipeline.Extension(f)
		if filepath.Clean(p) == filepath.Clean(input) {
			p = base + ".diagram" + pipeline.Extension(f)
		}
		paths[f] = p
	}
	return paths
}

// writeArtifacts writes each artifact to its path and returns the paths
// written, sorted.
func writeArtifacts(artifacts map[string][]byte, paths map[string]string) ([]string, error) {
	var written []string
	for format, path := range paths {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("no %s output was rendered", format)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	slices.Sort(written)
	return written, nil
}
